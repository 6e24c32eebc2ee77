package handler

import (
	"net/http"

	"cabinetcpq/internal/apierror"
	"cabinetcpq/internal/dto"
	"cabinetcpq/internal/service"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct{ svc service.CatalogService }

func NewCatalogHandler(svc service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// ── Products ─────────────────────────────────────────────────────────────────

// CreateProduct godoc
// @Summary      Create a catalog product
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateProductRequest true "Product"
// @Success      201  {object} dto.ProductResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/catalog/products [post]
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req dto.CreateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateProduct(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetProduct godoc
// @Summary      Get a product
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Product UUID"
// @Success      200 {object} dto.ProductResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/catalog/products/{id} [get]
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetProduct(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListProducts godoc
// @Summary      List products
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Param        category query string false "Category filter"
// @Param        name     query string false "Name search"
// @Param        active   query string false "false | all (default active only)"
// @Param        page     query int    false "Page (default 1)"
// @Param        limit    query int    false "Page size (default 50)"
// @Success      200 {object} dto.ProductListResponse
// @Router       /v1/catalog/products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var filter dto.ProductFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.ListProducts(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list products"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateProduct godoc
// @Summary      Update a product
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                   true "Product UUID"
// @Param        body body dto.UpdateProductRequest true "Fields to update"
// @Success      200  {object} dto.ProductResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/catalog/products/{id} [put]
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeactivateProduct godoc
// @Summary      Deactivate a product
// @Description  Soft delete: the product stops appearing in catalog snapshots but existing quote lines keep their frozen prices.
// @Tags         catalog
// @Security     BearerAuth
// @Param        id path string true "Product UUID"
// @Success      204
// @Failure      400 {object} apierror.APIError
// @Router       /v1/catalog/products/{id} [delete]
func (h *CatalogHandler) DeactivateProduct(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeactivateProduct(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Processings ──────────────────────────────────────────────────────────────

// CreateProcessing godoc
// @Summary      Create a processing
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateProcessingRequest true "Processing"
// @Success      201  {object} dto.ProcessingResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/catalog/processings [post]
func (h *CatalogHandler) CreateProcessing(c *gin.Context) {
	var req dto.CreateProcessingRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateProcessing(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListProcessings godoc
// @Summary      List processings
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.ProcessingResponse
// @Router       /v1/catalog/processings [get]
func (h *CatalogHandler) ListProcessings(c *gin.Context) {
	resp, err := h.svc.ListProcessings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list processings"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeactivateProcessing godoc
// @Summary      Deactivate a processing
// @Tags         catalog
// @Security     BearerAuth
// @Param        id path string true "Processing UUID"
// @Success      204
// @Failure      400 {object} apierror.APIError
// @Router       /v1/catalog/processings/{id} [delete]
func (h *CatalogHandler) DeactivateProcessing(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeactivateProcessing(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Rules ────────────────────────────────────────────────────────────────────

// CreateRule godoc
// @Summary      Create a mutual-exclusion rule
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateRuleRequest true "Rule"
// @Success      201  {object} dto.RuleResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/catalog/rules [post]
func (h *CatalogHandler) CreateRule(c *gin.Context) {
	var req dto.CreateRuleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateRule(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListRules godoc
// @Summary      List rules
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.RuleResponse
// @Router       /v1/catalog/rules [get]
func (h *CatalogHandler) ListRules(c *gin.Context) {
	resp, err := h.svc.ListRules(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list rules"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteRule godoc
// @Summary      Delete a rule
// @Tags         catalog
// @Security     BearerAuth
// @Param        id path string true "Rule UUID"
// @Success      204
// @Failure      400 {object} apierror.APIError
// @Router       /v1/catalog/rules/{id} [delete]
func (h *CatalogHandler) DeleteRule(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteRule(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Dependencies ─────────────────────────────────────────────────────────────

// CreateDependency godoc
// @Summary      Create a product dependency
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateDependencyRequest true "Dependency edge"
// @Success      201  {object} dto.DependencyResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/catalog/dependencies [post]
func (h *CatalogHandler) CreateDependency(c *gin.Context) {
	var req dto.CreateDependencyRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateDependency(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListDependencies godoc
// @Summary      List dependencies
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.DependencyResponse
// @Router       /v1/catalog/dependencies [get]
func (h *CatalogHandler) ListDependencies(c *gin.Context) {
	resp, err := h.svc.ListDependencies(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list dependencies"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteDependency godoc
// @Summary      Delete a dependency
// @Tags         catalog
// @Security     BearerAuth
// @Param        id path string true "Dependency UUID"
// @Success      204
// @Failure      400 {object} apierror.APIError
// @Router       /v1/catalog/dependencies/{id} [delete]
func (h *CatalogHandler) DeleteDependency(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteDependency(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}
