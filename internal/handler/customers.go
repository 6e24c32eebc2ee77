package handler

import (
	"net/http"

	"cabinetcpq/internal/apierror"
	"cabinetcpq/internal/dto"
	"cabinetcpq/internal/service"

	"github.com/gin-gonic/gin"
)

type CustomersHandler struct{ svc service.CustomerService }

func NewCustomersHandler(svc service.CustomerService) *CustomersHandler {
	return &CustomersHandler{svc: svc}
}

// Sync godoc
// @Summary      Sync a customer from the directory
// @Description  Fetches current discount terms from the external directory and upserts the local record. Falls back to the last-synced copy when the directory is unreachable.
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        directoryId path string true "External directory id"
// @Success      200 {object} dto.CustomerResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/customers/sync/{directoryId} [post]
func (h *CustomersHandler) Sync(c *gin.Context) {
	directoryID := c.Param("directoryId")
	if directoryID == "" {
		c.JSON(http.StatusBadRequest, apierror.New("missing directory id"))
		return
	}
	resp, err := h.svc.Sync(c.Request.Context(), directoryID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get a customer
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Customer UUID"
// @Success      200 {object} dto.CustomerResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/customers/{id} [get]
func (h *CustomersHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary      List customers
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        name  query string false "Name search"
// @Param        page  query int    false "Page (default 1)"
// @Param        limit query int    false "Page size (default 50)"
// @Success      200 {object} dto.CustomerListResponse
// @Router       /v1/customers [get]
func (h *CustomersHandler) List(c *gin.Context) {
	var filter dto.CustomerFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list customers"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
