package handler

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"cabinetcpq/internal/apierror"
	"cabinetcpq/internal/dto"
	"cabinetcpq/internal/middleware"
	"cabinetcpq/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type QuotesHandler struct {
	svc            service.QuoteService
	pdfStoragePath string
}

func NewQuotesHandler(svc service.QuoteService, pdfStoragePath string) *QuotesHandler {
	return &QuotesHandler{svc: svc, pdfStoragePath: pdfStoragePath}
}

// Create godoc
// @Summary      Create a draft quote
// @Description  Opens a new draft quote for a customer, freezing the contract and customer discount terms as they stand now.
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateQuoteRequest true "Customer directory id"
// @Success      201  {object} dto.QuoteResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/quotes [post]
func (h *QuotesHandler) Create(c *gin.Context) {
	var req dto.CreateQuoteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get godoc
// @Summary      Get a quote
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Quote UUID"
// @Success      200 {object} dto.QuoteResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/quotes/{id} [get]
func (h *QuotesHandler) Get(c *gin.Context) {
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
// @Summary      List quotes
// @Description  Paginated list filtered by customer and status.
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        customer_id query string false "Customer UUID"
// @Param        status query string false "draft | pending_approval | approved | rejected | sent | accepted | all"
// @Param        page   query int false "Page (default 1)"
// @Param        limit  query int false "Page size (default 50)"
// @Success      200 {object} dto.QuoteListResponse
// @Router       /v1/quotes [get]
func (h *QuotesHandler) List(c *gin.Context) {
	var filter dto.QuoteFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list quotes"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AddItem godoc
// @Summary      Add a line item
// @Description  Adds the product, prices it, auto-adds automatic dependencies and surfaces suggested ones.
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string              true "Quote UUID"
// @Param        body body dto.AddItemRequest true "Product and quantity"
// @Success      200  {object} dto.QuoteResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/quotes/{id}/items [post]
func (h *QuotesHandler) AddItem(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.AddItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddItem(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RemoveItem godoc
// @Summary      Remove a line item
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        id     path string true "Quote UUID"
// @Param        itemId path string true "Item UUID"
// @Success      200 {object} dto.QuoteResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/quotes/{id}/items/{itemId} [delete]
func (h *QuotesHandler) RemoveItem(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathUUID(c, "itemId")
	if !ok {
		return
	}
	resp, err := h.svc.RemoveItem(c.Request.Context(), id, itemID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SetQuantity godoc
// @Summary      Change item quantity
// @Description  Reprices the item and all its applied processings under the new quantity.
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id     path string                 true "Quote UUID"
// @Param        itemId path string                 true "Item UUID"
// @Param        body   body dto.SetQuantityRequest true "New quantity"
// @Success      200 {object} dto.QuoteResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/quotes/{id}/items/{itemId}/quantity [put]
func (h *QuotesHandler) SetQuantity(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathUUID(c, "itemId")
	if !ok {
		return
	}
	var req dto.SetQuantityRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SetQuantity(c.Request.Context(), id, itemID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ApplyProcessing godoc
// @Summary      Apply a processing to an item
// @Description  Applies (or configures a pending) processing. Unavailable processings are ignored per the exclusion rules.
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id     path string                     true "Quote UUID"
// @Param        itemId path string                     true "Item UUID"
// @Param        body   body dto.ApplyProcessingRequest true "Processing id and options"
// @Success      200 {object} dto.QuoteResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/quotes/{id}/items/{itemId}/processings [post]
func (h *QuotesHandler) ApplyProcessing(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathUUID(c, "itemId")
	if !ok {
		return
	}
	var req dto.ApplyProcessingRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ApplyProcessing(c.Request.Context(), id, itemID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RemoveProcessing godoc
// @Summary      Remove a processing from an item
// @Description  Only manually-added processings can be removed here; inherited entries belong to the room selection.
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        id           path string true "Quote UUID"
// @Param        itemId       path string true "Item UUID"
// @Param        processingId path string true "Processing UUID"
// @Success      200 {object} dto.QuoteResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/quotes/{id}/items/{itemId}/processings/{processingId} [delete]
func (h *QuotesHandler) RemoveProcessing(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathUUID(c, "itemId")
	if !ok {
		return
	}
	processingID, ok := pathUUID(c, "processingId")
	if !ok {
		return
	}
	resp, err := h.svc.RemoveProcessing(c.Request.Context(), id, itemID, processingID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AvailableProcessings godoc
// @Summary      List processings available for an item
// @Description  Category-filtered and reduced by the mutual-exclusion rules against what is already applied.
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        id     path string true "Quote UUID"
// @Param        itemId path string true "Item UUID"
// @Success      200 {array} dto.AvailableProcessingResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/quotes/{id}/items/{itemId}/available-processings [get]
func (h *QuotesHandler) AvailableProcessings(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathUUID(c, "itemId")
	if !ok {
		return
	}
	resp, err := h.svc.AvailableProcessings(c.Request.Context(), id, itemID)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AddRoom godoc
// @Summary      Add a room
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string             true "Quote UUID"
// @Param        body body dto.AddRoomRequest true "Room name and initial processing selection"
// @Success      200 {object} dto.QuoteResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/quotes/{id}/rooms [post]
func (h *QuotesHandler) AddRoom(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.AddRoomRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddRoom(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SetRoomProcessings godoc
// @Summary      Replace a room's processing selection
// @Description  Re-propagates onto every item in the room: inherited entries are replaced, manual ones untouched.
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id     path string                        true "Quote UUID"
// @Param        roomId path string                        true "Room UUID"
// @Param        body   body dto.SetRoomProcessingsRequest true "New processing selection"
// @Success      200 {object} dto.QuoteResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/quotes/{id}/rooms/{roomId}/processings [put]
func (h *QuotesHandler) SetRoomProcessings(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	roomID, ok := pathUUID(c, "roomId")
	if !ok {
		return
	}
	var req dto.SetRoomProcessingsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SetRoomProcessings(c.Request.Context(), id, roomID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SetOrderDiscount godoc
// @Summary      Set the flat order discount
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                      true "Quote UUID"
// @Param        body body dto.SetOrderDiscountRequest true "Flat discount amount"
// @Success      200 {object} dto.QuoteResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/quotes/{id}/discount [put]
func (h *QuotesHandler) SetOrderDiscount(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.SetOrderDiscountRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SetOrderDiscount(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Submit godoc
// @Summary      Submit a quote for approval
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                    true "Quote UUID"
// @Param        body body dto.ApprovalActionRequest false "Optional note"
// @Success      200 {object} dto.QuoteResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/quotes/{id}/submit [post]
func (h *QuotesHandler) Submit(c *gin.Context) {
	h.approvalAction(c, h.svc.Submit)
}

// Approve godoc
// @Summary      Approve a pending quote
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                    true "Quote UUID"
// @Param        body body dto.ApprovalActionRequest false "Optional note"
// @Success      200 {object} dto.QuoteResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/quotes/{id}/approve [post]
func (h *QuotesHandler) Approve(c *gin.Context) {
	h.approvalAction(c, h.svc.Approve)
}

// Reject godoc
// @Summary      Reject a pending quote
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                    true "Quote UUID"
// @Param        body body dto.ApprovalActionRequest false "Optional note"
// @Success      200 {object} dto.QuoteResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/quotes/{id}/reject [post]
func (h *QuotesHandler) Reject(c *gin.Context) {
	h.approvalAction(c, h.svc.Reject)
}

// approvalAction is the shared path for submit/approve/reject: the note body
// is optional, the actor comes from the JWT claims.
func (h *QuotesHandler) approvalAction(
	c *gin.Context,
	fn func(ctx context.Context, quoteID, actorID uuid.UUID, req dto.ApprovalActionRequest) (*dto.QuoteResponse, error),
) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ApprovalActionRequest
	_ = c.ShouldBindJSON(&req)

	resp, err := fn(c.Request.Context(), id, actorID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ApprovalHistory godoc
// @Summary      List a quote's approval audit trail
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Quote UUID"
// @Success      200 {array} dto.ApprovalStepResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/quotes/{id}/approvals [get]
func (h *QuotesHandler) ApprovalHistory(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ApprovalHistory(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Send godoc
// @Summary      Send a quote to the customer
// @Description  Marks the quote sent and enqueues the async PDF render + email job.
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string               true "Quote UUID"
// @Param        body body dto.SendQuoteRequest false "Optional recipient override"
// @Success      200 {object} dto.QuoteResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/quotes/{id}/send [post]
func (h *QuotesHandler) Send(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.SendQuoteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Send(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Accept godoc
// @Summary      Mark a sent quote accepted
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Quote UUID"
// @Success      200 {object} dto.QuoteResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/quotes/{id}/accept [post]
func (h *QuotesHandler) Accept(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.MarkAccepted(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DownloadPDF godoc
// @Summary      Download the rendered quote PDF
// @Description  Serves the PDF produced by the render worker after a send.
// @Tags         quotes
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path string true "Quote UUID"
// @Success      200
// @Failure      404 {object} apierror.APIError
// @Router       /v1/quotes/{id}/pdf [get]
func (h *QuotesHandler) DownloadPDF(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	path := filepath.Join(h.pdfStoragePath, fmt.Sprintf("quote_%s.pdf", id))
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, apierror.New("PDF not generated yet; send the quote first"))
		return
	}
	c.FileAttachment(path, fmt.Sprintf("quote_%s.pdf", id))
}

// actorID pulls the acting user id from the JWT claims.
func actorID(c *gin.Context) uuid.UUID {
	claims := middleware.GetClaims(c)
	id, _ := uuid.Parse(claims.UserID)
	return id
}
