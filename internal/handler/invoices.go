package handler

import (
	"fmt"
	"net/http"

	"github.com/zakareajob-cpu/zak-crm/internal/dto"
	"github.com/zakareajob-cpu/zak-crm/internal/service"

	"github.com/gin-gonic/gin"
)

type InvoicesHandler struct{ svc service.InvoiceService }

func NewInvoicesHandler(svc service.InvoiceService) *InvoicesHandler {
	return &InvoicesHandler{svc: svc}
}

// Create godoc
// @Summary      Create an invoice
// @Description  Composes the submitted lines, assigns the next number for the issue date and stores header and items atomically.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateInvoiceRequest true "Invoice header and lines"
// @Success      201  {object} dto.InvoiceView
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/invoices [post]
func (h *InvoicesHandler) Create(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List invoices, newest first
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.InvoiceListItem
// @Router       /v1/invoices [get]
func (h *InvoicesHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// NextNumber godoc
// @Summary      Preview the next invoice number
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        date query string false "Issue date (YYYY-MM-DD), today when omitted"
// @Success      200  {object} dto.NextNumberResponse
// @Router       /v1/invoices/next-number [get]
func (h *InvoicesHandler) NextNumber(c *gin.Context) {
	resp, err := h.svc.NextNumber(c.Request.Context(), c.Query("date"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InvoicesHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InvoicesHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PDF godoc
// @Summary      Render the invoice as PDF
// @Tags         invoices
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id       path  string true  "Invoice ID"
// @Param        download query string false "1 to download as attachment"
// @Success      200
// @Failure      404  {object} apierror.APIError
// @Router       /v1/invoices/{id}/pdf [get]
func (h *InvoicesHandler) PDF(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	data, name, err := h.svc.PDF(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	disposition := "inline"
	if c.Query("download") == "1" {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, name))
	c.Data(http.StatusOK, "application/pdf", data)
}

// Email godoc
// @Summary      E-mail the invoice PDF
// @Description  Queues delivery and answers 202; the worker sends it later.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                  true "Invoice ID"
// @Param        body body dto.EmailInvoiceRequest true "Recipient"
// @Success      202
// @Failure      404  {object} apierror.APIError
// @Failure      503  {object} apierror.APIError
// @Router       /v1/invoices/{id}/email [post]
func (h *InvoicesHandler) Email(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.EmailInvoiceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.Email(c.Request.Context(), id, req); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"queued": true, "to": req.To})
}
