package handler

import (
	"net/http"

	"github.com/zakareajob-cpu/zak-crm/internal/apierror"
	"github.com/zakareajob-cpu/zak-crm/internal/dto"
	"github.com/zakareajob-cpu/zak-crm/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProductsHandler struct{ svc service.ProductService }

func NewProductsHandler(svc service.ProductService) *ProductsHandler {
	return &ProductsHandler{svc: svc}
}

func (h *ProductsHandler) Create(c *gin.Context) {
	var req dto.ProductRequest
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

func (h *ProductsHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Search backs the invoice line autocomplete.
func (h *ProductsHandler) Search(c *gin.Context) {
	var filter dto.ProductSearchFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Search(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductsHandler) Get(c *gin.Context) {
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

func (h *ProductsHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductsHandler) Delete(c *gin.Context) {
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

// Price resolves the unit price for an optional ?contact_id=.
func (h *ProductsHandler) Price(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var contactID *uuid.UUID
	if raw := c.Query("contact_id"); raw != "" {
		cid, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid contact_id"))
			return
		}
		contactID = &cid
	}
	resp, err := h.svc.PriceFor(c.Request.Context(), contactID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Customer prices (/v1/contacts/:id/prices) ────────────────────────────────

func (h *ProductsHandler) ListCustomerPrices(c *gin.Context) {
	contactID, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListCustomerPrices(c.Request.Context(), contactID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductsHandler) SetCustomerPrice(c *gin.Context) {
	contactID, ok := parseID(c, "id")
	if !ok {
		return
	}
	productID, ok := parseID(c, "product_id")
	if !ok {
		return
	}
	var req dto.CustomerPriceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SetCustomerPrice(c.Request.Context(), contactID, productID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductsHandler) DeleteCustomerPrice(c *gin.Context) {
	contactID, ok := parseID(c, "id")
	if !ok {
		return
	}
	productID, ok := parseID(c, "product_id")
	if !ok {
		return
	}
	if err := h.svc.DeleteCustomerPrice(c.Request.Context(), contactID, productID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
