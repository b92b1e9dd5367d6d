package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-frontdesk/middleware"
	"hotel-frontdesk/models"
	"hotel-frontdesk/services"
	"hotel-frontdesk/utils"
)

type InvoiceController struct {
	Desk *services.FrontDesk
}

func NewInvoiceController(desk *services.FrontDesk) *InvoiceController {
	return &InvoiceController{Desk: desk}
}

// GET /api/invoices/:id
func (ic *InvoiceController) GetInvoice(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	inv, err := ic.Desk.GetInvoice(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, inv)
}

// POST /api/invoices
func (ic *InvoiceController) CreateInvoice(c *gin.Context) {
	var inv models.InvoiceData
	if err := c.ShouldBindJSON(&inv); err != nil {
		badRequest(c, "invalid request payload: "+err.Error())
		return
	}
	if inv.InvoiceNumber != "" && !utils.IsValidInvoiceNumber(inv.InvoiceNumber) {
		badRequest(c, "invoiceNumber must be 6 digits")
		return
	}
	inv.StaffID = middleware.StaffID(c, inv.StaffID)

	saved, err := ic.Desk.CreateInvoice(c.Request.Context(), &inv)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, saved)
}

// PUT /api/invoices/:id
func (ic *InvoiceController) UpdateInvoice(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var inv models.InvoiceData
	if err := c.ShouldBindJSON(&inv); err != nil {
		badRequest(c, "invalid request payload: "+err.Error())
		return
	}
	saved, err := ic.Desk.UpdateInvoice(c.Request.Context(), id, &inv)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, saved)
}

// DELETE /api/invoices/:id
func (ic *InvoiceController) DeleteInvoice(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := ic.Desk.DeleteInvoice(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id})
}

// PATCH /api/invoices/:id/status
func (ic *InvoiceController) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.InvoiceStatusPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request payload: "+err.Error())
		return
	}
	status, valid := models.ParsePaymentStatus(string(req.Status))
	if !valid {
		badRequest(c, "status must be paid, unpaid or void")
		return
	}
	inv, err := ic.Desk.UpdateInvoiceStatus(c.Request.Context(), id, status)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, inv)
}

// POST /api/invoices/:id/email
//
// An empty body sends to the invoice's customer email.
func (ic *InvoiceController) EmailInvoice(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.InvoiceEmailPayload
	if !bindOptionalJSON(c, &req) {
		return
	}
	if err := ic.Desk.EmailInvoice(c.Request.Context(), id, req.Email); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"sent": true})
}
