package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-frontdesk/middleware"
	"hotel-frontdesk/models"
	"hotel-frontdesk/roomstate"
	"hotel-frontdesk/services"
	"hotel-frontdesk/utils"
)

// ---------------------------
// Payload / DTOs
// ---------------------------

type checkinRequest struct {
	models.CheckinSession
}

type checkoutRequest struct {
	StaffID string               `json:"staffId"`
	Unpaid  bool                 `json:"unpaid"`
	Invoice *models.InvoiceDraft `json:"invoice"`
}

type staffNoteRequest struct {
	StaffID string `json:"staffId"`
	Note    string `json:"note"`
}

type transferRequest struct {
	TargetID uint   `json:"targetId" binding:"required"`
	StaffID  string `json:"staffId"`
	Note     string `json:"note"`
}

// roomView adds the actions the board may offer for the room's status.
type roomView struct {
	*models.Room
	AllowedActions []roomstate.Action `json:"allowedActions"`
}

func newRoomView(r *models.Room) roomView {
	return roomView{Room: r, AllowedActions: roomstate.Allowed(r.Status)}
}

// ---------------------------
// Controller
// ---------------------------

type RoomController struct {
	Desk *services.FrontDesk
}

func NewRoomController(desk *services.FrontDesk) *RoomController {
	return &RoomController{Desk: desk}
}

// GET /api/rooms/:id
func (rc *RoomController) GetRoom(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	room, err := rc.Desk.Room(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, newRoomView(room))
}

// GET /api/hotels/:id/rooms/available
func (rc *RoomController) AvailableRooms(c *gin.Context) {
	hotelID, ok := paramID(c, "id")
	if !ok {
		return
	}
	rooms, err := rc.Desk.AvailableRooms(c.Request.Context(), hotelID)
	if err != nil {
		respondError(c, err)
		return
	}
	if rooms == nil {
		rooms = []models.Room{}
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

// POST /api/rooms/:id/checkin
func (rc *RoomController) CheckIn(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req checkinRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	room, err := rc.Desk.CheckIn(c.Request.Context(), id, services.CheckinRequest{
		Session: req.CheckinSession,
		StaffID: middleware.StaffID(c, req.StaffID),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, newRoomView(room))
}

// POST /api/rooms/:id/checkout
//
// The stay is closed even when the invoice could not be stored; the answer
// then carries invoiceSaveError next to the unsaved invoice.
func (rc *RoomController) CheckOut(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req checkoutRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	res, err := rc.Desk.CheckOut(c.Request.Context(), id, services.CheckoutRequest{
		StaffID: middleware.StaffID(c, req.StaffID),
		Unpaid:  req.Unpaid,
		Draft:   req.Invoice,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, res)
}

// POST /api/rooms/:id/clean
func (rc *RoomController) Clean(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req staffNoteRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	room, err := rc.Desk.Clean(c.Request.Context(), id, middleware.StaffID(c, req.StaffID), req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, newRoomView(room))
}

// POST /api/rooms/:id/maintenance
func (rc *RoomController) ToggleMaintenance(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req staffNoteRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	room, err := rc.Desk.ToggleMaintenance(c.Request.Context(), id, middleware.StaffID(c, req.StaffID), req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, newRoomView(room))
}

// POST /api/rooms/:id/transfer
func (rc *RoomController) Transfer(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "targetId is required")
		return
	}
	res, err := rc.Desk.Transfer(c.Request.Context(), id, req.TargetID, middleware.StaffID(c, req.StaffID), req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"source": newRoomView(res.Source),
		"target": newRoomView(res.Target),
	})
}

// GET /api/rooms/:id/quote
func (rc *RoomController) Quote(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b, err := rc.Desk.Quote(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, b)
}
