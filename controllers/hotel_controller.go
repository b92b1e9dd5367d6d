package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-frontdesk/services"
	"hotel-frontdesk/utils"
)

type HotelController struct {
	Desk *services.FrontDesk
}

func NewHotelController(desk *services.FrontDesk) *HotelController {
	return &HotelController{Desk: desk}
}

// GET /api/hotels/:id
func (hc *HotelController) GetHotel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	info, err := hc.Desk.HotelInfo(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, info)
}
