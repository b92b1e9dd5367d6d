package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-frontdesk/models"
	"hotel-frontdesk/services"
	"hotel-frontdesk/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type HistoryController struct {
	Desk *services.FrontDesk
}

func NewHistoryController(desk *services.FrontDesk) *HistoryController {
	return &HistoryController{Desk: desk}
}

// GET /api/history?hotelId=&roomId=&page=&limit=
func (hc *HistoryController) List(c *gin.Context) {
	var q models.HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "invalid query: "+err.Error())
		return
	}
	page, err := hc.Desk.History(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, page)
}

// GET /api/history/export
func (hc *HistoryController) Export(c *gin.Context) {
	var q models.HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "invalid query: "+err.Error())
		return
	}
	buf, err := hc.Desk.ExportHistory(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}

	name := "room-history.xlsx"
	if q.RoomID != 0 {
		name = fmt.Sprintf("room-%d-history.xlsx", q.RoomID)
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
