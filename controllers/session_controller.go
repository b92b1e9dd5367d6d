package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hotel-frontdesk/services"
	"hotel-frontdesk/utils"
)

type SessionController struct {
	Desk *services.FrontDesk
}

func NewSessionController(desk *services.FrontDesk) *SessionController {
	return &SessionController{Desk: desk}
}

// GET /api/rooms/:id/session
func (sc *SessionController) GetSession(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	s, err := sc.Desk.Session(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, s)
}

// PUT /api/rooms/:id/session
func (sc *SessionController) AmendSession(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.SessionAmendment
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request payload: "+err.Error())
		return
	}
	s, err := sc.Desk.AmendSession(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, s)
}

// GET /api/sessions
//
// Answers the roomSessions map keyed by room id.
func (sc *SessionController) ListSessions(c *gin.Context) {
	all, err := sc.Desk.Sessions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make(map[string]interface{}, len(all))
	for id, s := range all {
		out[strconv.FormatUint(uint64(id), 10)] = s
	}
	utils.JSONSuccess(c, http.StatusOK, out)
}
