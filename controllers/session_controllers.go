package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/dinein-app/services"
	"github.com/yeremiapane/dinein-app/utils"
)

type SessionController struct {
	Sessions *services.SessionService
}

func NewSessionController(sessions *services.SessionService) *SessionController {
	return &SessionController{Sessions: sessions}
}

// ScanTable -> tamu scan QR meja. Token ada di query; ID meja di URL
// mengikat token ke secret meja tersebut.
func (sc *SessionController) ScanTable(c *gin.Context) {
	idStr := c.Param("table_id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	token := c.Query("token")
	if token == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("missing token"))
		return
	}

	session, err := sc.Sessions.Admit(uint(id), token)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Session ready", session)
}

// GetActiveSession -> cek sesi open sebuah meja
func (sc *SessionController) GetActiveSession(c *gin.Context) {
	idStr := c.Param("table_id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	session, err := sc.Sessions.ActiveSession(uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Active session", session)
}
