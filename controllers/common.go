package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/dinein-app/services"
	"github.com/yeremiapane/dinein-app/utils"
)

// respondServiceError memetakan error service ke kode HTTP.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrInvalidToken),
		errors.Is(err, services.ErrStaleToken):
		utils.RespondError(c, http.StatusUnauthorized, err)
	case errors.Is(err, services.ErrSessionNotOpen),
		errors.Is(err, services.ErrTableInactive):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrOrderNotPayable):
		utils.RespondError(c, http.StatusBadRequest, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}
