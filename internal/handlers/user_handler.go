package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farhanadi/ticketbook/internal/helpers"
	"github.com/farhanadi/ticketbook/internal/middleware"
	"github.com/farhanadi/ticketbook/internal/models"
)

func Me(c *gin.Context) {
	userID, exists := middleware.CurrentUserID(c)
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var user models.User
	if err := gormDB.First(&user, userID).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "User not found.")
		return
	}

	c.JSON(http.StatusOK, user)
}
