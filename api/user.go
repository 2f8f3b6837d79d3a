package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type updateUserFCMTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// updateUserFCMToken stores a refreshed device token on the user document.
// Devices call this after a token-refresh callback so future recipient
// lookups find a working token.
func (server *Server) updateUserFCMToken(ctx *gin.Context) {
	userID := ctx.Param("id")
	if userID == "" {
		ctx.JSON(http.StatusBadRequest, errorResponse(ErrEmptyUserID))
		return
	}

	var req updateUserFCMTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	if err := server.dbStore.UpdateUserFCMToken(ctx, userID, req.Token); err != nil {
		ctx.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "fcm token updated successfully"})
}
