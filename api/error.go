package api

import (
	"errors"

	"github.com/gin-gonic/gin"
)

var (
	ErrEmptyUserID = errors.New("user ID cannot be empty")
)

func errorResponse(err error) gin.H {
	return gin.H{"error": err.Error()}
}
