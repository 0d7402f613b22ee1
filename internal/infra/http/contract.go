package server

import (
	"github.com/gin-gonic/gin"
)

type PlaylistHandler interface {
	Build(ctx *gin.Context)
}
