package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/core"
)

type HttpSrv struct {
	Core   *core.Core
	Engine *gin.Engine
}
