package service

import (
	"github.com/gin-gonic/gin"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/core"
	v1 "github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/logic/v1"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/response"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/cmd/service/handler"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/cmd/service/middleware"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/metrics"
)

func serve(core *core.Core) {
	httpSrv := &handler.HttpSrv{
		Core:   core,
		Engine: core.HttpEngine(),
	}
	setupHttpRouter(httpSrv)

	core.HttpEngine().Run(core.Cfg().Addr)
}

func GetIPLimitBuilder(appCore *core.Core) middleware.LimiterFunc {
	return func(key string, opts ...core.LimitOption) gin.HandlerFunc {
		return middleware.UseLimit(appCore, func(c *gin.Context) string {
			return key + ":" + c.ClientIP()
		}, opts...)
	}
}

func GetUserLimitBuilder(appCore *core.Core) middleware.LimiterFunc {
	return func(key string, opts ...core.LimitOption) gin.HandlerFunc {
		return middleware.UseLimit(appCore, func(c *gin.Context) string {
			token, _ := v1.InjectTokenClaim(c)
			return key + ":" + token.User
		}, opts...)
	}
}

func setupHttpRouter(s *handler.HttpSrv) {
	ipLimit := GetIPLimitBuilder(s.Core)
	userLimit := GetUserLimitBuilder(s.Core)

	s.Engine.Use(middleware.I18n(), response.NewResponse())
	s.Engine.Use(middleware.Cors)
	s.Engine.GET("/metrics", metrics.DefaultExportHandler())

	apiV1 := s.Engine.Group("/api/v1")
	{
		apiV1.GET("/connect", middleware.AuthorizationFromQuery(s.Core), handler.Websocket(s.Core))

		auth := apiV1.Group("/auth")
		{
			auth.POST("/credentials", ipLimit("credentials"), s.IssueCredentials)
		}

		apiV1.POST("/user", ipLimit("create_user"), s.CreateUser)

		authed := apiV1.Group("")
		authed.Use(middleware.AcceptLanguage(), middleware.Authorization(s.Core))

		user := authed.Group("/user")
		{
			user.GET("/info", s.GetUser)
			user.GET("/detail/:userid", s.GetUser)
			user.PUT("/profile", userLimit("profile"), s.UpdateUserProfile)
			user.DELETE("/secret/tokens", s.RevokeTokens)
			user.GET("/offline/count", s.GetOfflineBacklogCount)
		}

		conversation := authed.Group("/conversation")
		{
			conversation.POST("", userLimit("create_conversation"), s.CreateConversation)
			conversation.GET("/list", s.ListConversations)
			conversation.GET("/:conversation", s.GetConversation)

			conversation.GET("/:conversation/participants", s.ListParticipants)
			conversation.POST("/:conversation/participants", s.AddParticipants)
			conversation.DELETE("/:conversation/participants/:userid", s.RemoveParticipant)
			conversation.PUT("/:conversation/participants/role", s.UpdateParticipantRole)

			conversation.PUT("/:conversation/mute", s.MuteConversation)
			conversation.DELETE("/:conversation/mute", s.UnmuteConversation)
			conversation.GET("/:conversation/unread", s.GetUnreadBadge)

			conversation.POST("/:conversation/message", userLimit("send_message"), s.SendMessage)
			conversation.GET("/:conversation/message/list", s.ListMessages)
			conversation.POST("/:conversation/message/read", s.MarkRead)
			conversation.POST("/:conversation/message/receipts", s.GetDeliveryStates)
		}

		message := authed.Group("/message")
		{
			message.PUT("/:messageid", s.EditMessage)
			message.DELETE("/:messageid", s.DeleteMessage)
			message.POST("/delivered", s.MarkDelivered)
		}

		notification := authed.Group("/notification")
		{
			notification.GET("/preferences", s.GetNotificationPreferences)
			notification.PUT("/preferences", s.UpdateNotificationPreferences)
			notification.POST("/device", s.RegisterDevice)
			notification.DELETE("/device", s.RemoveDevice)
			notification.GET("/device/list", s.ListDevices)
			notification.GET("/list", s.ListNotifications)
		}
	}
}
