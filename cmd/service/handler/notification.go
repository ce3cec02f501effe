package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/logic/v1"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/response"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/types"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/utils"
)

func (s *HttpSrv) GetNotificationPreferences(c *gin.Context) {
	prefs, err := v1.NewNotificationLogic(c, s.Core).GetPreferences()
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, prefs)
}

type UpdateNotificationPreferencesRequest struct {
	PushEnabled          bool   `json:"push_enabled" form:"push_enabled"`
	MessageNotifications bool   `json:"message_notifications" form:"message_notifications"`
	GroupNotifications   bool   `json:"group_notifications" form:"group_notifications"`
	MentionNotifications bool   `json:"mention_notifications" form:"mention_notifications"`
	QuietHoursEnabled    bool   `json:"quiet_hours_enabled" form:"quiet_hours_enabled"`
	QuietHoursStart      string `json:"quiet_hours_start" form:"quiet_hours_start"`
	QuietHoursEnd        string `json:"quiet_hours_end" form:"quiet_hours_end"`
	Timezone             string `json:"timezone" form:"timezone"`
}

func (s *HttpSrv) UpdateNotificationPreferences(c *gin.Context) {
	var (
		err error
		req UpdateNotificationPreferencesRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	if err = v1.NewNotificationLogic(c, s.Core).UpdatePreferences(types.NotificationPreferences{
		PushEnabled:          req.PushEnabled,
		MessageNotifications: req.MessageNotifications,
		GroupNotifications:   req.GroupNotifications,
		MentionNotifications: req.MentionNotifications,
		QuietHoursEnabled:    req.QuietHoursEnabled,
		QuietHoursStart:      req.QuietHoursStart,
		QuietHoursEnd:        req.QuietHoursEnd,
		Timezone:             req.Timezone,
	}); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}

type RegisterDeviceRequest struct {
	Token    string `json:"token" form:"token" binding:"required"`
	Platform string `json:"platform" form:"platform" binding:"required"`
}

func (s *HttpSrv) RegisterDevice(c *gin.Context) {
	var (
		err error
		req RegisterDeviceRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	if err = v1.NewNotificationLogic(c, s.Core).RegisterDevice(req.Token, types.DevicePlatform(req.Platform)); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}

type RemoveDeviceRequest struct {
	Token string `json:"token" form:"token" binding:"required"`
}

func (s *HttpSrv) RemoveDevice(c *gin.Context) {
	var (
		err error
		req RemoveDeviceRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	if err = v1.NewNotificationLogic(c, s.Core).RemoveDevice(req.Token); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}

func (s *HttpSrv) ListDevices(c *gin.Context) {
	list, err := v1.NewNotificationLogic(c, s.Core).ListDevices()
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, list)
}

type ListNotificationsRequest struct {
	Page     uint64 `json:"page" form:"page"`
	PageSize uint64 `json:"pagesize" form:"pagesize"`
}

func (s *HttpSrv) ListNotifications(c *gin.Context) {
	var (
		err error
		req ListNotificationsRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	list, err := v1.NewNotificationLogic(c, s.Core).ListNotifications(req.Page, req.PageSize)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, list)
}
