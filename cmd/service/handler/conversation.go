package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/logic/v1"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/response"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/types"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/utils"
)

type CreateConversationRequest struct {
	Type         types.ConversationType `json:"type" form:"type" binding:"required"`
	Title        string                 `json:"title" form:"title"`
	Participants []string               `json:"participants" form:"participants" binding:"required"`
}

func (s *HttpSrv) CreateConversation(c *gin.Context) {
	var (
		err error
		req CreateConversationRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	conversation, err := v1.NewConversationLogic(c, s.Core).CreateConversation(req.Type, req.Title, req.Participants)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, conversation)
}

func (s *HttpSrv) GetConversation(c *gin.Context) {
	conversationID, _ := c.Params.Get("conversation")

	conversation, err := v1.NewConversationLogic(c, s.Core).GetConversation(conversationID)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, conversation)
}

type ListConversationsRequest struct {
	Type     string `json:"type" form:"type"`
	Page     uint64 `json:"page" form:"page"`
	PageSize uint64 `json:"pagesize" form:"pagesize"`
}

func (s *HttpSrv) ListConversations(c *gin.Context) {
	var (
		err error
		req ListConversationsRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	var convType *types.ConversationType
	if req.Type != "" {
		t := types.ConversationType(req.Type)
		convType = &t
	}

	list, err := v1.NewConversationLogic(c, s.Core).ListConversations(convType, req.Page, req.PageSize)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, list)
}

func (s *HttpSrv) ListParticipants(c *gin.Context) {
	conversationID, _ := c.Params.Get("conversation")

	list, err := v1.NewConversationLogic(c, s.Core).ListParticipants(conversationID)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, list)
}

type AddParticipantsRequest struct {
	UserIDs []string `json:"user_ids" form:"user_ids" binding:"required"`
}

func (s *HttpSrv) AddParticipants(c *gin.Context) {
	var (
		err error
		req AddParticipantsRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	conversationID, _ := c.Params.Get("conversation")
	if err = v1.NewConversationLogic(c, s.Core).AddParticipants(conversationID, req.UserIDs); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}

func (s *HttpSrv) RemoveParticipant(c *gin.Context) {
	conversationID, _ := c.Params.Get("conversation")
	userID, _ := c.Params.Get("userid")

	if err := v1.NewConversationLogic(c, s.Core).RemoveParticipant(conversationID, userID); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}

type UpdateParticipantRoleRequest struct {
	UserID string                `json:"user_id" form:"user_id" binding:"required"`
	Role   types.ParticipantRole `json:"role" form:"role" binding:"required"`
}

func (s *HttpSrv) UpdateParticipantRole(c *gin.Context) {
	var (
		err error
		req UpdateParticipantRoleRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	conversationID, _ := c.Params.Get("conversation")
	if err = v1.NewConversationLogic(c, s.Core).UpdateParticipantRole(conversationID, req.UserID, req.Role); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}

type MuteConversationRequest struct {
	Until int64 `json:"until" form:"until"`
}

func (s *HttpSrv) MuteConversation(c *gin.Context) {
	var (
		err error
		req MuteConversationRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	conversationID, _ := c.Params.Get("conversation")
	if err = v1.NewNotificationLogic(c, s.Core).MuteConversation(conversationID, req.Until); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}

func (s *HttpSrv) UnmuteConversation(c *gin.Context) {
	conversationID, _ := c.Params.Get("conversation")
	if err := v1.NewNotificationLogic(c, s.Core).UnmuteConversation(conversationID); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}

func (s *HttpSrv) GetUnreadBadge(c *gin.Context) {
	conversationID, _ := c.Params.Get("conversation")
	claims, _ := v1.InjectTokenClaim(c)

	count, err := s.Core.Cache().GetUnreadBadge(c, claims.User, conversationID)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, gin.H{"count": count})
}
