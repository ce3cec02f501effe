package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/logic/v1"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/response"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/types"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/utils"
)

type SendMessageRequest struct {
	MsgType string `json:"msg_type" form:"msg_type" binding:"required"`
	Content string `json:"content" form:"content" binding:"required"`
	ReplyTo string `json:"reply_to" form:"reply_to"`
}

// SendMessage is the HTTP variant of the websocket send operation, so every
// session of the sender receives the stored message frame.
func (s *HttpSrv) SendMessage(c *gin.Context) {
	var (
		err error
		req SendMessageRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	conversationID, _ := c.Params.Get("conversation")
	message, err := v1.NewDeliveryLogic(c, s.Core).SendMessage(conversationID, "", types.SendMessageOpData{
		MsgType: req.MsgType,
		Content: req.Content,
		ReplyTo: req.ReplyTo,
	})
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, message)
}

type ListMessagesRequest struct {
	AfterSequence int64  `json:"after_sequence" form:"after_sequence"`
	Limit         uint64 `json:"limit" form:"limit"`
}

func (s *HttpSrv) ListMessages(c *gin.Context) {
	var (
		err error
		req ListMessagesRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	conversationID, _ := c.Params.Get("conversation")
	list, err := v1.NewDeliveryLogic(c, s.Core).ListMessages(conversationID, req.AfterSequence, req.Limit)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, list)
}

type EditMessageRequest struct {
	Content string `json:"content" form:"content" binding:"required"`
}

func (s *HttpSrv) EditMessage(c *gin.Context) {
	var (
		err error
		req EditMessageRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	messageID, _ := c.Params.Get("messageid")
	message, err := v1.NewDeliveryLogic(c, s.Core).EditMessage(messageID, req.Content)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, message)
}

func (s *HttpSrv) DeleteMessage(c *gin.Context) {
	messageID, _ := c.Params.Get("messageid")
	if err := v1.NewDeliveryLogic(c, s.Core).DeleteMessage(messageID); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}

type MarkReadRequest struct {
	MessageIDs []string `json:"message_ids" form:"message_ids" binding:"required"`
}

func (s *HttpSrv) MarkRead(c *gin.Context) {
	var (
		err error
		req MarkReadRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	conversationID, _ := c.Params.Get("conversation")
	if err = v1.NewDeliveryLogic(c, s.Core).MarkRead(conversationID, req.MessageIDs); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}

type MarkDeliveredRequest struct {
	MessageIDs []string `json:"message_ids" form:"message_ids" binding:"required"`
}

func (s *HttpSrv) MarkDelivered(c *gin.Context) {
	var (
		err error
		req MarkDeliveredRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	if err = v1.NewDeliveryLogic(c, s.Core).MarkDelivered(req.MessageIDs); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}

type DeliveryStatesRequest struct {
	MessageIDs []string `json:"message_ids" form:"message_ids" binding:"required"`
}

func (s *HttpSrv) GetDeliveryStates(c *gin.Context) {
	var (
		err error
		req DeliveryStatesRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	conversationID, _ := c.Params.Get("conversation")
	states, err := v1.NewDeliveryLogic(c, s.Core).GetDeliveryStates(conversationID, req.MessageIDs)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, states)
}
