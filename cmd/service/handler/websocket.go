package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/holdno/firetower/protocol"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/core"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/core/srv"
	v1 "github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/logic/v1"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/response"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/errors"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/i18n"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/types"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Websocket is the realtime entry point. Each connection becomes a firetower
// session plus a registry entry; topic subscriptions map to conversation
// rooms and the client's own user channel.
func Websocket(core *core.Core) func(c *gin.Context) {
	if core.Srv().Tower() == nil {
		return func(c *gin.Context) {
			response.APIError(c, errors.New("api.Websocket", "this server not support websocket service", nil))
		}
	}
	return func(c *gin.Context) {
		var ws *websocket.Conn
		var err error

		tower := core.Srv().Tower()
		tokenClaim, _ := v1.InjectTokenClaim(c)

		ws, err = upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("Websocket Upgrade err", slog.String("error", err.Error()))
			response.APIError(c, errors.New("api.Websocket", "failed to upgrade http", err))
			return
		}

		id := utils.GenRandomID()
		thisTower, err := tower.BuildTower(ws, id)
		if err != nil {
			response.APIError(c, errors.New("api.Websocket", "failed to build firetower", err))
			return
		}
		thisTower.SetUserID(tokenClaim.User)

		_, first := core.Registry().Register(id, tokenClaim.User, func(raw []byte) {
			thisTower.SendToClient(raw)
		})
		v1.NewPresenceLogic(c, core).SessionConnected(tokenClaim.User, first)

		thisTower.SetReadHandler(func(fire protocol.ReadOnlyFire[srv.PublishData]) bool {
			handleClientOp(c, core, id, fire, func(raw []byte) {
				thisTower.SendToClient(raw)
			})
			// client frames are commands, never relayed to the topic as-is
			return false
		})

		thisTower.SetReceivedHandler(func(fi protocol.ReadOnlyFire[srv.PublishData]) bool {
			raw, err := json.Marshal(fi.GetMessage())
			if err != nil {
				slog.Error("failed to marshal firetower received message", slog.String("error", err.Error()))
				return false
			}
			thisTower.SendToClient(raw)
			return false
		})

		thisTower.SetReadTimeoutHandler(func(fire protocol.ReadOnlyFire[srv.PublishData]) {
			slog.Error("read timeout trigger", slog.String("component", "firetower"))
		})

		thisTower.SetBeforeSubscribeHandler(func(fireCtx protocol.FireLife, topics []string) bool {
			for _, v := range topics {
				switch {
				case strings.HasPrefix(v, types.TOPIC_PREFIX_CONVERSATION):
					conversationID := strings.TrimPrefix(v, types.TOPIC_PREFIX_CONVERSATION)
					if _, err := v1.NewConversationLogic(c, core).CheckParticipant(conversationID, tokenClaim.User); err != nil {
						slog.Warn("subscribe rejected, user is not a participant", slog.String("component", "firetower"),
							slog.String("user", tokenClaim.User), slog.String("topic", v))
						thisTower.SendToClient(wsErrorFrame(err))
						return false
					}
				case strings.HasPrefix(v, types.TOPIC_PREFIX_USER):
					if strings.TrimPrefix(v, types.TOPIC_PREFIX_USER) != tokenClaim.User {
						thisTower.SendToClient(wsErrorFrame(
							errors.New("api.Websocket.subscribe", i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized)))
						return false
					}
				default:
					thisTower.SendToClient(wsErrorFrame(
						errors.New("api.Websocket.subscribe", i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized)))
					return false
				}
			}
			return true
		})

		thisTower.SetSubscribeHandler(func(context protocol.FireLife, topic []string) {
			for _, v := range topic {
				if strings.HasPrefix(v, types.TOPIC_PREFIX_CONVERSATION) {
					conversationID := strings.TrimPrefix(v, types.TOPIC_PREFIX_CONVERSATION)
					if err := v1.NewPresenceLogic(c, core).JoinConversation(id, conversationID); err != nil {
						slog.Error("failed to join conversation room",
							slog.String("conversation_id", conversationID), slog.String("error", err.Error()))
						thisTower.SendToClient(wsErrorFrame(err))
						continue
					}
				}

				resp := &protocol.TopicMessage[json.RawMessage]{
					Topic: v,
					Type:  protocol.SubscribeOperation,
				}
				resp.Data = json.RawMessage(`{"status":"success"}`)
				msg, _ := json.Marshal(resp)
				thisTower.SendToClient(msg)
			}
		})

		thisTower.SetUnSubscribeHandler(func(context protocol.FireLife, topic []string) {
			for _, v := range topic {
				if strings.HasPrefix(v, types.TOPIC_PREFIX_CONVERSATION) {
					conversationID := strings.TrimPrefix(v, types.TOPIC_PREFIX_CONVERSATION)
					v1.NewPresenceLogic(c, core).LeaveConversation(id, conversationID)
				}

				resp := &protocol.TopicMessage[json.RawMessage]{
					Topic: v,
					Type:  protocol.UnSubscribeOperation,
				}
				resp.Data = json.RawMessage(`{"status":"success"}`)
				msg, _ := json.Marshal(resp)
				thisTower.SendToClient(msg)
			}
		})

		thisTower.SetOnOfflineHandler(func() {
			_, last := core.Registry().Unregister(id)
			v1.NewPresenceLogic(c, core).SessionClosed(tokenClaim.User, last)
		})

		thisTower.Run()
	}
}

// handleClientOp dispatches one client command frame. Errors go back to the
// issuing session only.
func handleClientOp(c *gin.Context, core *core.Core, sessionID string, fire protocol.ReadOnlyFire[srv.PublishData], reply func(raw []byte)) {
	msg := fire.GetMessage()
	if !strings.HasPrefix(msg.Topic, types.TOPIC_PREFIX_CONVERSATION) {
		return
	}
	conversationID := strings.TrimPrefix(msg.Topic, types.TOPIC_PREFIX_CONVERSATION)

	var err error
	switch string(msg.Data.Type) {
	case types.WS_OP_SEND_MESSAGE:
		var op types.SendMessageOpData
		if err = decodeOpData(msg.Data.Data, &op); err == nil {
			_, err = v1.NewDeliveryLogic(c, core).SendMessage(conversationID, sessionID, op)
		}
	case types.WS_OP_TYPING_START:
		err = v1.NewPresenceLogic(c, core).StartTyping(conversationID, sessionID)
	case types.WS_OP_TYPING_STOP:
		v1.NewPresenceLogic(c, core).StopTyping(conversationID, sessionID)
	case types.WS_OP_USER_ONLINE:
		v1.NewPresenceLogic(c, core).AnnounceOnline()
	case types.WS_OP_MARK_READ:
		var op types.MarkReadOpData
		if err = decodeOpData(msg.Data.Data, &op); err == nil {
			err = v1.NewDeliveryLogic(c, core).MarkRead(conversationID, op.MessageIDs)
		}
	default:
		return
	}

	if err != nil {
		reply(wsErrorFrame(err))
	}
}

func decodeOpData(data any, out any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func wsErrorFrame(err error) []byte {
	code := types.WS_ERR_INTERNAL
	if cerr, ok := err.(*errors.CustomizedError); ok {
		switch cerr.GetCode() {
		case http.StatusNotFound:
			code = types.WS_ERR_CONVERSATION_NOT_FOUND
		case http.StatusUnauthorized, http.StatusForbidden:
			code = types.WS_ERR_UNAUTHORIZED
		case http.StatusBadRequest:
			code = types.WS_ERR_INVALID_MESSAGE_CONTENT
			if cerr.Message() == i18n.ERROR_INVALID_MESSAGE_REFERENCE {
				code = types.WS_ERR_INVALID_REFERENCE
			}
		}
	}

	raw, _ := json.Marshal(srv.PublishData{
		Subject: "conversation_event",
		Version: "v1",
		Type:    types.WS_EVENT_ERROR,
		Data: types.WsErrorData{
			Code:    code,
			Message: err.Error(),
		},
	})
	return raw
}
