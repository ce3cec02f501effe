package srv

import (
	"encoding/json"

	fireprotocol "github.com/holdno/firetower/protocol"
	"github.com/holdno/firetower/service/tower"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/socket/firetower"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/types"
)

// Tower wraps the firetower manager with the event envelope every session
// receives. Topic routing decides scope: conversation topics reach joined
// rooms, user topics reach all of one user's devices.
type Tower struct {
	pusher *firetower.SelfPusher[PublishData]
	tower.Manager[PublishData]
}

type PublishData struct {
	Subject string            `json:"subject"`
	Version string            `json:"version"`
	Type    types.WsEventType `json:"type"`
	Data    any               `json:"data"`
}

func (c *PublishData) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte(""), nil
	}
	return json.Marshal(*c)
}

func (c *PublishData) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == `""` {
		return nil
	}
	type alias PublishData
	return json.Unmarshal(data, (*alias)(c))
}

func SetupSocketSrv() (*Tower, error) {
	manager, pusher, err := firetower.SetupFiretower[PublishData]()
	if err != nil {
		return nil, err
	}

	return &Tower{
		pusher:  pusher,
		Manager: manager,
	}, nil
}

func ApplyTower() ApplyFunc {
	return func(s *Srv) {
		var err error
		if s.tower, err = SetupSocketSrv(); err != nil {
			panic(err)
		}
	}
}

func (t *Tower) Pusher() *firetower.SelfPusher[PublishData] {
	return t.pusher
}

func (t *Tower) NewMessage(topic string, op fireprotocol.FireOperation, data PublishData) *fireprotocol.FireInfo[PublishData] {
	fire := t.NewFire(fireprotocol.SourceSystem, t.pusher)
	fire.Message.Topic = topic
	fire.Message.Type = op
	fire.Message.Data = data
	return fire
}

// PublishToConversation emits an event on the conversation room topic.
func (t *Tower) PublishToConversation(conversationID string, event types.WsEventType, data any) error {
	return t.publish(types.ConversationTopic(conversationID), fireprotocol.PublishOperation, PublishData{
		Subject: "conversation_event",
		Version: "v1",
		Type:    event,
		Data:    data,
	})
}

// PublishToUser emits an event on the user's private topic, reaching every
// connected device whether or not it has the conversation open.
func (t *Tower) PublishToUser(userID string, event types.WsEventType, data any) error {
	return t.publish(types.UserTopic(userID), fireprotocol.PublishOperation, PublishData{
		Subject: "user_event",
		Version: "v1",
		Type:    event,
		Data:    data,
	})
}

func (t *Tower) publish(topic string, op fireprotocol.FireOperation, data PublishData) error {
	fire := t.NewMessage(topic, op, data)
	return t.Publish(fire)
}
