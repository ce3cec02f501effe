package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/errors"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/i18n"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/types"
)

func decodeErrorFrame(t *testing.T, raw []byte) types.WsErrorData {
	t.Helper()
	var env struct {
		Type types.WsEventType `json:"type"`
		Data types.WsErrorData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &env))
	require.Equal(t, types.WS_EVENT_ERROR, env.Type)
	return env.Data
}

func TestWsErrorFrame_RejectedSubscribeReachesTheClient(t *testing.T) {
	raw := wsErrorFrame(errors.New("api.Websocket.subscribe", i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusForbidden))
	require.NotEmpty(t, raw)

	data := decodeErrorFrame(t, raw)
	assert.Equal(t, types.WS_ERR_UNAUTHORIZED, data.Code)
	assert.NotEmpty(t, data.Message)
}

func TestWsErrorFrame_CodeMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "unknown conversation",
			err:  errors.New("t", i18n.ERROR_CONVERSATION_NOT_FOUND, nil).Code(http.StatusNotFound),
			want: types.WS_ERR_CONVERSATION_NOT_FOUND,
		},
		{
			name: "missing credentials",
			err:  errors.New("t", i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized),
			want: types.WS_ERR_UNAUTHORIZED,
		},
		{
			name: "bad content",
			err:  errors.New("t", i18n.ERROR_INVALID_MESSAGE_CONTENT, nil).Code(http.StatusBadRequest),
			want: types.WS_ERR_INVALID_MESSAGE_CONTENT,
		},
		{
			name: "bad reply reference",
			err:  errors.New("t", i18n.ERROR_INVALID_MESSAGE_REFERENCE, nil).Code(http.StatusBadRequest),
			want: types.WS_ERR_INVALID_REFERENCE,
		},
		{
			name: "plain error",
			err:  assert.AnError,
			want: types.WS_ERR_INTERNAL,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data := decodeErrorFrame(t, wsErrorFrame(tc.err))
			assert.Equal(t, tc.want, data.Code)
		})
	}
}
