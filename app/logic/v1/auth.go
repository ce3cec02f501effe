package v1

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/core"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/auth"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/errors"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/i18n"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/security"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/types"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/utils"
)

type AuthLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewAuthLogic(ctx context.Context, core *core.Core) *AuthLogic {
	return &AuthLogic{
		ctx:  ctx,
		core: core,
	}
}

func (l *AuthLogic) GetAccessTokenDetail(token string) (*types.AccessToken, error) {
	data, err := l.core.Store().AccessTokenStore().GetAccessToken(l.ctx, token)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("AuthLogic.GetAccessTokenDetail.AccessTokenStore.GetAccessToken", i18n.ERROR_INTERNAL, err)
	}

	return data, nil
}

type IssuedCredentials struct {
	AccessToken string `json:"access_token"`
	WsToken     string `json:"ws_token"`
	ExpiresAt   int64  `json:"expires_at"`
}

// IssueCredentials creates a long lived access token for the HTTP API and a
// signed JWT the websocket handshake verifies without a store round trip.
func (l *AuthLogic) IssueCredentials(userID, info string) (*IssuedCredentials, error) {
	if _, err := l.core.Store().UserStore().GetUser(l.ctx, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("AuthLogic.IssueCredentials.GetUser", i18n.ERROR_NOT_FOUND, err).Code(http.StatusNotFound)
		}
		return nil, errors.New("AuthLogic.IssueCredentials.GetUser", i18n.ERROR_INTERNAL, err)
	}

	expiresAt := time.Now().Add(l.core.Cfg().Security.TokenTTL()).Unix()

	tokenStore := l.core.Store().AccessTokenStore()
	var accessToken string
	for {
		accessToken = utils.RandomStr(100)
		exist, err := tokenStore.GetAccessToken(l.ctx, accessToken)
		if err != nil && err != sql.ErrNoRows {
			return nil, errors.New("AuthLogic.IssueCredentials.GetAccessToken", i18n.ERROR_INTERNAL, err)
		}
		if exist == nil {
			break
		}
	}

	if err := tokenStore.Create(l.ctx, types.AccessToken{
		UserID:    userID,
		Token:     accessToken,
		Version:   types.DEFAULT_ACCESS_TOKEN_VERSION,
		Info:      info,
		ExpiresAt: expiresAt,
	}); err != nil {
		return nil, errors.New("AuthLogic.IssueCredentials.Create", i18n.ERROR_INTERNAL, err)
	}

	wsToken, err := security.GenJWTToken(security.NewTokenClaims("chatapp", userID, expiresAt), l.core.Cfg().Security.JWTSecret)
	if err != nil {
		return nil, errors.New("AuthLogic.IssueCredentials.GenJWTToken", i18n.ERROR_INTERNAL, err)
	}

	meta := &types.UserTokenMeta{
		UserID:    userID,
		Appid:     "chatapp",
		ExpiresAt: expiresAt,
	}
	if err = auth.CacheTokenMeta(l.ctx, accessToken, meta, l.core.Cache()); err != nil {
		return nil, errors.Trace("AuthLogic.IssueCredentials.CacheTokenMeta", err)
	}

	return &IssuedCredentials{
		AccessToken: accessToken,
		WsToken:     wsToken,
		ExpiresAt:   expiresAt,
	}, nil
}

func (l *AuthLogic) RevokeUserTokens(userID string) error {
	if err := l.core.Store().AccessTokenStore().ClearUserTokens(l.ctx, userID); err != nil {
		return errors.New("AuthLogic.RevokeUserTokens.ClearUserTokens", i18n.ERROR_INTERNAL, err)
	}
	return nil
}
