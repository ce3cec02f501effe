package middleware

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/core"
	v1 "github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/logic/v1"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/response"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/auth"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/errors"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/i18n"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/security"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/types"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/types/protocol"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/utils"
)

func I18n() gin.HandlerFunc {
	var allowList []string
	for k := range i18n.ALLOW_LANG {
		allowList = append(allowList, k)
	}
	l := i18n.NewLocalizer(allowList...)

	return response.ProvideResponseLocalizer(l)
}

func AcceptLanguage() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		lang := ctx.Request.Header.Get("Accept-Language")
		if lang == "" {
			ctx.Set(v1.LANGUAGE_KEY, types.LANGUAGE_EN_KEY)
			return
		}

		res := utils.ParseAcceptLanguage(lang)
		if len(res) == 0 {
			ctx.Set(v1.LANGUAGE_KEY, types.LANGUAGE_EN_KEY)
			return
		}

		ctx.Set(v1.LANGUAGE_KEY, lo.If(strings.Contains(res[0].Tag, "zh"), types.LANGUAGE_CN_KEY).Else(types.LANGUAGE_EN_KEY))
	}
}

const (
	ACCESS_TOKEN_HEADER_KEY = "X-Access-Token"
)

// Authorization resolves the caller from the X-Access-Token header. The redis
// token cache is consulted first; a miss falls back to the store and refills
// the cache.
func Authorization(core *core.Core) gin.HandlerFunc {
	tracePrefix := "middleware.Authorization"
	return func(ctx *gin.Context) {
		tokenValue := ctx.GetHeader(ACCESS_TOKEN_HEADER_KEY)
		if tokenValue == "" {
			response.APIError(ctx, errors.New(tracePrefix, i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized))
			return
		}

		passed, err := ParseAccessToken(ctx, tokenValue, core)
		if err != nil {
			response.APIError(ctx, errors.Trace(tracePrefix, err))
			return
		}
		if !passed {
			response.APIError(ctx, errors.New(tracePrefix, i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized))
		}
	}
}

// AuthorizationFromQuery authenticates the websocket handshake. Browsers
// cannot set headers on upgrade requests, so the signed connection token rides
// in the query string.
func AuthorizationFromQuery(core *core.Core) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenValue := c.Query("token")

		claims, err := security.VerifyJWTToken(tokenValue, core.Cfg().Security.JWTSecret)
		if err != nil {
			response.APIError(c, errors.New("middleware.AuthorizationFromQuery", i18n.ERROR_INVALID_TOKEN, err).Code(http.StatusUnauthorized))
			return
		}
		if err = claims.Valid(); err != nil {
			response.APIError(c, errors.New("middleware.AuthorizationFromQuery.Valid", i18n.ERROR_INVALID_TOKEN, err).Code(http.StatusUnauthorized))
			return
		}

		c.Set(v1.TOKEN_CONTEXT_KEY, *claims)
		c.Set("user", claims.User)
	}
}

func ParseAccessToken(c *gin.Context, tokenValue string, core *core.Core) (bool, error) {
	if tokenValue == "" {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	if meta, err := auth.ValidateTokenFromCache(ctx, tokenValue, core.Cache()); err == nil {
		if meta.ExpiresAt > time.Now().Unix() {
			setClaims(c, meta.UserID, meta.ExpiresAt)
			core.Cache().Expire(ctx, protocol.GenUserTokenCacheKey(utils.MD5(tokenValue)), types.TokenCacheTTL)
			return true, nil
		}
	}

	token, err := core.Store().AccessTokenStore().GetAccessToken(ctx, tokenValue)
	if err != nil && err != sql.ErrNoRows {
		return false, errors.New("ParseAccessToken.AccessTokenStore.GetAccessToken", i18n.ERROR_INTERNAL, err)
	}

	if token == nil || token.ExpiresAt < time.Now().Unix() {
		return false, errors.New("ParseAccessToken.token.check", i18n.ERROR_UNAUTHORIZED, fmt.Errorf("nil token")).Code(http.StatusUnauthorized)
	}

	if err = auth.CacheTokenMeta(ctx, tokenValue, &types.UserTokenMeta{
		UserID:    token.UserID,
		Appid:     "chatapp",
		ExpiresAt: token.ExpiresAt,
	}, core.Cache()); err != nil {
		return false, errors.Trace("ParseAccessToken.CacheTokenMeta", err)
	}

	setClaims(c, token.UserID, token.ExpiresAt)
	return true, nil
}

func setClaims(c *gin.Context, userID string, expiresAt int64) {
	c.Set(v1.TOKEN_CONTEXT_KEY, security.NewTokenClaims("chatapp", userID, expiresAt))
	c.Set("user", userID)
}

func Cors(c *gin.Context) {
	method := c.Request.Method
	origin := c.Request.Header.Get("Origin")
	if origin != "" {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, UPDATE")
		c.Header("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization, X-Access-Token")
		c.Header("Access-Control-Expose-Headers", "Content-Length, Access-Control-Allow-Origin, Access-Control-Allow-Headers, Cache-Control, Content-Language, Content-Type")
		c.Header("Access-Control-Allow-Credentials", "true")
	}
	if method == "OPTIONS" {
		c.AbortWithStatus(http.StatusNoContent)
	}
	c.Next()
}

type LimiterFunc func(key string, opts ...core.LimitOption) gin.HandlerFunc

func UseLimit(appCore *core.Core, genKeyFunc func(c *gin.Context) string, opts ...core.LimitOption) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !appCore.UseLimiter(genKeyFunc(c), opts...).Allow() {
			response.APIError(c, errors.New("middleware.limiter", i18n.ERROR_TOO_MANY_REQUESTS, nil).Code(http.StatusTooManyRequests))
		}
	}
}
