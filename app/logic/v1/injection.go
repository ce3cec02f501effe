package v1

import (
	"context"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/security"
)

const (
	TOKEN_CONTEXT_KEY = "__chatapp.access_token"
	LANGUAGE_KEY      = "__chatapp.accept_language"
)

// InjectTokenClaim gets the authenticated identity middleware put on ctx.
func InjectTokenClaim(ctx context.Context) (security.TokenClaims, bool) {
	val, ok := ctx.Value(TOKEN_CONTEXT_KEY).(security.TokenClaims)
	return val, ok
}

func InjectLanguage(ctx context.Context) (string, bool) {
	val, ok := ctx.Value(LANGUAGE_KEY).(string)
	return val, ok
}
