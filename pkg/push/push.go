package push

import (
	"context"
)

// TokenResult reports the per-device outcome of one multicast call. Invalid
// marks tokens the provider says will never work again; the caller deactivates
// those instead of retrying.
type TokenResult struct {
	Token   string
	Success bool
	Invalid bool
	Err     error
}

type MulticastResult struct {
	SuccessCount int
	FailureCount int
	Results      []TokenResult
}

// Notification is the rendered payload handed to the provider. Data rides
// along for client-side routing on tap.
type Notification struct {
	Title string
	Body  string
	Data  map[string]string
}

// Pusher delivers one notification to a set of device tokens in a single
// provider round trip.
type Pusher interface {
	SendMulticast(ctx context.Context, tokens []string, notification Notification) (*MulticastResult, error)
}
