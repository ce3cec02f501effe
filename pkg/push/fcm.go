package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/errors"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/i18n"
)

const defaultRequestTimeout = 10 * time.Second

// fcm error strings that mean the registration token is permanently dead
var invalidTokenErrors = map[string]bool{
	"NotRegistered":          true,
	"InvalidRegistration":    true,
	"MismatchSenderId":       true,
	"MissingRegistration":    true,
	"UNREGISTERED":           true,
	"INVALID_ARGUMENT_TOKEN": true,
}

type FCMConfig struct {
	Endpoint  string `toml:"endpoint"`
	ServerKey string `toml:"server_key"`
	DryRun    bool   `toml:"dry_run"`
}

// FCMPusher talks to the FCM legacy multicast endpoint over plain HTTP.
type FCMPusher struct {
	cfg    FCMConfig
	client *http.Client
}

func NewFCMPusher(cfg FCMConfig) *FCMPusher {
	return &FCMPusher{
		cfg: cfg,
		client: &http.Client{
			Timeout: defaultRequestTimeout,
		},
	}
}

type fcmRequest struct {
	RegistrationIDs []string          `json:"registration_ids"`
	Notification    fcmNotification   `json:"notification"`
	Data            map[string]string `json:"data,omitempty"`
	DryRun          bool              `json:"dry_run,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
	Results []struct {
		MessageID string `json:"message_id"`
		Error     string `json:"error"`
	} `json:"results"`
}

func (p *FCMPusher) SendMulticast(ctx context.Context, tokens []string, notification Notification) (*MulticastResult, error) {
	if len(tokens) == 0 {
		return &MulticastResult{}, nil
	}

	payload, err := json.Marshal(fcmRequest{
		RegistrationIDs: tokens,
		Notification: fcmNotification{
			Title: notification.Title,
			Body:  notification.Body,
		},
		Data:   notification.Data,
		DryRun: p.cfg.DryRun,
	})
	if err != nil {
		return nil, errors.New("FCMPusher.SendMulticast.marshal", i18n.ERROR_INTERNAL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.New("FCMPusher.SendMulticast.new_request", i18n.ERROR_INTERNAL, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+p.cfg.ServerKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.New("FCMPusher.SendMulticast.do", i18n.ERROR_INTERNAL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, errors.New("FCMPusher.SendMulticast.status", i18n.ERROR_INTERNAL,
			fmt.Errorf("push provider returned %d: %s", resp.StatusCode, body))
	}

	var parsed fcmResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errors.New("FCMPusher.SendMulticast.decode", i18n.ERROR_INTERNAL, err)
	}

	result := &MulticastResult{
		SuccessCount: parsed.Success,
		FailureCount: parsed.Failure,
		Results:      make([]TokenResult, 0, len(tokens)),
	}
	for i, token := range tokens {
		tr := TokenResult{Token: token}
		if i < len(parsed.Results) {
			r := parsed.Results[i]
			tr.Success = r.Error == ""
			if r.Error != "" {
				tr.Err = fmt.Errorf("fcm: %s", r.Error)
				tr.Invalid = invalidTokenErrors[r.Error]
			}
		}
		result.Results = append(result.Results, tr)
	}
	return result, nil
}
