package fcm

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog/log"
)

// PushMessage is the request sent to the push-delivery service.
type PushMessage struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// Sender delivers a push message to a single device token and returns the
// delivery ID assigned by the push service.
type Sender interface {
	Send(ctx context.Context, push PushMessage) (string, error)
}

// FCMSender implements Sender on top of Firebase Cloud Messaging.
type FCMSender struct {
	client *messaging.Client
}

// NewSender creates a new Sender from an already initialized Firebase app.
func NewSender(ctx context.Context, firebaseApp *firebase.App) (*FCMSender, error) {
	client, err := firebaseApp.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging client: %w", err)
	}

	return &FCMSender{
		client: client,
	}, nil
}

// Send delivers the message with high priority on Android and
// content-available + badge + default sound on Apple platforms.
func (sender *FCMSender) Send(ctx context.Context, push PushMessage) (string, error) {
	badge := 1

	message := &messaging.Message{
		Token: push.Token,
		Notification: &messaging.Notification{
			Title: push.Title,
			Body:  push.Body,
		},
		Data: push.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					ContentAvailable: true,
					Badge:            &badge,
					Sound:            "default",
				},
			},
		},
	}

	messageID, err := sender.client.Send(ctx, message)
	if err != nil {
		return "", err
	}

	log.Info().Str("message_id", messageID).Msg("push message delivered")

	return messageID, nil
}
