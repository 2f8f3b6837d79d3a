package device

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Importance controls how intrusively the OS surfaces a channel's notifications.
type Importance int

const (
	ImportanceDefault Importance = iota
	ImportanceHigh
)

// Priority of a single posted notification.
type Priority int

const (
	PriorityDefault Priority = iota
	PriorityHigh
)

const (
	chatChannelID          = "chat_channel"
	chatChannelName        = "Chat Messages"
	chatChannelDescription = "Channel for chat messages"

	defaultTitle = "New Message"
	defaultBody  = "You have a new message"

	appIcon      = "app_icon"
	defaultSound = "default"

	// A fixed ID means a second notification replaces the first instead of
	// stacking. Deliberate simplification.
	chatNotificationID = 0
)

// Channel is an OS-level grouping construct for a class of notifications.
type Channel struct {
	ID          string
	Name        string
	Description string
	Importance  Importance
	Vibration   bool
}

// Notification is a request to post a local notification to the OS tray.
type Notification struct {
	ID         int
	ChannelID  string
	Title      string
	Body       string
	Icon       string
	Sound      string
	Priority   Priority
	AutoCancel bool
}

// NotificationCenter abstracts the OS notification tray.
type NotificationCenter interface {
	EnsureChannel(channel Channel) error
	Post(notification Notification) error
}

// TokenSink receives refreshed device tokens so they can be propagated to the
// user's document, keeping future recipient lookups working.
type TokenSink interface {
	SaveToken(ctx context.Context, token string) error
}

// NotificationBlock is the display part of an inbound push payload.
type NotificationBlock struct {
	Title string
	Body  string
}

// InboundPayload is a push payload as it arrives on the device. Data-only
// payloads have a nil Notification.
type InboundPayload struct {
	Notification *NotificationBlock
	Data         map[string]string
}

// Renderer converts inbound push payloads into locally visible notifications.
// Posting is event-driven and single-threaded.
type Renderer struct {
	center       NotificationCenter
	tokens       TokenSink
	channelReady bool
}

func NewRenderer(center NotificationCenter, tokens TokenSink) *Renderer {
	return &Renderer{
		center: center,
		tokens: tokens,
	}
}

// HandleMessage renders a payload carrying a notification block. Data-only
// payloads are ignored here; their effects arrive through HandleNewToken.
func (r *Renderer) HandleMessage(payload InboundPayload) error {
	if payload.Notification == nil {
		log.Debug().Msg("data-only payload, nothing to render")
		return nil
	}

	title := payload.Notification.Title
	if title == "" {
		title = defaultTitle
	}

	body := payload.Notification.Body
	if body == "" {
		body = defaultBody
	}

	if err := r.ensureChannel(); err != nil {
		return err
	}

	err := r.center.Post(Notification{
		ID:         chatNotificationID,
		ChannelID:  chatChannelID,
		Title:      title,
		Body:       body,
		Icon:       appIcon,
		Sound:      defaultSound,
		Priority:   PriorityHigh,
		AutoCancel: true,
	})
	if err != nil {
		return fmt.Errorf("failed to post notification: %w", err)
	}

	return nil
}

// HandleNewToken captures a refreshed device token and forwards it to the sink.
func (r *Renderer) HandleNewToken(ctx context.Context, token string) error {
	if token == "" {
		log.Warn().Msg("received empty device token, ignoring")
		return nil
	}

	if err := r.tokens.SaveToken(ctx, token); err != nil {
		return fmt.Errorf("failed to save device token: %w", err)
	}

	log.Info().Msg("device token refreshed")
	return nil
}

func (r *Renderer) ensureChannel() error {
	if r.channelReady {
		return nil
	}

	err := r.center.EnsureChannel(Channel{
		ID:          chatChannelID,
		Name:        chatChannelName,
		Description: chatChannelDescription,
		Importance:  ImportanceHigh,
		Vibration:   true,
	})
	if err != nil {
		return fmt.Errorf("failed to create notification channel: %w", err)
	}

	r.channelReady = true
	return nil
}
