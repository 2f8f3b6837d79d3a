package db

import (
	"time"
)

// NotificationStatus is the lifecycle state of a notification record.
// A record is created as pending and moves to sent or error exactly once.
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusError   NotificationStatus = "error"
)

// ChatMessage is a message document inside a chat's messages sub-collection.
// Created by the sending client and immutable afterwards.
type ChatMessage struct {
	SenderID   string    `firestore:"senderId"`
	Text       string    `firestore:"text"`
	SenderName string    `firestore:"senderName"`
	Timestamp  time.Time `firestore:"timestamp"`
	Type       string    `firestore:"type"`
}

// Chat holds the two participants of a one-to-one conversation.
type Chat struct {
	Participants []string `firestore:"participants"`
}

// User carries the device token used to address push deliveries.
// FCMToken is empty when the device never registered or the token expired.
type User struct {
	FCMToken string `firestore:"fcmToken"`
}

type NotificationPayload struct {
	Title string `firestore:"title"`
	Body  string `firestore:"body"`
}

// NotificationRecord is the document that arms the dispatcher.
type NotificationRecord struct {
	To           string              `firestore:"to"`
	Notification NotificationPayload `firestore:"notification"`
	Data         map[string]string   `firestore:"data"`
	Status       NotificationStatus  `firestore:"status"`
	SentAt       time.Time           `firestore:"sentAt"`
	MessageID    string              `firestore:"messageId"`
	Error        string              `firestore:"error"`
	CreatedAt    time.Time           `firestore:"createdAt"`
}
