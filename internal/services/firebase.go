package services

import (
	"context"
	"fmt"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

var (
	// FirebaseApp is the Firebase app instance
	FirebaseApp *firebase.App
	// MessagingClient is the Firebase Cloud Messaging client
	MessagingClient *messaging.Client
)

// InitFirebase initializes Firebase Admin SDK
func InitFirebase() error {
	ctx := context.Background()

	serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
	if serviceAccountPath == "" {
		log.Println("Warning: FIREBASE_SERVICE_ACCOUNT_PATH not set. Push notifications will be disabled.")
		return nil
	}

	opt := option.WithCredentialsFile(serviceAccountPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return fmt.Errorf("error initializing firebase app: %v", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return fmt.Errorf("error getting messaging client: %v", err)
	}

	FirebaseApp = app
	MessagingClient = client

	log.Println("Firebase Cloud Messaging initialized successfully")
	return nil
}

// NotificationPayload represents the notification data
type NotificationPayload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// SendNotificationToToken sends a notification to a specific FCM token
func SendNotificationToToken(ctx context.Context, token string, payload NotificationPayload) error {
	if MessagingClient == nil {
		log.Println("Warning: Firebase not initialized. Skipping notification.")
		return nil
	}
	if token == "" {
		return nil
	}

	message := &messaging.Message{
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data:  payload.Data,
		Token: token,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:        "default",
				ChannelID:    "zapshift_default",
				DefaultSound: true,
			},
		},
	}

	response, err := MessagingClient.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("error sending message: %v", err)
	}

	log.Printf("Successfully sent notification, response: %s", response)
	return nil
}

// NotifyParcelStatus pushes a parcel status change to the owner's device
func NotifyParcelStatus(ctx context.Context, fcmToken, trackingID, status string) {
	payload := NotificationPayload{
		Title: "Parcel update",
		Body:  fmt.Sprintf("Parcel %s is now %s", trackingID, status),
		Data: map[string]string{
			"trackingId": trackingID,
			"status":     status,
		},
	}

	if err := SendNotificationToToken(ctx, fcmToken, payload); err != nil {
		log.Printf("Failed to send parcel status notification: %v", err)
	}
}

// NotifyPaymentRecorded pushes a payment confirmation to the payer's device
func NotifyPaymentRecorded(ctx context.Context, fcmToken, trackingID string, amount int64) {
	payload := NotificationPayload{
		Title: "Payment received",
		Body:  fmt.Sprintf("Payment for parcel %s recorded", trackingID),
		Data: map[string]string{
			"trackingId": trackingID,
			"amount":     fmt.Sprintf("%d", amount),
		},
	}

	if err := SendNotificationToToken(ctx, fcmToken, payload); err != nil {
		log.Printf("Failed to send payment notification: %v", err)
	}
}
