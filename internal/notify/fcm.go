package notify

import (
	"context"
	"log"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"google.golang.org/api/option"
)

// FCMSender delivers push notifications through Firebase Cloud Messaging.
// Push is best-effort: delivery failures are logged and never bubble into the
// workflow that triggered them.
type FCMSender struct {
	Client *messaging.Client
}

// NewFCMSender builds the messaging client from a service-account file. An
// empty path disables push (nil sender is handled by callers).
func NewFCMSender(ctx context.Context, credentialsFile string) (*FCMSender, error) {
	if credentialsFile == "" {
		return nil, nil
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, err
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, err
	}
	return &FCMSender{Client: client}, nil
}

func (s *FCMSender) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority": "10",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: title,
						Body:  body,
					},
					Sound: "default",
				},
			},
		},
	}

	response, err := s.Client.Send(ctx, message)
	if err != nil {
		return err
	}
	log.Printf("push delivered: %s", response)
	return nil
}
