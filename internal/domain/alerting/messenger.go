package alerting

import "context"

// Messenger sends push notifications. Implemented by the Firebase FCM client
// in the infrastructure layer.
type Messenger interface {
	Send(ctx context.Context, token string, title, body string, data map[string]string) error
	SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) error
}

// NopMessenger discards all notifications. Used when no push provider is
// configured so sweeps can still run.
type NopMessenger struct{}

func (NopMessenger) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	return nil
}

func (NopMessenger) SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	return nil
}
