package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/instrument"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/mail"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/validator"
)

const testBotToken = "424242:AAF-dashboardAlertsBotSecretValue01"

type fakeMail struct {
	sent []mail.Message
	err  error
}

func (f *fakeMail) Send(_ context.Context, msg mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMail) Close() error { return nil }

func newValidator(t *testing.T) validator.Validator {
	t.Helper()
	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	return v
}

func TestNewFromDriver(t *testing.T) {

	tests := []struct {
		name    string
		driver  string
		opts    FactoryOptions
		wantErr bool
	}{
		{name: "telegram", driver: "telegram", opts: FactoryOptions{Telegram: TelegramConfig{BotToken: testBotToken, ChatID: "-100123"}}},
		{name: "default is telegram", driver: "", opts: FactoryOptions{Telegram: TelegramConfig{BotToken: testBotToken, ChatID: "@ops_channel"}}},
		{name: "telegram missing token", driver: "telegram", opts: FactoryOptions{Telegram: TelegramConfig{ChatID: "1"}}, wantErr: true},
		{name: "telegram malformed token", driver: "telegram", opts: FactoryOptions{Telegram: TelegramConfig{BotToken: "t", ChatID: "1"}}, wantErr: true},
		{name: "telegram bad chat id", driver: "telegram", opts: FactoryOptions{Telegram: TelegramConfig{BotToken: testBotToken, ChatID: "not a chat"}}, wantErr: true},
		{name: "email", driver: "email", opts: FactoryOptions{Mail: &fakeMail{}, Email: EmailConfig{To: []string{"ops@example.com"}}}},
		{name: "email without client", driver: "email", opts: FactoryOptions{Email: EmailConfig{To: []string{"ops@example.com"}}}, wantErr: true},
		{name: "email bad recipient", driver: "email", opts: FactoryOptions{Mail: &fakeMail{}, Email: EmailConfig{To: []string{"nope"}}}, wantErr: true},
		{name: "unknown", driver: "carrier-pigeon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {

			// Arrange
			tt.opts.Validator = newValidator(t)
			tt.opts.Instrument = instrument.NewNoop()

			// Act
			n, err := NewFromDriver(tt.driver, tt.opts)

			// Assert
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewFromDriver() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && n == nil {
				t.Fatalf("NewFromDriver() returned nil notifier")
			}
		})
	}
}

func TestEmail_Notify(t *testing.T) {

	// Arrange
	client := &fakeMail{}
	e := NewEmail(client, EmailConfig{To: []string{"ops@example.com"}}, instrument.NewNoop())

	// Act
	err := e.Notify(context.Background(), testNotification())

	// Assert
	if err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if len(client.sent) != 1 {
		t.Fatalf("sent = %d", len(client.sent))
	}
	msg := client.sent[0]
	if msg.Subject != "Dashboard Access Code" || msg.To[0] != "ops@example.com" {
		t.Fatalf("message = %+v", msg)
	}
	if msg.TextBody != testNotification().Text() {
		t.Fatalf("body = %q", msg.TextBody)
	}
}

func TestEmail_NotifyFailureIsDeliveryError(t *testing.T) {

	// Arrange
	e := NewEmail(&fakeMail{err: errors.New("smtp down")}, EmailConfig{To: []string{"ops@example.com"}}, instrument.NewNoop())

	// Act
	err := e.Notify(context.Background(), testNotification())

	// Assert
	var derr *DeliveryError
	if !errors.As(err, &derr) || derr.Channel != channelEmail {
		t.Fatalf("error = %v, want email DeliveryError", err)
	}
}
