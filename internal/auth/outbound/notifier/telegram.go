package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/auth/entity"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	defaultTelegramBaseURL = "https://api.telegram.org"
	channelTelegram        = "telegram"
)

// TelegramConfig configures the Telegram Bot API notifier.
type TelegramConfig struct {
	BaseURL   string `validate:"omitempty,url"`
	BotToken  string `validate:"required,bot_token"`
	ChatID    string `validate:"required,chat_id"`
	ParseMode string `validate:"omitempty,oneof=Markdown MarkdownV2 HTML"`
	Timeout   time.Duration
}

// Telegram sends the code to one chat through the Bot API sendMessage method.
type Telegram struct {
	endpoint   string
	chatID     string
	parseMode  string
	timeout    time.Duration
	httpClient *http.Client
	ins        instrument.Instrumentation
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

func NewTelegram(cfg TelegramConfig, ins instrument.Instrumentation) *Telegram {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultTelegramBaseURL
	}
	if cfg.ParseMode == "" {
		cfg.ParseMode = "Markdown"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Telegram{
		endpoint:   baseURL + "/bot" + cfg.BotToken + "/sendMessage",
		chatID:     cfg.ChatID,
		parseMode:  cfg.ParseMode,
		timeout:    cfg.Timeout,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		ins:        ins,
	}
}

func (t *Telegram) Notify(ctx context.Context, n entity.Notification) (err error) {
	ctx, span := t.ins.Tracer("auth.outbound.notifier").Start(ctx, "Telegram.Notify")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	text := n.Text()
	if t.parseMode == "Markdown" {
		text = n.Markdown()
	}

	raw, err := json.Marshal(telegramMessage{ChatID: t.chatID, Text: text, ParseMode: t.parseMode})
	if err != nil {
		return &DeliveryError{Channel: channelTelegram, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(raw))
	if err != nil {
		return &DeliveryError{Channel: channelTelegram, Err: redactURL(err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return &DeliveryError{Channel: channelTelegram, Err: redactURL(err)}
	}
	defer resp.Body.Close()
	//nolint:errcheck // drain so the connection can be reused
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &DeliveryError{Channel: channelTelegram, StatusCode: resp.StatusCode}
	}

	return nil
}

// redactURL strips the request URL, which embeds the bot token, from
// transport errors.
func redactURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return &url.Error{Op: uerr.Op, URL: "telegram sendMessage", Err: uerr.Err}
	}
	return err
}
