package notify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/netlogin/internal/config"
)

// TelegramChannel sends the report as a bot direct message. One attempt per send.
type TelegramChannel struct {
	cfg    config.TelegramConfig
	client HTTPDoer
	logger *zap.Logger
}

var _ Channel = (*TelegramChannel)(nil)

// NewTelegramChannel creates the channel; it is disabled unless token and chat id are set.
func NewTelegramChannel(cfg config.TelegramConfig, client HTTPDoer, logger *zap.Logger) *TelegramChannel {
	return &TelegramChannel{cfg: cfg, client: client, logger: logger.Named("telegram")}
}

func (c *TelegramChannel) Name() string  { return "telegram" }
func (c *TelegramChannel) Enabled() bool { return c.cfg.Enabled() }

type telegramMessage struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type telegramResponse struct {
	OK          *bool  `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// Send posts text to sendMessage.
func (c *TelegramChannel) Send(ctx context.Context, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(c.cfg.APIBase, "/"), c.cfg.Token)

	status, body, err := postJSON(ctx, c.client, url, c.cfg.Timeout, telegramMessage{ChatID: c.cfg.ChatID, Text: text})
	if err != nil {
		// The URL embeds the bot token; keep it out of errors and logs.
		return fmt.Errorf("telegram: %s", redact(err.Error(), c.cfg.Token))
	}

	var resp telegramResponse
	decodeErr := json.Unmarshal(body, &resp)
	if !is2xx(status) || (decodeErr == nil && resp.OK != nil && !*resp.OK) {
		return &DeliveryError{
			Channel:    c.Name(),
			Format:     "text",
			StatusCode: status,
			Code:       resp.ErrorCode,
			Message:    resp.Description,
			Body:       truncate(body),
		}
	}
	c.logger.Debug("Message accepted.")
	return nil
}

func redact(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "<redacted>")
}
