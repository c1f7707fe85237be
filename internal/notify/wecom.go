package notify

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/netlogin/internal/config"
	"github.com/xkilldash9x/netlogin/internal/timeutil"
)

// WeComChannel posts to a group-robot webhook: markdown first, then plain text
// on the same endpoint if markdown is rejected. Sends through one channel are
// paced by a limiter plus random jitter.
type WeComChannel struct {
	cfg     config.WeComConfig
	client  HTTPDoer
	limiter *rate.Limiter
	jitter  func() time.Duration
	logger  *zap.Logger
}

var _ Channel = (*WeComChannel)(nil)

// NewWeComChannel creates the channel; it is disabled unless a webhook is set.
func NewWeComChannel(cfg config.WeComConfig, client HTTPDoer, logger *zap.Logger) *WeComChannel {
	limit := rate.Inf
	if cfg.FallbackMinInterval > 0 {
		limit = rate.Every(cfg.FallbackMinInterval)
	}
	maxJitter := cfg.FallbackJitter
	return &WeComChannel{
		cfg:     cfg,
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		jitter: func() time.Duration {
			if maxJitter <= 0 {
				return 0
			}
			return rand.N(maxJitter)
		},
		logger: logger.Named("wecom"),
	}
}

func (c *WeComChannel) Name() string  { return "wecom" }
func (c *WeComChannel) Enabled() bool { return c.cfg.Enabled() }

type wecomContent struct {
	Content       string    `json:"content"`
	MentionedList *[]string `json:"mentioned_list,omitempty"`
}

type wecomMessage struct {
	MsgType  string        `json:"msgtype"`
	Markdown *wecomContent `json:"markdown,omitempty"`
	Text     *wecomContent `json:"text,omitempty"`
}

type wecomResponse struct {
	ErrCode *int   `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// Send delivers text, falling back to the plain format once.
func (c *WeComChannel) Send(ctx context.Context, text string) error {
	err := c.post(ctx, wecomMessage{MsgType: "markdown", Markdown: &wecomContent{Content: text}})
	if err == nil {
		c.logger.Debug("Markdown message accepted.")
		return nil
	}
	c.logger.Warn("Markdown delivery failed, retrying as text.", deliveryFields(err)...)

	if err := c.pace(ctx); err != nil {
		return fmt.Errorf("wecom: fallback aborted: %w", err)
	}

	mentions := []string{}
	fallbackErr := c.post(ctx, wecomMessage{MsgType: "text", Text: &wecomContent{Content: text, MentionedList: &mentions}})
	if fallbackErr == nil {
		c.logger.Debug("Text message accepted.")
		return nil
	}
	return fmt.Errorf("wecom: markdown and text delivery failed: %w", errors.Join(err, fallbackErr))
}

// pace waits for the limiter and then a random jitter.
func (c *WeComChannel) pace(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	return timeutil.Sleep(ctx, c.jitter())
}

func (c *WeComChannel) post(ctx context.Context, msg wecomMessage) error {
	// The first send consumes the burst token, so the fallback waits a full interval.
	c.limiter.Allow()

	status, body, err := postJSON(ctx, c.client, c.cfg.Webhook, c.cfg.Timeout, msg)
	if err != nil {
		return err
	}

	var resp wecomResponse
	decodeErr := json.Unmarshal(body, &resp)
	if is2xx(status) && decodeErr == nil && resp.ErrCode != nil && *resp.ErrCode == 0 {
		return nil
	}

	derr := &DeliveryError{
		Channel:    c.Name(),
		Format:     msg.MsgType,
		StatusCode: status,
		Message:    resp.ErrMsg,
		Body:       truncate(body),
	}
	if resp.ErrCode != nil {
		derr.Code = *resp.ErrCode
	}
	return derr
}

func deliveryFields(err error) []zap.Field {
	fields := []zap.Field{zap.Error(err)}
	var derr *DeliveryError
	if errors.As(err, &derr) {
		fields = append(fields,
			zap.Int("status", derr.StatusCode),
			zap.Int("errcode", derr.Code),
			zap.String("errmsg", derr.Message))
	}
	return fields
}
