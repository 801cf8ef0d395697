package notify

import (
	"context"
	"time"

	"signal_bot/internal/models"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

const twilioBaseURL = "https://api.twilio.com/2010-04-01"

type TwilioConfig struct {
	BaseURL    string // пусто: боевой api.twilio.com
	AccountSID string
	AuthToken  string
	From       string
	To         string
	Timeout    time.Duration
}

// SMS через Twilio Messages API.
type SMS struct {
	client *resty.Client
	cfg    TwilioConfig
}

type twilioError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

type twilioMessage struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

func NewSMS(cfg TwilioConfig) *SMS {
	if cfg.BaseURL == "" {
		cfg.BaseURL = twilioBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	c := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetBasicAuth(cfg.AccountSID, cfg.AuthToken).
		SetJSONUnmarshaler(sonic.Unmarshal)
	return &SMS{client: c, cfg: cfg}
}

func (s *SMS) SendText(ctx context.Context, msg string) error {
	var (
		res    twilioMessage
		apiErr twilioError
	)
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("sid", s.cfg.AccountSID).
		SetFormData(map[string]string{
			"To":   s.cfg.To,
			"From": s.cfg.From,
			"Body": msg,
		}).
		SetResult(&res).
		SetError(&apiErr).
		Post("/Accounts/{sid}/Messages.json")
	if err != nil {
		return errors.Wrap(err, "twilio send")
	}
	if resp.IsError() {
		return errors.Errorf("twilio send: http %d: code=%d %s", resp.StatusCode(), apiErr.Code, apiErr.Message)
	}
	return nil
}

func (s *SMS) SendAlert(ctx context.Context, symbol string, action models.Action, price float64) error {
	return s.SendText(ctx, AlertText(symbol, action, price))
}
