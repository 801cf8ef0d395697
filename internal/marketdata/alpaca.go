package marketdata

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

type AlpacaConfig struct {
	DataURL   string
	APIKey    string
	SecretKey string
	Timeframe string
	Feed      string // iex | sip, пусто: по тарифу аккаунта
	Timeout   time.Duration
}

// Alpaca: Market Data API v2, /v2/stocks/{symbol}/bars.
type Alpaca struct {
	client    *resty.Client
	timeframe string
	feed      string
}

type alpacaBar struct {
	T time.Time `json:"t"`
	O float64   `json:"o"`
	H float64   `json:"h"`
	L float64   `json:"l"`
	C float64   `json:"c"`
	V float64   `json:"v"`
}

type barsResponse struct {
	Bars          []alpacaBar `json:"bars"`
	Symbol        string      `json:"symbol"`
	NextPageToken *string     `json:"next_page_token"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewAlpaca(cfg AlpacaConfig) *Alpaca {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := resty.New().
		SetBaseURL(cfg.DataURL).
		SetTimeout(timeout).
		SetHeader("APCA-API-KEY-ID", cfg.APIKey).
		SetHeader("APCA-API-SECRET-KEY", cfg.SecretKey).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)

	return &Alpaca{
		client:    c,
		timeframe: helper.AlpacaTF(cfg.Timeframe),
		feed:      cfg.Feed,
	}
}

// RecentBars берёт limit последних свечей (sort=desc) и разворачивает их.
func (a *Alpaca) RecentBars(ctx context.Context, symbol string, limit int) ([]models.Bar, error) {
	var (
		body   barsResponse
		apiErr apiError
	)
	params := map[string]string{
		"timeframe": a.timeframe,
		"limit":     strconv.Itoa(limit),
		"sort":      "desc",
		// без start API отдаёт только текущий день
		"start": time.Now().Add(-7 * 24 * time.Hour).UTC().Format(time.RFC3339),
	}
	if a.feed != "" {
		params["feed"] = a.feed
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParams(params).
		SetResult(&body).
		SetError(&apiErr).
		Get("/v2/stocks/{symbol}/bars")
	if err != nil {
		return nil, errors.Wrapf(err, "alpaca bars %s", symbol)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, errors.Errorf("alpaca bars %s: http %d: %s", symbol, resp.StatusCode(), apiErr.Message)
	}
	if len(body.Bars) == 0 {
		return nil, errors.Wrapf(models.ErrNoData, "alpaca bars %s", symbol)
	}

	bars := make([]models.Bar, 0, len(body.Bars))
	for _, b := range body.Bars {
		bars = append(bars, models.Bar{
			Time:   b.T,
			Open:   b.O,
			High:   b.H,
			Low:    b.L,
			Close:  b.C,
			Volume: b.V,
		})
	}
	return normalize(bars, limit), nil
}
