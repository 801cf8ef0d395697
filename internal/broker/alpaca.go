package broker

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type AlpacaConfig struct {
	BaseURL   string // paper или live
	DataURL   string
	APIKey    string
	SecretKey string
	Timeout   time.Duration
}

// Alpaca: Trading API v2 + последняя сделка из Market Data API.
type Alpaca struct {
	trading *resty.Client
	data    *resty.Client
}

func newRestClient(baseURL string, cfg AlpacaConfig) *resty.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("APCA-API-KEY-ID", cfg.APIKey).
		SetHeader("APCA-API-SECRET-KEY", cfg.SecretKey).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)
}

func NewAlpaca(cfg AlpacaConfig) *Alpaca {
	return &Alpaca{
		trading: newRestClient(cfg.BaseURL, cfg),
		data:    newRestClient(cfg.DataURL, cfg),
	}
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func checkResp(resp *resty.Response, err error, apiErr *apiError, what string) error {
	if err != nil {
		return errors.Wrap(err, what)
	}
	if resp.IsError() {
		return errors.Errorf("%s: http %d: %s", what, resp.StatusCode(), apiErr.Message)
	}
	return nil
}

type accountResponse struct {
	BuyingPower string `json:"buying_power"`
	Status      string `json:"status"`
}

func (a *Alpaca) BuyingPower(ctx context.Context) (float64, error) {
	var (
		acc    accountResponse
		apiErr apiError
	)
	resp, err := a.trading.R().SetContext(ctx).SetResult(&acc).SetError(&apiErr).Get("/v2/account")
	if err := checkResp(resp, err, &apiErr, "alpaca account"); err != nil {
		return 0, err
	}
	bp, err := strconv.ParseFloat(acc.BuyingPower, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse buying_power %q", acc.BuyingPower)
	}
	return bp, nil
}

type latestTradeResponse struct {
	Symbol string `json:"symbol"`
	Trade  struct {
		T time.Time `json:"t"`
		P float64   `json:"p"`
		S float64   `json:"s"`
	} `json:"trade"`
}

func (a *Alpaca) LastPrice(ctx context.Context, symbol string) (float64, error) {
	var (
		lt     latestTradeResponse
		apiErr apiError
	)
	resp, err := a.data.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetResult(&lt).
		SetError(&apiErr).
		Get("/v2/stocks/{symbol}/trades/latest")
	if err := checkResp(resp, err, &apiErr, "alpaca latest trade "+symbol); err != nil {
		return 0, err
	}
	return lt.Trade.P, nil
}

type positionResponse struct {
	Symbol        string `json:"symbol"`
	Qty           string `json:"qty"`
	Side          string `json:"side"`
	AvgEntryPrice string `json:"avg_entry_price"`
}

func (a *Alpaca) ListOpenPositions(ctx context.Context) ([]models.Position, error) {
	var (
		raw    []positionResponse
		apiErr apiError
	)
	resp, err := a.trading.R().SetContext(ctx).SetResult(&raw).SetError(&apiErr).Get("/v2/positions")
	if err := checkResp(resp, err, &apiErr, "alpaca positions"); err != nil {
		return nil, err
	}

	out := make([]models.Position, 0, len(raw))
	for _, p := range raw {
		qty, err := strconv.ParseFloat(p.Qty, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "parse qty for %s", p.Symbol)
		}
		if p.Side == "short" && qty > 0 {
			qty = -qty
		}
		avg, err := strconv.ParseFloat(p.AvgEntryPrice, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "parse avg_entry_price for %s", p.Symbol)
		}
		out = append(out, models.Position{Symbol: p.Symbol, Qty: qty, AvgEntryPrice: avg})
	}
	return out, nil
}

type legPrice struct {
	LimitPrice string `json:"limit_price,omitempty"`
	StopPrice  string `json:"stop_price,omitempty"`
}

type orderRequest struct {
	Symbol        string   `json:"symbol"`
	Qty           string   `json:"qty"`
	Side          string   `json:"side"`
	Type          string   `json:"type"`
	TimeInForce   string   `json:"time_in_force"`
	OrderClass    string   `json:"order_class"`
	ExtendedHours bool     `json:"extended_hours"`
	ClientOrderID string   `json:"client_order_id"`
	TakeProfit    legPrice `json:"take_profit"`
	StopLoss      legPrice `json:"stop_loss"`
}

type orderResponse struct {
	ID            string `json:"id"`
	ClientOrderID string `json:"client_order_id"`
	Status        string `json:"status"`
}

// newOrderRequest: market/gtc bracket, ноги округлены до центов.
func newOrderRequest(o models.BracketOrder) orderRequest {
	id := o.ClientOrderID
	if id == "" {
		id = uuid.NewString()
	}
	return orderRequest{
		Symbol:        o.Symbol,
		Qty:           strconv.FormatInt(o.Qty, 10),
		Side:          string(o.Side),
		Type:          "market",
		TimeInForce:   "gtc",
		OrderClass:    "bracket",
		ClientOrderID: id,
		TakeProfit:    legPrice{LimitPrice: helper.RoundPrice(o.TakeProfit)},
		StopLoss:      legPrice{StopPrice: helper.RoundPrice(o.StopLoss)},
	}
}

func (a *Alpaca) SubmitBracketOrder(ctx context.Context, o models.BracketOrder) (string, error) {
	var (
		res    orderResponse
		apiErr apiError
	)
	resp, err := a.trading.R().
		SetContext(ctx).
		SetBody(newOrderRequest(o)).
		SetResult(&res).
		SetError(&apiErr).
		Post("/v2/orders")
	if err := checkResp(resp, err, &apiErr, "alpaca submit "+o.Symbol); err != nil {
		return "", err
	}
	if resp.StatusCode() != http.StatusOK || res.ID == "" {
		return "", errors.Errorf("alpaca submit %s: unexpected response %d", o.Symbol, resp.StatusCode())
	}
	return res.ID, nil
}
