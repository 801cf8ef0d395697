package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"

	"github.com/piquette/finance-go/chart"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)

func at(min int) time.Time { return t0.Add(time.Duration(min) * time.Minute) }

func TestNormalizeSortsDedupesAndTrims(t *testing.T) {
	in := []models.Bar{
		{Time: at(2), Close: 12},
		{Time: at(0), Close: 10},
		{Time: at(1), Close: 11},
		{Time: at(2), Close: 12.5},
		{Time: at(3), Close: 13},
	}
	out := normalize(in, 3)
	require.Len(t, out, 3)
	assert.Equal(t, at(1), out[0].Time)
	assert.Equal(t, 12.5, out[1].Close)
	assert.Equal(t, at(3), out[2].Time)
}

const barsJSON = `{"bars":[
 {"t":"2026-03-02T15:02:00Z","o":1,"h":2,"l":0.5,"c":12,"v":100},
 {"t":"2026-03-02T15:01:00Z","o":1,"h":2,"l":0.5,"c":11,"v":100},
 {"t":"2026-03-02T15:00:00Z","o":1,"h":2,"l":0.5,"c":10,"v":100}
],"symbol":"AAPL","next_page_token":null}`

func TestAlpacaRecentBars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/stocks/AAPL/bars", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("APCA-API-KEY-ID"))
		assert.Equal(t, "secret", r.Header.Get("APCA-API-SECRET-KEY"))
		q := r.URL.Query()
		assert.Equal(t, "1Min", q.Get("timeframe"))
		assert.Equal(t, "100", q.Get("limit"))
		assert.Equal(t, "desc", q.Get("sort"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(barsJSON))
	}))
	defer srv.Close()

	a := NewAlpaca(AlpacaConfig{DataURL: srv.URL, APIKey: "key", SecretKey: "secret", Timeframe: "1m"})
	bars, err := a.RecentBars(context.Background(), "AAPL", 100)
	require.NoError(t, err)
	require.Len(t, bars, 3)
	assert.Equal(t, 10.0, bars[0].Close)
	assert.Equal(t, 12.0, bars[2].Close)
	assert.True(t, bars[0].Time.Equal(t0))
}

func TestNewPassesDataFeed(t *testing.T) {
	var feeds []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Has("feed") {
			feeds = append(feeds, q.Get("feed"))
		} else {
			feeds = append(feeds, "<none>")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(barsJSON))
	}))
	defer srv.Close()

	cfg := &config.Config{
		DataSource:     config.DataAlpaca,
		AlpacaDataURL:  srv.URL,
		AlpacaDataFeed: config.FeedIEX,
		Timeframe:      "1m",
	}
	_, err := New(cfg).RecentBars(context.Background(), "AAPL", 100)
	require.NoError(t, err)

	cfg.AlpacaDataFeed = ""
	_, err = New(cfg).RecentBars(context.Background(), "AAPL", 100)
	require.NoError(t, err)

	assert.Equal(t, []string{"iex", "<none>"}, feeds)
}

func TestAlpacaEmptyIsNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"bars":[],"symbol":"ZZZ","next_page_token":null}`))
	}))
	defer srv.Close()

	_, err := NewAlpaca(AlpacaConfig{DataURL: srv.URL}).RecentBars(context.Background(), "ZZZ", 100)
	assert.ErrorIs(t, err, models.ErrNoData)
}

func TestAlpacaHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"code":40310000,"message":"subscription does not permit querying recent SIP data"}`))
	}))
	defer srv.Close()

	_, err := NewAlpaca(AlpacaConfig{DataURL: srv.URL}).RecentBars(context.Background(), "AAPL", 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 403")
	assert.Contains(t, err.Error(), "subscription does not permit")
}

func TestYahooRecentBars(t *testing.T) {
	y := NewYahoo("1m")
	y.now = func() time.Time { return at(10) }
	var got *chart.Params
	y.fetch = func(p *chart.Params) ([]models.Bar, error) {
		got = p
		return []models.Bar{{Time: at(1), Close: 2}, {Time: at(0), Close: 1}}, nil
	}

	bars, err := y.RecentBars(context.Background(), "MSFT", 100)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 1.0, bars[0].Close)
	assert.Equal(t, "MSFT", got.Symbol)
	assert.EqualValues(t, "1m", got.Interval)
}

func TestYahooErrors(t *testing.T) {
	y := NewYahoo("5m")
	y.fetch = func(*chart.Params) ([]models.Bar, error) { return nil, nil }
	_, err := y.RecentBars(context.Background(), "MSFT", 100)
	assert.ErrorIs(t, err, models.ErrNoData)

	boom := errors.New("rate limited")
	y.fetch = func(*chart.Params) ([]models.Bar, error) { return nil, boom }
	_, err = y.RecentBars(context.Background(), "MSFT", 100)
	assert.ErrorIs(t, err, boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = y.RecentBars(ctx, "MSFT", 100)
	assert.ErrorIs(t, err, context.Canceled)
}
