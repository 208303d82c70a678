package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"HoldingsWatch/internal/diskcache"
	"HoldingsWatch/internal/model"
	"HoldingsWatch/internal/ratelimit"
)

const (
	// DefaultAlphaVantageURL is the public Alpha Vantage endpoint.
	DefaultAlphaVantageURL = "https://www.alphavantage.co"
	// DefaultQuotaCooldown is how far the throttle is pushed after a quota response.
	DefaultQuotaCooldown = 60 * time.Second
	// maxAttempts allows exactly one retry after a quota response.
	maxAttempts = 2
)

// AlphaVantageFetcher implements SeriesFetcher with TIME_SERIES_DAILY,
// backed by a disk cache and a shared throttle.
type AlphaVantageFetcher struct {
	BaseURL     string
	APIKey      string
	Client      *http.Client
	Cache       *diskcache.Cache
	Throttle    *ratelimit.Throttle
	Cooldown    time.Duration
}

// NewAlphaVantageFetcher creates a fetcher with optional proxy support.
func NewAlphaVantageFetcher(baseURL, apiKey, proxyURL string, cache *diskcache.Cache, throttle *ratelimit.Throttle) *AlphaVantageFetcher {
	if baseURL == "" {
		baseURL = DefaultAlphaVantageURL
	}
	return &AlphaVantageFetcher{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		APIKey:      apiKey,
		Client:      newHTTPClient(proxyURL),
		Cache:       cache,
		Throttle:    throttle,
		Cooldown:    DefaultQuotaCooldown,
	}
}

func (f *AlphaVantageFetcher) Name() string { return "alphavantage" }

// avDailyResponse is the TIME_SERIES_DAILY payload.
type avDailyResponse struct {
	MetaData     map[string]string            `json:"Meta Data"`
	TimeSeries   map[string]map[string]string `json:"Time Series (Daily)"`
	Note         string                       `json:"Note"`
	Information  string                       `json:"Information"`
	ErrorMessage string                       `json:"Error Message"`
}

func (r *avDailyResponse) quotaMessage() string {
	if r.Note != "" {
		return r.Note
	}
	return r.Information
}

// FetchDailySeries returns the cached series when it is fresh, otherwise
// fetches it, stores the raw response and returns it. A fresh record that
// cannot be parsed is treated as stale.
func (f *AlphaVantageFetcher) FetchDailySeries(ctx context.Context, symbol string) (model.DailySeries, error) {
	symbol = NormalizeSymbol(symbol)

	if f.Cache != nil {
		if rec, ok := f.Cache.Read(symbol); ok && f.Cache.IsFresh(rec) {
			series, err := parseAVSeries(rec.TimeSeries)
			if err == nil {
				log.Printf("[INFO] cache hit for %s (last refreshed %s)", symbol, rec.LastRefreshed())
				return series, nil
			}
			log.Printf("[WARN] unreadable cache for %s, refetching: %v", symbol, err)
		}
	}

	for attempt := 1; ; attempt++ {
		body, err := f.request(ctx, symbol)
		if err != nil {
			return nil, err
		}

		var resp avDailyResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("%s: decode daily series: %w: %v", symbol, ErrMalformed, err)
		}

		if msg := resp.quotaMessage(); msg != "" {
			log.Printf("[WARN] quota exceeded for %s (attempt %d/%d): %s", symbol, attempt, maxAttempts, msg)
			if f.Throttle != nil {
				f.Throttle.Cooldown(f.Cooldown)
			}
			if attempt >= maxAttempts {
				return nil, fmt.Errorf("%s: %w", symbol, ErrQuotaExceeded)
			}
			continue
		}

		if resp.TimeSeries == nil {
			if resp.ErrorMessage != "" {
				return nil, fmt.Errorf("%s: %w: %s", symbol, ErrMalformed, resp.ErrorMessage)
			}
			return nil, fmt.Errorf("%s: %w: no time series", symbol, ErrMalformed)
		}

		series, err := parseAVSeries(resp.TimeSeries)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", symbol, err)
		}

		if f.Cache != nil {
			if err := f.Cache.WriteRaw(symbol, body); err != nil {
				log.Printf("[WARN] cache write for %s: %v", symbol, err)
			}
		}
		return series, nil
	}
}

// request issues one throttled TIME_SERIES_DAILY call and returns the body.
func (f *AlphaVantageFetcher) request(ctx context.Context, symbol string) ([]byte, error) {
	q := url.Values{}
	q.Set("function", "TIME_SERIES_DAILY")
	q.Set("symbol", symbol)
	q.Set("apikey", f.APIKey)
	endpoint := fmt.Sprintf("%s/query?%s", f.BaseURL, q.Encode())

	if f.Throttle != nil {
		if err := f.Throttle.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s: throttle: %w", symbol, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] API call for %s", symbol)
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch daily series: %w", symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", symbol, err)
	}
	if resp.StatusCode == http.StatusServiceUnavailable {
		return nil, fmt.Errorf("%s: %w", symbol, ErrUnavailable)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Endpoint: "TIME_SERIES_DAILY " + symbol, Message: string(body)}
	}
	return body, nil
}

// parseAVSeries converts provider rows ("1. open" etc.) into bars.
func parseAVSeries(raw map[string]map[string]string) (model.DailySeries, error) {
	series := make(model.DailySeries, len(raw))
	for date, fields := range raw {
		bar := &model.DailyBar{Date: date}
		targets := map[string]*float64{
			"open":   &bar.Open,
			"high":   &bar.High,
			"low":    &bar.Low,
			"close":  &bar.Close,
			"volume": &bar.Volume,
		}
		var sawClose bool
		for key, value := range fields {
			name := key
			if i := strings.Index(key, ". "); i >= 0 {
				name = key[i+2:]
			}
			dst, ok := targets[name]
			if !ok {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: parse %s %q on %s", ErrMalformed, name, value, date)
			}
			*dst = v
			if name == "close" {
				sawClose = true
			}
		}
		if !sawClose {
			return nil, fmt.Errorf("%w: no close on %s", ErrMalformed, date)
		}
		series[date] = bar
	}
	return series, nil
}
