package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/guregu/null/v5"

	"HoldingsWatch/internal/model"
)

// DefaultIEXURL is the IEX Cloud stable API root.
const DefaultIEXURL = "https://cloud.iexapis.com/stable"

// IEXFetcher implements QuoteFetcher against an IEX-style quote endpoint.
// It has no cache and no throttle.
type IEXFetcher struct {
	BaseURL string
	Token   string
	Client  *http.Client
	Now     func() time.Time
}

// NewIEXFetcher creates a quote fetcher with optional proxy support.
func NewIEXFetcher(baseURL, token, proxyURL string) *IEXFetcher {
	if baseURL == "" {
		baseURL = DefaultIEXURL
	}
	return &IEXFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Client:  newHTTPClient(proxyURL),
		Now:     time.Now,
	}
}

func (f *IEXFetcher) Name() string { return "iex" }

// iexQuote is the subset of the quote payload we read.
type iexQuote struct {
	Symbol        string     `json:"symbol"`
	LatestPrice   null.Float `json:"latestPrice"`
	Change        null.Float `json:"change"`
	ChangePercent null.Float `json:"changePercent"`
	PreviousClose null.Float `json:"previousClose"`
}

// FetchQuote returns the latest quote. Missing change fields are derived
// from the previous close.
func (f *IEXFetcher) FetchQuote(ctx context.Context, symbol string) (*model.Quote, error) {
	symbol = NormalizeSymbol(symbol)
	endpoint := fmt.Sprintf("%s/stock/%s/quote?token=%s", f.BaseURL, url.PathEscape(symbol), url.QueryEscape(f.Token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch quote: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Printf("[WARN] quote %s: status %d", symbol, resp.StatusCode)
		return nil, &APIError{StatusCode: resp.StatusCode, Endpoint: "quote " + symbol, Message: string(body)}
	}

	var q iexQuote
	if err := json.NewDecoder(resp.Body).Decode(&q); err != nil {
		return nil, fmt.Errorf("%s: decode quote: %w: %v", symbol, ErrMalformed, err)
	}
	if !q.LatestPrice.Valid {
		return nil, fmt.Errorf("%s: %w: no latestPrice", symbol, ErrMalformed)
	}

	quote := &model.Quote{
		Symbol:         symbol,
		CurrentPrice:   q.LatestPrice.Float64,
		PreviousClose:  q.PreviousClose.Float64,
		ChangeAmount:   q.Change,
		ChangeFraction: q.ChangePercent,
		FetchedAt:      f.now(),
	}
	deriveChange(quote, q.PreviousClose.Valid)
	return quote, nil
}

// deriveChange fills change fields the provider left out. A zero previous
// close leaves the fraction null.
func deriveChange(q *model.Quote, hasPrevious bool) {
	if !hasPrevious {
		return
	}
	diff := q.CurrentPrice - q.PreviousClose
	if !q.ChangeAmount.Valid {
		q.ChangeAmount = null.FloatFrom(diff)
	}
	if !q.ChangeFraction.Valid && q.PreviousClose != 0 {
		q.ChangeFraction = null.FloatFrom(diff / q.PreviousClose)
	}
}

func (f *IEXFetcher) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}
