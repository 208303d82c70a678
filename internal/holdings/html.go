package holdings

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	DefaultRowSelector  = "table tbody tr"
	DefaultSymbolColumn = 0
	DefaultWeightColumn = 2
)

// HTMLSource scrapes a holdings table from a web page. URLTemplate contains
// one %s that is replaced with the fund symbol.
type HTMLSource struct {
	URLTemplate  string
	RowSelector  string
	SymbolColumn int
	WeightColumn int
	Client       *http.Client
}

// NewHTMLSource creates an HTMLSource with the default table layout.
func NewHTMLSource(urlTemplate string) *HTMLSource {
	return &HTMLSource{
		URLTemplate:  urlTemplate,
		RowSelector:  DefaultRowSelector,
		SymbolColumn: DefaultSymbolColumn,
		WeightColumn: DefaultWeightColumn,
		Client:       &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *HTMLSource) Name() string { return "html" }

// Holdings downloads the page for fund and reads one holding per table row.
// Rows without a ticker are skipped.
func (s *HTMLSource) Holdings(ctx context.Context, fund string) (map[string]string, error) {
	endpoint := fmt.Sprintf(s.URLTemplate, url.PathEscape(strings.ToUpper(fund)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; HoldingsWatch)")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch holdings for %s: %w", fund, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch holdings for %s: status %d: %s", fund, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse holdings page for %s: %w", fund, err)
	}
	return s.parse(doc), nil
}

func (s *HTMLSource) parse(doc *goquery.Document) map[string]string {
	out := make(map[string]string)
	doc.Find(s.RowSelector).Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() <= max(s.SymbolColumn, s.WeightColumn) {
			return
		}
		symbol := strings.ToUpper(strings.TrimSpace(cells.Eq(s.SymbolColumn).Text()))
		if symbol == "" {
			return
		}
		weight := strings.TrimSpace(cells.Eq(s.WeightColumn).Text())
		if _, dup := out[symbol]; dup {
			log.Printf("[WARN] duplicate holding %s in row %d, keeping the first", symbol, i)
			return
		}
		out[symbol] = weight
	})
	return out
}
