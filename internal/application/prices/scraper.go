package prices

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Fetcher retrieves the raw price-listing page. Abstracted so a structured
// feed can replace the scrape without touching callers.
type Fetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// HTTPFetcher fetches the public price-listing site over plain HTTP.
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client
}

func (f *HTTPFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	if f.Client == nil {
		f.Client = &http.Client{Timeout: 15 * time.Second}
	}
	url := strings.TrimRight(f.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; aurum-api)")
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("price source request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price source: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Row pattern of the source's regional table. A markup change on the source
// site yields zero rows, not an error.
var regionalRowRe = regexp.MustCompile(
	`(?s)<tr[^>]*data-country="([^"]+)"[^>]*data-currency="([A-Z]{3})"[^>]*>.*?` +
		`class="gram"[^>]*>([\d,.]+)<.*?` +
		`class="ounce"[^>]*>([\d,.]+)<.*?` +
		`class="tola"[^>]*>([\d,.]+)<.*?</tr>`)

var (
	buyPriceRe    = regexp.MustCompile(`id="gold-buy-price"[^>]*>\s*([\d,.]+)`)
	changePctRe   = regexp.MustCompile(`id="gold-change-pct"[^>]*>\s*(-?[\d.]+)%`)
	lastUpdatedRe = regexp.MustCompile(`id="gold-last-updated"[^>]*>\s*([^<]+?)\s*<`)
)

func parseNumber(s string) float64 {
	v, _ := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
	return v
}

// parseRegional extracts the per-region price rows from the page markup.
func parseRegional(page []byte) []RegionalPrice {
	matches := regionalRowRe.FindAllStringSubmatch(string(page), -1)
	out := make([]RegionalPrice, 0, len(matches))
	for _, m := range matches {
		out = append(out, RegionalPrice{
			Country:       m[1],
			Currency:      m[2],
			PricePerGram:  parseNumber(m[3]),
			PricePerOunce: parseNumber(m[4]),
			PricePerTola:  parseNumber(m[5]),
		})
	}
	return out
}

// parseBuying extracts the single buying price block.
func parseBuying(page []byte) *BuyingPrice {
	s := string(page)
	out := &BuyingPrice{}
	if m := buyPriceRe.FindStringSubmatch(s); m != nil {
		out.BuyingPrice = parseNumber(m[1])
	}
	if m := changePctRe.FindStringSubmatch(s); m != nil {
		out.ChangePercentage = parseNumber(m[1])
	}
	if m := lastUpdatedRe.FindStringSubmatch(s); m != nil {
		out.LastUpdated = m[1]
	}
	return out
}
