package prices

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const regionalFixture = `<html><body><table id="regional-prices">
<tr data-country="United States" data-currency="USD">
  <td class="gram">74.12</td>
  <td class="ounce">2,305.40</td>
  <td class="tola">864.55</td>
</tr>
<tr data-country="India" data-currency="INR">
  <td class="gram">6,210.00</td>
  <td class="ounce">193,155.75</td>
  <td class="tola">72,430.10</td>
</tr>
<tr class="footer-row"><td colspan="3">Prices are indicative.</td></tr>
</table></body></html>`

const buyingFixture = `<html><body>
<div id="gold-buy-price">2,305.40</div>
<span id="gold-change-pct">-0.42%</span>
<span id="gold-last-updated"> Aug 29, 2026 14:02 UTC </span>
</body></html>`

type stubFetcher struct {
	pages map[string][]byte
	err   error
	calls int
}

func (f *stubFetcher) Fetch(_ context.Context, path string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.pages[path], nil
}

func TestParseRegional(t *testing.T) {
	rows := parseRegional([]byte(regionalFixture))
	require.Len(t, rows, 2)

	assert.Equal(t, "United States", rows[0].Country)
	assert.Equal(t, "USD", rows[0].Currency)
	assert.Equal(t, 74.12, rows[0].PricePerGram)
	assert.Equal(t, 2305.40, rows[0].PricePerOunce)
	assert.Equal(t, 864.55, rows[0].PricePerTola)

	assert.Equal(t, "India", rows[1].Country)
	assert.Equal(t, "INR", rows[1].Currency)
	assert.Equal(t, 6210.00, rows[1].PricePerGram)
}

func TestParseRegional_BrokenMarkupYieldsNoRows(t *testing.T) {
	rows := parseRegional([]byte(`<html><table><tr><td>74.12</td></tr></table></html>`))
	assert.Empty(t, rows)
}

func TestParseBuying(t *testing.T) {
	p := parseBuying([]byte(buyingFixture))
	assert.Equal(t, 2305.40, p.BuyingPrice)
	assert.Equal(t, -0.42, p.ChangePercentage)
	assert.Equal(t, "Aug 29, 2026 14:02 UTC", p.LastUpdated)
}

func TestParseBuying_MissingBlock(t *testing.T) {
	p := parseBuying([]byte(`<html><body>maintenance</body></html>`))
	assert.Zero(t, p.BuyingPrice)
	assert.Zero(t, p.ChangePercentage)
	assert.Empty(t, p.LastUpdated)
}

func newTestRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestListRegionalPrices_CachesScrape(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string][]byte{"/prices": []byte(regionalFixture)}}
	svc := &Service{Fetcher: fetcher, Rdb: newTestRedis(t), CacheTTL: time.Minute}

	first, err := svc.ListRegionalPrices(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, 1, fetcher.calls)

	// Second call is served from cache, no fetch
	second, err := svc.ListRegionalPrices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetcher.calls)
}

func TestListRegionalPrices_EmptyParseIsAnError(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string][]byte{"/prices": []byte("<html></html>")}}
	svc := &Service{Fetcher: fetcher}

	_, err := svc.ListRegionalPrices(context.Background())
	require.EqualError(t, err, "no prices found on source page")
}

func TestListRegionalPrices_FetchFailurePropagates(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("connection refused")}
	svc := &Service{Fetcher: fetcher}

	_, err := svc.ListRegionalPrices(context.Background())
	require.Error(t, err)
}

func TestGetBuyingPrice_CachesScrape(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string][]byte{"/": []byte(buyingFixture)}}
	svc := &Service{Fetcher: fetcher, Rdb: newTestRedis(t)}

	first, err := svc.GetBuyingPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2305.40, first.BuyingPrice)
	assert.Equal(t, 1, fetcher.calls)

	second, err := svc.GetBuyingPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetcher.calls)
}

func TestGetBuyingPrice_ZeroPriceIsAnError(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string][]byte{"/": []byte("<html></html>")}}
	svc := &Service{Fetcher: fetcher}

	_, err := svc.GetBuyingPrice(context.Background())
	require.EqualError(t, err, "buying price not found on source page")
}

func TestGetBuyingPrice_DefaultsLastUpdated(t *testing.T) {
	page := `<div id="gold-buy-price">2300.00</div>`
	fetcher := &stubFetcher{pages: map[string][]byte{"/": []byte(page)}}
	svc := &Service{Fetcher: fetcher}

	p, err := svc.GetBuyingPrice(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, p.LastUpdated)
	_, parseErr := time.Parse(time.RFC3339, p.LastUpdated)
	assert.NoError(t, parseErr)
}
