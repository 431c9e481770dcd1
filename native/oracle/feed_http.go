package oracle

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPDoer abstracts http.Client for ease of testing.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPFeed fetches quotes from an HTTP price endpoint returning JSON of the
// form {"rate": "123.45", "timestamp": 1700000000}. The endpoint receives the
// pair through "base" and "quote" query parameters.
type HTTPFeed struct {
	client   HTTPDoer
	endpoint string
	apiKey   string
	name     string
}

// NewHTTPFeed constructs an HTTP feed adapter. When the client is nil
// http.DefaultClient is used. The API key is optional and only added to the
// request headers when supplied.
func NewHTTPFeed(name string, client HTTPDoer, endpoint, apiKey string) *HTTPFeed {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFeed{
		client:   client,
		endpoint: strings.TrimSpace(endpoint),
		apiKey:   strings.TrimSpace(apiKey),
		name:     strings.ToLower(strings.TrimSpace(name)),
	}
}

func (f *HTTPFeed) GetPrice(base, quote string) (PriceQuote, error) {
	if f == nil {
		return PriceQuote{}, fmt.Errorf("http feed not configured")
	}
	if f.endpoint == "" {
		return PriceQuote{}, fmt.Errorf("http feed %s: endpoint required", f.name)
	}
	req, err := http.NewRequest(http.MethodGet, f.endpoint, nil)
	if err != nil {
		return PriceQuote{}, err
	}
	values := url.Values{}
	values.Set("base", normaliseSymbol(base))
	values.Set("quote", normaliseSymbol(quote))
	req.URL.RawQuery = values.Encode()
	if f.apiKey != "" {
		req.Header.Set("x-api-key", f.apiKey)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return PriceQuote{}, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return PriceQuote{}, fmt.Errorf("http feed %s: status %d: %s", f.name, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var payload struct {
		Rate      string `json:"rate"`
		Timestamp int64  `json:"timestamp"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return PriceQuote{}, fmt.Errorf("http feed %s: decode: %w", f.name, err)
	}
	rate := strings.TrimSpace(payload.Rate)
	if rate == "" {
		return PriceQuote{}, fmt.Errorf("http feed %s: empty rate", f.name)
	}
	rat, ok := new(big.Rat).SetString(rate)
	if !ok || rat.Sign() <= 0 {
		return PriceQuote{}, fmt.Errorf("http feed %s: invalid rate %q", f.name, payload.Rate)
	}
	return PriceQuote{Rate: rat, Timestamp: time.Unix(payload.Timestamp, 0), Source: f.name}, nil
}
