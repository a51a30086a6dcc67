package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	baseURL        = "https://api.coingecko.com/api/v3"
	requestTimeout = 30 * time.Second
)

// SimplePrice is the per-coin payload from the simple/price endpoint.
type SimplePrice struct {
	USD          float64 `json:"usd"`
	USDVolume24h float64 `json:"usd_24h_vol"`
	USDChange24h float64 `json:"usd_24h_change"`
}

type CoinGeckoClient struct {
	httpClient *http.Client
}

func NewCoinGeckoClient() *CoinGeckoClient {
	return &CoinGeckoClient{
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// GetSimplePrice fetches the current USD price and 24h volume/change for
// one coin id, e.g. "bitcoin".
func (c *CoinGeckoClient) GetSimplePrice(ctx context.Context, coinID string) (*SimplePrice, error) {
	q := url.Values{}
	q.Set("ids", coinID)
	q.Set("vs_currencies", "usd")
	q.Set("include_24hr_vol", "true")
	q.Set("include_24hr_change", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		baseURL+"/simple/price?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coingecko simple/price returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload map[string]SimplePrice
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	price, ok := payload[coinID]
	if !ok {
		return nil, nil
	}
	return &price, nil
}
