package kucoin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	baseURL        = "https://api.kucoin.com"
	requestTimeout = 10 * time.Second
	okCode         = "200000"
)

// Kline is one candle row from the Kucoin candles endpoint. The venue
// returns it as a string array: start time (unix seconds), open, close,
// high, low, volume, turnover.
type Kline struct {
	StartAt  time.Time
	Open     float64
	Close    float64
	High     float64
	Low      float64
	Volume   float64
	Turnover float64
}

// Stats is the 24h market statistics payload.
type Stats struct {
	Symbol   string `json:"symbol"`
	High     string `json:"high"`
	Low      string `json:"low"`
	Last     string `json:"last"`
	Vol      string `json:"vol"`
	VolValue string `json:"volValue"`
}

type candlesResponse struct {
	Code string     `json:"code"`
	Msg  string     `json:"msg"`
	Data [][]string `json:"data"`
}

type statsResponse struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data Stats  `json:"data"`
}

type KucoinClient struct {
	httpClient *http.Client
}

func NewKucoinClient() *KucoinClient {
	return &KucoinClient{
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// GetKlines fetches candles of the given type for [startAt, endAt) in
// unix seconds. Rows come back newest first.
func (c *KucoinClient) GetKlines(ctx context.Context, symbol, candleType string, startAt, endAt int64) ([]Kline, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("type", candleType)
	q.Set("startAt", strconv.FormatInt(startAt, 10))
	q.Set("endAt", strconv.FormatInt(endAt, 10))

	var resp candlesResponse
	if err := c.get(ctx, "/api/v1/market/candles", q, &resp); err != nil {
		return nil, err
	}
	if resp.Code != okCode {
		return nil, fmt.Errorf("kucoin candles error %s: %s", resp.Code, resp.Msg)
	}

	klines := make([]Kline, 0, len(resp.Data))
	for _, row := range resp.Data {
		if len(row) < 7 {
			continue
		}
		ts, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			continue
		}
		klines = append(klines, Kline{
			StartAt:  time.Unix(ts, 0).UTC(),
			Open:     parseFloat(row[1]),
			Close:    parseFloat(row[2]),
			High:     parseFloat(row[3]),
			Low:      parseFloat(row[4]),
			Volume:   parseFloat(row[5]),
			Turnover: parseFloat(row[6]),
		})
	}
	return klines, nil
}

// GetStats fetches the 24h market statistics for the symbol.
func (c *KucoinClient) GetStats(ctx context.Context, symbol string) (*Stats, error) {
	q := url.Values{}
	q.Set("symbol", symbol)

	var resp statsResponse
	if err := c.get(ctx, "/api/v1/market/stats", q, &resp); err != nil {
		return nil, err
	}
	if resp.Code != okCode {
		return nil, fmt.Errorf("kucoin stats error %s: %s", resp.Code, resp.Msg)
	}
	return &resp.Data, nil
}

func (c *KucoinClient) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("kucoin %s returned status %d: %s", path, resp.StatusCode, string(body))
	}
	return json.Unmarshal(body, out)
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
