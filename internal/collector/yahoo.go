package collector

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"StockSentry/internal/model"
)

const yahooChartURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// YahooFetcher implements Fetcher using the Yahoo Finance public chart API.
type YahooFetcher struct {
	Client   *http.Client
	Location *time.Location
	BaseURL  string
}

// NewYahooFetcher creates a new Yahoo Finance fetcher. Calendar-day
// filtering for intraday bars uses loc.
func NewYahooFetcher(loc *time.Location, proxyURL string) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooFetcher{
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		Location: loc,
		BaseURL:  yahooChartURL,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from the Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []interface{} `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func (f *YahooFetcher) fetchChart(ticker, interval, rng string) ([]model.PriceBar, error) {
	u := fmt.Sprintf("%s/%s?interval=%s&range=%s",
		f.BaseURL, url.PathEscape(ticker), interval, rng)

	req, err := http.NewRequest("GET", u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned")
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	var adj []interface{}
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	bars := make([]model.PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o := toFloat(quote.Open[i])
		h := toFloat(quote.High[i])
		l := toFloat(quote.Low[i])
		c := toFloat(quote.Close[i])
		if o == 0 && h == 0 && l == 0 && c == 0 {
			continue // skip null bars (holidays etc.)
		}
		ac := c
		if i < len(adj) {
			if v := toFloat(adj[i]); v != 0 {
				ac = v
			}
		}
		bars = append(bars, model.PriceBar{
			Ticker:    ticker,
			Timestamp: time.Unix(ts, 0).UTC(),
			Open:      o,
			High:      h,
			Low:       l,
			Close:     c,
			AdjClose:  ac,
			Volume:    int64(toFloat(quote.Volume[i])),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })
	return bars, nil
}

// intervalString maps a bar interval to the Yahoo chart interval parameter.
func intervalString(d time.Duration) string {
	if d < time.Minute {
		d = time.Minute
	}
	if d >= time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return fmt.Sprintf("%dm", int(d.Minutes()))
}

// FetchIntradayBars downloads two days of intraday bars and keeps the rows
// whose local calendar date matches day.
func (f *YahooFetcher) FetchIntradayBars(ticker string, interval time.Duration, day time.Time) ([]model.PriceBar, error) {
	bars, err := f.fetchChart(ticker, intervalString(interval), "2d")
	if err != nil {
		return nil, err
	}
	y, m, d := day.In(f.Location).Date()
	filtered := bars[:0]
	for _, b := range bars {
		by, bm, bd := b.Timestamp.In(f.Location).Date()
		if by == y && bm == m && bd == d {
			filtered = append(filtered, b)
		}
	}
	if len(filtered) == 0 {
		return nil, fmt.Errorf("yahoo: no %s bars for %s on %04d-%02d-%02d", intervalString(interval), ticker, y, m, d)
	}
	return filtered, nil
}

// FetchLatestPrice returns the last close of today's one-minute series.
func (f *YahooFetcher) FetchLatestPrice(ticker string) (float64, error) {
	bars, err := f.fetchChart(ticker, "1m", "1d")
	if err != nil {
		return 0, err
	}
	for i := len(bars) - 1; i >= 0; i-- {
		if bars[i].Close != 0 {
			return bars[i].Close, nil
		}
	}
	return 0, fmt.Errorf("yahoo: no intraday price for %s", ticker)
}
