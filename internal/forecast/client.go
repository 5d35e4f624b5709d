// Package forecast consumes the external demand-forecasting service.
// The contract is deliberately loose: any failure degrades to an empty
// result set so inventory analytics can never block clinic operations.
package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// Row is one forecast point for one medicine.
type Row struct {
	Medicine      string  `json:"medicine"`
	ForecastMonth string  `json:"forecast_month"`
	ForecastQty   float64 `json:"forecast_qty"`
}

// RestockRow is the restock recommendation shape.
type RestockRow struct {
	Medicine     string  `json:"medicine"`
	CurrentStock float64 `json:"current_stock"`
	ForecastQty  float64 `json:"forecast_qty"`
	RestockQty   float64 `json:"restock_qty"`
}

// SeasonalityRow aggregates demand per calendar month.
type SeasonalityRow struct {
	Medicine string  `json:"medicine"`
	Month    int     `json:"month"`
	AvgQty   float64 `json:"avg_qty"`
}

type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	settings := gobreaker.Settings{
		Name:    "forecast-service",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(settings),
		log:     log,
	}
}

// Forecast returns per-medicine monthly forecasts over the horizon.
func (c *Client) Forecast(ctx context.Context, horizonMonths int) []Row {
	params := url.Values{"horizon": {strconv.Itoa(horizonMonths)}}
	var rows []Row
	c.fetch(ctx, "/forecast_db", params, &rows)
	if rows == nil {
		rows = []Row{}
	}
	return rows
}

// TopForecast returns the highest-demand medicines for the horizon.
// metric is "next" or "total"; top <= 0 leaves the service default.
func (c *Client) TopForecast(ctx context.Context, horizonMonths int, metric string, top int) []Row {
	params := url.Values{
		"horizon": {strconv.Itoa(horizonMonths)},
		"metric":  {metric},
	}
	if top > 0 {
		params.Set("top", strconv.Itoa(top))
	}
	var rows []Row
	c.fetch(ctx, "/top_forecast_db", params, &rows)
	if rows == nil {
		rows = []Row{}
	}
	return rows
}

// Seasonality returns per-month demand averages.
func (c *Client) Seasonality(ctx context.Context) []SeasonalityRow {
	var rows []SeasonalityRow
	c.fetch(ctx, "/seasonality_db", url.Values{}, &rows)
	if rows == nil {
		rows = []SeasonalityRow{}
	}
	return rows
}

// Restock returns restock recommendations against current stock.
func (c *Client) Restock(ctx context.Context, horizonMonths int) []RestockRow {
	params := url.Values{"horizon": {strconv.Itoa(horizonMonths)}}
	var rows []RestockRow
	c.fetch(ctx, "/restock_db", params, &rows)
	if rows == nil {
		rows = []RestockRow{}
	}
	return rows
}

// Healthy pings the service; used by readiness reporting only.
func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// fetch runs a GET through the circuit breaker and decodes into out.
// Every failure path logs and leaves out untouched.
func (c *Client) fetch(ctx context.Context, path string, params url.Values, out any) {
	_, err := c.breaker.Execute(func() (any, error) {
		u := c.baseURL + path
		if len(params) > 0 {
			u += "?" + params.Encode()
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, fmt.Errorf("forecast service %s: status %d: %s", path, resp.StatusCode, body)
		}
		return nil, json.NewDecoder(resp.Body).Decode(out)
	})
	if err != nil {
		c.log.Warn().Err(err).Str("path", path).Msg("forecast call degraded to empty result")
	}
}
