package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// ChartBackend reads closes straight from the v8 chart endpoint
type ChartBackend struct {
	client *Client
}

func (b *ChartBackend) Name() string { return "chart" }

type chartResponse struct {
	Chart struct {
		Result []struct {
			Indicators quoteIndicators `json:"indicators"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"chart"`
}

// FetchCloses fetches six months of daily closes for symbol.
// Null closes (halted sessions) are dropped.
func (b *ChartBackend) FetchCloses(ctx context.Context, symbol string) ([]float64, error) {
	params := url.Values{}
	params.Set("range", seriesRange)
	params.Set("interval", seriesInterval)

	body, err := b.client.fetch(ctx, b.client.apiURL("/v8/finance/chart/"+url.PathEscape(symbol), params))
	if err != nil {
		return nil, err
	}

	closes, err := parseChart(body)
	if err != nil {
		return nil, fmt.Errorf("parse chart response failed: %w", err)
	}

	b.client.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(closes),
	}).Debug("Fetched chart closes")
	return closes, nil
}

func parseChart(body []byte) ([]float64, error) {
	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	if resp.Chart.Error != nil {
		return nil, resp.Chart.Error
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, ErrNoData
	}
	return dropNulls(resp.Chart.Result[0].Indicators.Quote[0].Close), nil
}
