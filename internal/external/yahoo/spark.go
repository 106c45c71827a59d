package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// SparkBackend reads closes from the multi-symbol spark endpoint
type SparkBackend struct {
	client *Client
}

func (b *SparkBackend) Name() string { return "spark" }

type sparkResponse struct {
	Spark struct {
		Result []struct {
			Symbol   string `json:"symbol"`
			Response []struct {
				Indicators quoteIndicators `json:"indicators"`
			} `json:"response"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"spark"`
}

// FetchCloses fetches six months of daily closes for symbol
func (b *SparkBackend) FetchCloses(ctx context.Context, symbol string) ([]float64, error) {
	params := url.Values{}
	params.Set("symbols", symbol)
	params.Set("range", seriesRange)
	params.Set("interval", seriesInterval)

	body, err := b.client.fetch(ctx, b.client.apiURL("/v7/finance/spark", params))
	if err != nil {
		return nil, err
	}

	closes, err := parseSpark(body)
	if err != nil {
		return nil, fmt.Errorf("parse spark response failed: %w", err)
	}

	b.client.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(closes),
	}).Debug("Fetched spark closes")
	return closes, nil
}

func parseSpark(body []byte) ([]float64, error) {
	var resp sparkResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	if resp.Spark.Error != nil {
		return nil, resp.Spark.Error
	}
	if len(resp.Spark.Result) == 0 || len(resp.Spark.Result[0].Response) == 0 {
		return nil, ErrNoData
	}

	quotes := resp.Spark.Result[0].Response[0].Indicators.Quote
	if len(quotes) == 0 {
		return nil, ErrNoData
	}
	return dropNulls(quotes[0].Close), nil
}
