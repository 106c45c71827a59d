package yahoo

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HistoryBackend scrapes the daily table of the quote history page
type HistoryBackend struct {
	client *Client
}

func (b *HistoryBackend) Name() string { return "history" }

// FetchCloses fetches the last six months of closes for symbol
func (b *HistoryBackend) FetchCloses(ctx context.Context, symbol string) ([]float64, error) {
	now := b.client.now()

	params := url.Values{}
	params.Set("period1", strconv.FormatInt(now.Add(-historyWindow).Unix(), 10))
	params.Set("period2", strconv.FormatInt(now.Unix(), 10))
	params.Set("interval", seriesInterval)

	fullURL := fmt.Sprintf("%s/quote/%s/history?%s", b.client.siteURL, url.PathEscape(symbol), params.Encode())

	body, err := b.client.fetch(ctx, fullURL)
	if err != nil {
		return nil, err
	}

	closes, err := parseHistoryTable(body)
	if err != nil {
		return nil, fmt.Errorf("parse history page failed: %w", err)
	}

	b.client.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(closes),
	}).Debug("Fetched history closes")
	return closes, nil
}

// parseHistoryTable reads the Close column of the first table.
// The page lists newest first; the result is chronological.
func parseHistoryTable(body []byte) ([]float64, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, ErrNoData
	}

	closeIdx := -1
	table.Find("thead th").EachWithBreak(func(i int, th *goquery.Selection) bool {
		if strings.HasPrefix(strings.TrimSpace(th.Text()), "Close") {
			closeIdx = i
			return false
		}
		return true
	})
	if closeIdx < 0 {
		return nil, fmt.Errorf("close column not found")
	}

	var closes []float64
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		// 배당/분할 행은 셀 수가 적음
		if cells.Length() <= closeIdx {
			return
		}

		text := strings.ReplaceAll(strings.TrimSpace(cells.Eq(closeIdx).Text()), ",", "")
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return
		}
		closes = append(closes, v)
	})

	if len(closes) == 0 {
		return nil, ErrNoData
	}

	slices.Reverse(closes)
	return closes, nil
}
