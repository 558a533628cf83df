// Package investfunds is a client for the investfunds.ru quote pages, the
// source of historical security prices and metadata.
//
// The site is an unreliable external feed: the client sticks to the two JSON
// endpoints (search and chart data) and deliberately avoids parsing the HTML
// pages around them.
package investfunds

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PaesslerAG/jsonpath"
	tinvest "github.com/Semihal/tcs-invest-analysis"
	"github.com/Semihal/tcs-invest-analysis/date"
	"github.com/Semihal/tcs-invest-analysis/httpcache"
)

const defaultBaseURL = "https://investfunds.ru"

// ErrNotFound is returned when a security cannot be identified with
// certainty. An ambiguous search (several matches for one ISIN) is treated
// as not found rather than guessing.
var ErrNotFound = errors.New("security not found")

// sections are the site areas searched for an ISIN, with the asset type
// each one implies.
var sections = []struct {
	path      string
	assetType string
}{
	{"stocks", "stock"},
	{"etf", "etf"},
	{"bonds", "bond"},
}

// Asset identifies a security on the site well enough to query its chart.
type Asset struct {
	Info    tinvest.SecurityInfo
	pageURL string // site-relative page of the security
	chartID string // internal chart identifier, e.g. "18442/1869" for stocks
}

// Client talks to the quote site.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a site client with the daily response cache: historical
// closes do not change within a day.
func NewClient() *Client {
	return &Client{baseURL: defaultBaseURL, http: httpcache.Daily()}
}

// LookupSecurity searches the site for the ISIN across all sections.
// It returns ErrNotFound when no section has exactly one match.
func (c *Client) LookupSecurity(ctx context.Context, isin string) (Asset, error) {
	for _, section := range sections {
		asset, err := c.search(ctx, section.path, section.assetType, isin)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return Asset{}, err
		}
		return asset, nil
	}
	return Asset{}, fmt.Errorf("isin %s: %w", isin, ErrNotFound)
}

// search queries one section's search endpoint.
//
// The response is picked apart with jsonpath because the payload uses keys
// like "id.numeric" that do not map onto Go struct tags.
func (c *Client) search(ctx context.Context, section, assetType, isin string) (Asset, error) {
	addr := fmt.Sprintf("%s/%s/?%s", c.baseURL, section, url.Values{"searchString": {isin}}.Encode())
	var jobj any
	if err := httpcache.GetJSON(ctx, c.http, addr, nil, &jobj); err != nil {
		return Asset{}, fmt.Errorf("search %s in %s: %w", isin, section, err)
	}

	total, err := jsonpath.Get("$.total", jobj)
	if err != nil {
		return Asset{}, fmt.Errorf("search %s in %s: unexpected response: %w", isin, section, err)
	}
	// One exact match or nothing: a fuzzy search result must not be trusted.
	if n, ok := total.(float64); !ok || n != 1 {
		return Asset{}, ErrNotFound
	}

	name, _ := jsonString(jobj, `$.currentResults[0].name`)
	pageURL, err := jsonString(jobj, `$.currentResults[0].url`)
	if err != nil {
		return Asset{}, fmt.Errorf("search %s in %s: no page url: %w", isin, section, err)
	}
	chartID, err := c.chartID(jobj, section)
	if err != nil {
		return Asset{}, fmt.Errorf("search %s in %s: %w", isin, section, err)
	}

	return Asset{
		Info: tinvest.SecurityInfo{
			ISIN:      isin,
			Name:      name,
			AssetType: assetType,
		},
		pageURL: pageURL,
		chartID: chartID,
	}, nil
}

// chartID extracts the identifier the chart endpoint expects. Exchange
// traded instruments need the numeric id of a trading ground next to the
// security id; the first listed ground is used.
func (c *Client) chartID(jobj any, section string) (string, error) {
	id, err := jsonNumber(jobj, `$.currentResults[0]["id.numeric"]`)
	if err != nil {
		return "", err
	}
	if section == "stocks" || section == "etf" {
		ground, err := jsonNumber(jobj, `$.currentResults[0].trading_grounds[0]["id.numeric"]`)
		if err != nil {
			return "", fmt.Errorf("no trading ground: %w", err)
		}
		return fmt.Sprintf("%.0f/%.0f", id, ground), nil
	}
	return fmt.Sprintf("%.0f", id), nil
}

// FetchPriceHistory returns the daily closes of the asset since 'from'.
func (c *Client) FetchPriceHistory(ctx context.Context, asset Asset, from date.Date) ([]tinvest.QuotePoint, error) {
	q := url.Values{}
	q.Set("action", "chartData")
	q.Set("stocks[]", asset.chartID)
	q.Set("dateFrom", from.Format("02.01.2006"))
	q.Set("needVolume", "false")
	q.Set("newAlgorithm", "true")
	addr := fmt.Sprintf("%s/%s/1?%s", c.baseURL, asset.pageURL, q.Encode())

	var jobj any
	if err := httpcache.GetJSON(ctx, c.http, addr, nil, &jobj); err != nil {
		return nil, fmt.Errorf("chart data for %s: %w", asset.Info.ISIN, err)
	}
	data, err := jsonpath.Get("$[0].data", jobj)
	if err != nil {
		return nil, fmt.Errorf("chart data for %s: unexpected response: %w", asset.Info.ISIN, err)
	}
	pairs, ok := data.([]any)
	if !ok {
		return nil, fmt.Errorf("chart data for %s: not a series", asset.Info.ISIN)
	}

	points := make([]tinvest.QuotePoint, 0, len(pairs))
	for _, raw := range pairs {
		pair, ok := raw.([]any)
		if !ok || len(pair) != 2 {
			return nil, fmt.Errorf("chart data for %s: malformed point %v", asset.Info.ISIN, raw)
		}
		ms, okMs := pair[0].(float64)
		price, okPrice := pair[1].(float64)
		if !okMs || !okPrice {
			return nil, fmt.Errorf("chart data for %s: malformed point %v", asset.Info.ISIN, raw)
		}
		on := date.FromTime(time.UnixMilli(int64(ms)).UTC())
		points = append(points, tinvest.QuotePoint{On: on, Close: price})
	}
	return points, nil
}

func jsonString(jobj any, path string) (string, error) {
	v, err := jsonpath.Get(path, jobj)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: not a string: %v", path, v)
	}
	return s, nil
}

func jsonNumber(jobj any, path string) (float64, error) {
	v, err := jsonpath.Get(path, jobj)
	if err != nil {
		return 0, err
	}
	n, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%s: not a number: %v", path, v)
	}
	return n, nil
}
