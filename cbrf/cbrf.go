// Package cbrf is a client for the Central Bank of Russia exchange rate API,
// the source of the daily conversion rates into the reporting currency.
package cbrf

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	tinvest "github.com/Semihal/tcs-invest-analysis"
	"github.com/Semihal/tcs-invest-analysis/date"
	"github.com/Semihal/tcs-invest-analysis/httpcache"
	"golang.org/x/net/html/charset"
)

const defaultBaseURL = "https://www.cbr.ru/scripts/XML_dynamic.asp"

// currencyIDs maps ISO currency codes onto the bank's internal identifiers.
// See https://www.cbr.ru/scripts/XML_val.asp?d=0 for the full list.
var currencyIDs = map[string]string{
	"USD": "R01235",
	"EUR": "R01239",
}

// Currencies returns the supported ISO currency codes, sorted.
func Currencies() []string {
	codes := make([]string, 0, len(currencyIDs))
	for code := range currencyIDs {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Client talks to the exchange rate API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a rate client with the daily response cache.
func NewClient() *Client {
	return &Client{baseURL: defaultBaseURL, http: httpcache.Daily()}
}

// valCurs is the wire form of a rate history.
type valCurs struct {
	Records []struct {
		Date    string `xml:"Date,attr"`
		Nominal string `xml:"Nominal"`
		Value   string `xml:"Value"`
	} `xml:"Record"`
}

// FetchRateHistory returns the daily rates of one currency over the range.
// Rates exist only for the bank's business days; days in between are
// conversion gaps the normalizer handles.
func (c *Client) FetchRateHistory(ctx context.Context, code string, r date.Range) ([]tinvest.RatePoint, error) {
	id, ok := currencyIDs[code]
	if !ok {
		return nil, fmt.Errorf("unsupported currency %q (supported: %s)", code, strings.Join(Currencies(), ", "))
	}

	q := url.Values{}
	q.Set("date_req1", r.From.Format("02/01/2006"))
	q.Set("date_req2", r.To.Format("02/01/2006"))
	q.Set("VAL_NM_RQ", id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch %s rates: %w", code, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cannot fetch %s rates: %v", code, resp.Status)
	}
	return parseRates(code, resp.Body)
}

func parseRates(code string, body io.Reader) ([]tinvest.RatePoint, error) {
	// The API responds in windows-1251.
	dec := xml.NewDecoder(body)
	dec.CharsetReader = charset.NewReaderLabel

	var doc valCurs
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("cannot parse %s rates: %w", code, err)
	}

	points := make([]tinvest.RatePoint, 0, len(doc.Records))
	for _, rec := range doc.Records {
		on, err := parseBankDate(rec.Date)
		if err != nil {
			return nil, fmt.Errorf("%s rates: %w", code, err)
		}
		// Decimal comma, and a value quoted per Nominal units.
		value, err := strconv.ParseFloat(strings.Replace(rec.Value, ",", ".", 1), 64)
		if err != nil {
			return nil, fmt.Errorf("%s rate on %s: invalid value %q", code, on, rec.Value)
		}
		nominal, err := strconv.ParseFloat(rec.Nominal, 64)
		if err != nil || nominal == 0 {
			return nil, fmt.Errorf("%s rate on %s: invalid nominal %q", code, on, rec.Nominal)
		}
		points = append(points, tinvest.RatePoint{On: on, Rate: value / nominal})
	}
	return points, nil
}

// parseBankDate parses the API's DD.MM.YYYY dates.
func parseBankDate(s string) (date.Date, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return date.Date{}, fmt.Errorf("invalid date %q", s)
	}
	day, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return date.Date{}, fmt.Errorf("invalid date %q", s)
	}
	return date.New(year, time.Month(month), day), nil
}
