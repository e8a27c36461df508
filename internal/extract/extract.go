// Package extract turns a rendered product page into a numeric price
// reading. Extraction is pure given the fetched HTML: the only side effects
// live in the browser collaborator.
package extract

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ksuda/pricewatch/internal/browser"
	domain "github.com/ksuda/pricewatch/pkg/types"
)

// priceRe matches the first numeric run with an optional decimal part.
// Currency symbols and surrounding text fall away because only the match is
// taken; thousands separators are stripped before matching.
var priceRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

// Extractor produces one price reading per product per run. Failures are
// reported on the reading, never retried here.
type Extractor interface {
	Extract(ctx context.Context, cfg domain.ProductConfig) domain.PriceReading
}

// PageExtractor implements Extractor using a browser.Fetcher for page
// content and CSS selectors for locating the price.
type PageExtractor struct {
	fetcher browser.Fetcher
}

// New creates a PageExtractor on top of the given fetcher.
func New(f browser.Fetcher) *PageExtractor {
	return &PageExtractor{fetcher: f}
}

// Extract fetches the product page and resolves the configured selector to a
// normalized numeric price. One attempt only: any failure surfaces as a
// reading with a reason and the product is skipped for this run.
func (e *PageExtractor) Extract(ctx context.Context, cfg domain.ProductConfig) domain.PriceReading {
	wait := cfg.WaitSelector
	if wait == "" {
		wait = cfg.Selector
	}

	html, err := e.fetcher.FetchHTML(ctx, cfg.URL, wait)
	if err != nil {
		return domain.PriceReading{Failure: domain.FailureFetch, Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return domain.PriceReading{
			Failure: domain.FailureParse,
			Err:     fmt.Errorf("parsing page html: %w", err),
		}
	}

	sel := doc.Find(cfg.Selector).First()
	if sel.Length() == 0 {
		return domain.PriceReading{
			Failure: domain.FailureNotFound,
			Err:     fmt.Errorf("no element matches selector %q", cfg.Selector),
		}
	}

	var raw string
	if cfg.Attribute != "" {
		raw, _ = sel.Attr(cfg.Attribute)
	} else {
		raw = sel.Text()
	}

	// A matching element with nothing in it counts as not found, same as
	// no element at all. Only non-empty text that fails to parse is a
	// parse failure.
	if strings.TrimSpace(raw) == "" {
		return domain.PriceReading{
			Failure: domain.FailureNotFound,
			Err:     fmt.Errorf("selector %q matched an element with no content", cfg.Selector),
		}
	}

	price, ok := ParsePrice(raw)
	if !ok {
		return domain.PriceReading{
			Failure: domain.FailureParse,
			Err:     fmt.Errorf("no numeric price in %q", strings.TrimSpace(raw)),
		}
	}

	return domain.PriceReading{Price: price}
}

// ParsePrice normalizes a raw price string to a number. Thousands separators
// are stripped, then the first numeric run wins: "¥1,234" and "$ 1234.50"
// both parse, "在庫なし" does not.
func ParsePrice(text string) (float64, bool) {
	normalized := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	m := priceRe.FindString(normalized)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
