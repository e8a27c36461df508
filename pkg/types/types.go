// Package domain defines the core business types for pricewatch.
package domain

import "time"

// EventKind classifies a notification event.
type EventKind string

// Event kind constants.
const (
	EventPriceDrop     EventKind = "PRICE_DROP"
	EventTargetReached EventKind = "TARGET_REACHED"
)

// FailureReason classifies why an extraction attempt produced no price.
type FailureReason string

// Failure reason constants.
const (
	FailureFetch    FailureReason = "FETCH_FAILED"
	FailureNotFound FailureReason = "NOT_FOUND"
	FailureParse    FailureReason = "PARSE_FAILED"
)

// ProductConfig describes one monitored product page. It is read-only input
// loaded from configuration; Name is unique within a run.
type ProductConfig struct {
	Name         string   `yaml:"name"                    json:"name"`
	URL          string   `yaml:"url"                     json:"url"`
	Selector     string   `yaml:"selector"                json:"selector"`
	WaitSelector string   `yaml:"wait_selector,omitempty" json:"wait_selector,omitempty"`
	Attribute    string   `yaml:"attribute,omitempty"     json:"attribute,omitempty"`
	TargetPrice  *float64 `yaml:"target_price,omitempty"  json:"target_price,omitempty"`
}

// PriceReading is the outcome of one extraction attempt: either a normalized
// numeric price, or a failure reason with the underlying error.
type PriceReading struct {
	Price   float64
	Failure FailureReason
	Err     error
}

// OK reports whether the reading carries a usable price.
func (r PriceReading) OK() bool {
	return r.Failure == ""
}

// ProductState is the persisted per-product record. LastPrice is nil until
// the product has been successfully observed at least once. TargetNotified
// is monotonic: once a target alert has fired it stays true.
type ProductState struct {
	LastPrice      *float64  `json:"last_price,omitempty"`
	TargetNotified bool      `json:"target_notified"`
	URL            string    `json:"url,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// StateDocument maps product name to its persisted state. Entries for
// products that disappear from configuration are retained across saves.
type StateDocument map[string]ProductState

// Clone returns a shallow copy of the document.
func (d StateDocument) Clone() StateDocument {
	out := make(StateDocument, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// PriceEvent is a notification decision for one product in one run.
// OldPrice is nil when no prior price existed; Target is set only when the
// product has a configured target price.
type PriceEvent struct {
	Kind     EventKind
	Product  string
	URL      string
	OldPrice *float64
	NewPrice float64
	Target   *float64
}
