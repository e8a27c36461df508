// Package store defines the persistence abstraction for pricewatch state.
// The engine depends on the Store interface, never on a concrete
// implementation, which keeps decision logic testable without touching disk.
package store

import (
	"context"

	domain "github.com/ksuda/pricewatch/pkg/types"
)

// Store persists the state document between runs. Load returns an empty
// document when no state has ever been saved. Save must be atomic: after a
// crash the previous document is still intact.
type Store interface {
	Load(ctx context.Context) (domain.StateDocument, error)
	Save(ctx context.Context, doc domain.StateDocument) error
}
