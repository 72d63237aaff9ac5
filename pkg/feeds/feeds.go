// Package feeds holds one adapter per external source. Every adapter
// normalizes its source's shape into models.RawItem and never returns an
// error across Fetch's boundary — failures are swallowed into an empty
// slice plus a logged warning, so one dead source never stalls the others.
package feeds

import (
	"context"

	"github.com/ai-roundtable/observatory/pkg/models"
)

// Adapter fetches the latest items from one external source.
type Adapter interface {
	SourceType() string
	Fetch(ctx context.Context) ([]models.RawItem, error)
}
