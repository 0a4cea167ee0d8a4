// Package retrieval derives a guest's search permissions and fans out the
// permitted domain searches in parallel.
package retrieval

import (
	"fmt"
	"strings"

	"github.com/veranohq/guestsearch/internal/domain/guest"
)

// muvaAccessFlag is the tenant feature flag gating the tourism domain.
const muvaAccessFlag = "muva_access"

// SearchContext is the per-request, read-only permission envelope. It is
// built once per inbound chat turn and never cached across turns, since
// permissions can change between turns.
type SearchContext struct {
	TenantID              string
	Guest                 guest.Session
	Units                 []guest.AccommodationUnit
	HasMuvaAccess         bool
	HasAccommodationUnits bool
}

// BuildSearchContext derives the queryable domains from the guest record
// alone. Pure function: nothing about the query text can ever widen access.
func BuildSearchContext(g guest.Session) SearchContext {
	units := g.Units()
	return SearchContext{
		TenantID:              g.TenantID,
		Guest:                 g,
		Units:                 units,
		HasMuvaAccess:         g.FeatureEnabled(muvaAccessFlag),
		HasAccommodationUnits: len(units) > 0,
	}
}

// Strategy describes the resolved search plan for audit logs. Diagnostic
// only; never consulted when deciding what to search.
func (c SearchContext) Strategy() string {
	parts := []string{"accommodation", "hotel_general"}
	if c.HasAccommodationUnits {
		parts = append(parts, fmt.Sprintf("unit_manual(%d)", len(c.Units)))
	}
	if c.HasMuvaAccess {
		parts = append(parts, "tourism")
	}
	return strings.Join(parts, "+")
}
