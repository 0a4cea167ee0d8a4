package search

import "github.com/veranohq/guestsearch/internal/domain"

// AccommodationQuery scopes the accommodation-domain search: the guest's own
// unit for private content plus the tenant's full public catalog.
type AccommodationQuery struct {
	TenantID   string
	UnitID     string
	UnitName   string
	Embeddings domain.Triple
}

// HotelGeneralQuery scopes the hotel-wide info search by tenant only. This
// content is visible to every guest of the tenant, deliberately not
// unit-scoped.
type HotelGeneralQuery struct {
	TenantID   string
	Embeddings domain.Triple
}

// UnitManualQuery scopes a manual search strictly to one assigned unit.
type UnitManualQuery struct {
	TenantID   string
	UnitID     string
	UnitName   string
	Embeddings domain.Triple
}

// TourismQuery has no tenant or unit scope beyond the tourism collection
// itself.
type TourismQuery struct {
	Embeddings domain.Triple
}
