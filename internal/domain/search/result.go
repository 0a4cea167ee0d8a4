// Package search defines the knowledge domains and the tagged result value
// the orchestrator hands to the answer-generation consumer.
package search

// Domain is one of the four independent knowledge partitions.
type Domain string

// Knowledge domains.
const (
	DomainAccommodation Domain = "accommodation"
	DomainHotelGeneral  Domain = "hotel_general_info"
	DomainUnitManual    Domain = "unit_manual"
	DomainTourism       Domain = "tourism"
)

// Storage tables results can originate from. Accommodation results span two
// tables (the public catalog and the per-unit private content).
const (
	TableAccommodationPublic  = "accommodation_units_public"
	TableAccommodationPrivate = "accommodation_units_private"
	TableHotelGeneral         = "hotel_general_info"
	TableUnitManual           = "unit_manual_chunks"
	TableTourism              = "tourism_content"
)

// Result is a single retrieved item. Every result carries its source domain
// and table; an untagged result is a defect.
type Result struct {
	ID           string
	Content      string
	Similarity   float64
	SourceDomain Domain
	Table        string
	// UnitID and UnitName identify the accommodation unit a row belongs to,
	// when the table is unit-scoped.
	UnitID   string
	UnitName string
	// IsGuestUnit marks accommodation rows belonging to the requesting
	// guest's own unit, as flagged by the storage layer.
	IsGuestUnit bool
	// Metadata carries free-form row columns (section title, chunk index).
	Metadata map[string]string
}
