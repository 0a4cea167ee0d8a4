// Package guest models the per-reservation session record the chat handler
// hands to the retrieval core. The record is authenticated upstream; this
// package only normalizes it.
package guest

// AccommodationUnit is one unit assigned to a reservation.
type AccommodationUnit struct {
	ID   string
	Name string
}

// Session is the read-only guest/reservation record supplied per chat turn.
// AccommodationUnits is the current multi-unit list; AccommodationUnit is the
// legacy single-unit field kept for reservations created before multi-unit
// support. TenantFeatures is the tenant feature-flag map; flag values arrive
// untyped from the session store.
type Session struct {
	ID                 string
	TenantID           string
	Name               string
	CheckInDate        string
	CheckOutDate       string
	AccommodationUnits []AccommodationUnit
	AccommodationUnit  *AccommodationUnit
	TenantFeatures     map[string]any
}

// Units normalizes the two unit fields into one list: the multi-unit list
// when non-empty, else the legacy single unit, else nothing. All search logic
// goes through this method so the legacy field is handled in exactly one place.
func (s Session) Units() []AccommodationUnit {
	if len(s.AccommodationUnits) > 0 {
		return s.AccommodationUnits
	}
	if s.AccommodationUnit != nil {
		return []AccommodationUnit{*s.AccommodationUnit}
	}
	return nil
}

// FeatureEnabled reports whether a tenant feature flag is the boolean true.
// A missing key, a non-boolean value, or false all mean disabled; truthy
// strings must never grant access.
func (s Session) FeatureEnabled(flag string) bool {
	v, ok := s.TenantFeatures[flag].(bool)
	return ok && v
}
