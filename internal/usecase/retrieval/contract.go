package retrieval

import (
	"context"

	"github.com/veranohq/guestsearch/internal/domain/search"
)

// Repository defines the storage contract for domain searches. Each method
// is one similarity query against one knowledge domain; results arrive
// pre-sorted by descending similarity and tagged by the repository.
type Repository interface {
	SearchAccommodation(ctx context.Context, q search.AccommodationQuery) ([]search.Result, error)
	SearchHotelGeneral(ctx context.Context, q search.HotelGeneralQuery) ([]search.Result, error)
	SearchUnitManual(ctx context.Context, q search.UnitManualQuery) ([]search.Result, error)
	SearchTourism(ctx context.Context, q search.TourismQuery) ([]search.Result, error)
}
