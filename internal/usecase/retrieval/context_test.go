package retrieval

import (
	"testing"

	"github.com/veranohq/guestsearch/internal/domain/guest"
)

func TestBuildSearchContext_FullAccess(t *testing.T) {
	g := guest.Session{
		ID:       "guest-1",
		TenantID: "tenant-1",
		AccommodationUnits: []guest.AccommodationUnit{
			{ID: "unit-42", Name: "Suite 42"},
		},
		TenantFeatures: map[string]any{"muva_access": true},
	}

	sctx := BuildSearchContext(g)

	if sctx.TenantID != "tenant-1" {
		t.Errorf("TenantID = %q, want %q", sctx.TenantID, "tenant-1")
	}
	if !sctx.HasAccommodationUnits {
		t.Error("expected HasAccommodationUnits = true")
	}
	if len(sctx.Units) != 1 || sctx.Units[0].ID != "unit-42" {
		t.Errorf("Units = %v, want single unit-42", sctx.Units)
	}
	if !sctx.HasMuvaAccess {
		t.Error("expected HasMuvaAccess = true")
	}
}

func TestBuildSearchContext_MissingFeatureKeyDeniesTourism(t *testing.T) {
	g := guest.Session{TenantID: "tenant-1", TenantFeatures: map[string]any{}}

	if BuildSearchContext(g).HasMuvaAccess {
		t.Error("missing muva_access key must deny tourism")
	}
}

func TestBuildSearchContext_NonBooleanFeatureDeniesTourism(t *testing.T) {
	for _, v := range []any{"true", 1, nil, false} {
		g := guest.Session{TenantID: "tenant-1", TenantFeatures: map[string]any{"muva_access": v}}
		if BuildSearchContext(g).HasMuvaAccess {
			t.Errorf("muva_access=%v (%T) must deny tourism", v, v)
		}
	}
}

func TestBuildSearchContext_LegacySingleUnitFallback(t *testing.T) {
	g := guest.Session{
		TenantID:          "tenant-1",
		AccommodationUnit: &guest.AccommodationUnit{ID: "unit-7", Name: "Cabin 7"},
	}

	sctx := BuildSearchContext(g)
	if len(sctx.Units) != 1 || sctx.Units[0].ID != "unit-7" {
		t.Errorf("Units = %v, want legacy single unit-7", sctx.Units)
	}
}

func TestStrategy(t *testing.T) {
	tests := []struct {
		name string
		sctx SearchContext
		want string
	}{
		{
			name: "base domains only",
			sctx: SearchContext{},
			want: "accommodation+hotel_general",
		},
		{
			name: "with units",
			sctx: SearchContext{
				Units:                 []guest.AccommodationUnit{{ID: "a"}, {ID: "b"}},
				HasAccommodationUnits: true,
			},
			want: "accommodation+hotel_general+unit_manual(2)",
		},
		{
			name: "everything",
			sctx: SearchContext{
				Units:                 []guest.AccommodationUnit{{ID: "a"}},
				HasAccommodationUnits: true,
				HasMuvaAccess:         true,
			},
			want: "accommodation+hotel_general+unit_manual(1)+tourism",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sctx.Strategy(); got != tt.want {
				t.Errorf("Strategy() = %q, want %q", got, tt.want)
			}
		})
	}
}
