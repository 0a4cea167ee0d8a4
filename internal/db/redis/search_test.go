package redis

import (
	"testing"

	"github.com/veranohq/guestsearch/internal/db"
)

func TestBuildFilter(t *testing.T) {
	cases := []struct {
		name    string
		filters []db.TagFilter
		want    string
	}{
		{"empty", nil, ""},
		{
			"single tag",
			[]db.TagFilter{{Field: "tenant_id", Value: "simmerdown"}},
			"@tenant_id:{simmerdown}",
		},
		{
			"multiple tags are ANDed",
			[]db.TagFilter{{Field: "tenant_id", Value: "simmerdown"}, {Field: "unit_id", Value: "unit-42"}},
			"@tenant_id:{simmerdown} @unit_id:{unit\\-42}",
		},
		{
			"uuid value escaped",
			[]db.TagFilter{{Field: "unit_id", Value: "a1b2-c3d4"}},
			"@unit_id:{a1b2\\-c3d4}",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := buildFilter(tc.filters); got != tc.want {
				t.Errorf("buildFilter = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestVectorToBytes(t *testing.T) {
	out := vectorToBytes([]float32{1, -0.5})
	if len(out) != 8 {
		t.Fatalf("expected 8 bytes, got %d", len(out))
	}
	// 1.0 little-endian float32
	if out[0] != 0x00 || out[1] != 0x00 || out[2] != 0x80 || out[3] != 0x3f {
		t.Errorf("unexpected encoding of 1.0: % x", out[:4])
	}
}
