package embedding

import (
	"fmt"
	"math"

	"github.com/veranohq/guestsearch/internal/domain"
)

// nestingTolerance is the absolute componentwise tolerance for the prefix
// check between adjacent tiers.
const nestingTolerance = 1e-4

// Validation is the outcome of a validator check. Failures are reported as
// values, never raised; the embedding pipeline's caller decides whether to
// regenerate, degrade, or abort.
type Validation struct {
	Valid  bool
	Errors []string
}

// ValidateDimensions checks exact tier lengths and the prefix-nesting
// property between adjacent tiers. All checks run independently and every
// failure appends its own error, so diagnostics show the full set of
// structural problems at once.
func ValidateDimensions(t domain.Triple) Validation {
	var errs []string

	if len(t.Balanced) != domain.DimBalanced {
		errs = append(errs, fmt.Sprintf("balanced tier has %d dimensions, want %d", len(t.Balanced), domain.DimBalanced))
	}
	if len(t.Standard) != domain.DimStandard {
		errs = append(errs, fmt.Sprintf("standard tier has %d dimensions, want %d", len(t.Standard), domain.DimStandard))
	}
	if len(t.Full) != domain.DimFull {
		errs = append(errs, fmt.Sprintf("full tier has %d dimensions, want %d", len(t.Full), domain.DimFull))
	}

	if msg := checkNesting("balanced", t.Balanced, "standard", t.Standard); msg != "" {
		errs = append(errs, msg)
	}
	if msg := checkNesting("standard", t.Standard, "full", t.Full); msg != "" {
		errs = append(errs, msg)
	}

	return Validation{Valid: len(errs) == 0, Errors: errs}
}

// checkNesting verifies that shorter is a componentwise prefix of longer
// within the tolerance. One error per tier pair is enough: a broken prefix
// means the tiers came from different model calls.
func checkNesting(shortName string, shorter []float32, longName string, longer []float32) string {
	n := min(len(shorter), len(longer))
	for i := 0; i < n; i++ {
		if math.Abs(float64(shorter[i])-float64(longer[i])) > nestingTolerance {
			return fmt.Sprintf(
				"%s tier is not a prefix of %s tier: component %d differs (%g vs %g)",
				shortName, longName, i, shorter[i], longer[i],
			)
		}
	}
	return ""
}

// ValidateValues walks the vector and stops at the first NaN, non-finite
// value, or magnitude above 1. Value corruption is systemic, so one offending
// component is enough to condemn the vector.
func ValidateValues(vec []float32) Validation {
	for i, v := range vec {
		f := float64(v)
		switch {
		case math.IsNaN(f):
			return Validation{Errors: []string{fmt.Sprintf("value at index %d is NaN", i)}}
		case math.IsInf(f, 0):
			return Validation{Errors: []string{fmt.Sprintf("value at index %d is not finite", i)}}
		case f > 1 || f < -1:
			return Validation{Errors: []string{fmt.Sprintf("value %g at index %d is outside [-1, 1]", f, i)}}
		}
	}
	return Validation{Valid: true}
}

// Validate composes the checks: dimensions first, then values per tier in
// ascending order, returning at the first failing stage. Value checks on a
// structurally broken triple would be meaningless.
func Validate(t domain.Triple) Validation {
	if v := ValidateDimensions(t); !v.Valid {
		return v
	}
	for _, vec := range [][]float32{t.Balanced, t.Standard, t.Full} {
		if v := ValidateValues(vec); !v.Valid {
			return v
		}
	}
	return Validation{Valid: true}
}
