package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AgeRangeKind tags which variant an AgeRange holds.
type AgeRangeKind int

const (
	// AgeRangeAny places no constraint on the poster's age.
	AgeRangeAny AgeRangeKind = iota
	// AgeRangeBetween keeps posters aged Min through Max inclusive.
	AgeRangeBetween
	// AgeRangePlus keeps posters aged Min or older.
	AgeRangePlus
)

// AgeRange is the poster age constraint of a FilterCriteria.
// The zero value is AnyAge.
type AgeRange struct {
	Kind AgeRangeKind
	Min  int
	Max  int
}

// AnyAge returns the unconstrained age range.
func AnyAge() AgeRange { return AgeRange{Kind: AgeRangeAny} }

// AgeBetween returns the inclusive range [lo, hi].
func AgeBetween(lo, hi int) AgeRange { return AgeRange{Kind: AgeRangeBetween, Min: lo, Max: hi} }

// AgePlus returns the open range [lo, ∞).
func AgePlus(lo int) AgeRange { return AgeRange{Kind: AgeRangePlus, Min: lo} }

// IsAny reports whether the range is unconstrained.
func (r AgeRange) IsAny() bool { return r.Kind == AgeRangeAny }

// Contains reports whether age satisfies the range. Bounds are inclusive.
func (r AgeRange) Contains(age int) bool {
	switch r.Kind {
	case AgeRangeBetween:
		return age >= r.Min && age <= r.Max
	case AgeRangePlus:
		return age >= r.Min
	default:
		return true
	}
}

// String renders the range in the same form ParseAgeRange accepts.
func (r AgeRange) String() string {
	switch r.Kind {
	case AgeRangeBetween:
		return fmt.Sprintf("%d-%d", r.Min, r.Max)
	case AgeRangePlus:
		return fmt.Sprintf("%d+", r.Min)
	default:
		return "any"
	}
}

// ParseAgeRange parses "any" (or ""), "26-35" and "45+" into an AgeRange.
// Any other input wraps ErrValidation.
func ParseAgeRange(s string) (AgeRange, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "any" || s == "all" {
		return AnyAge(), nil
	}

	if lo, ok := strings.CutSuffix(s, "+"); ok {
		n, err := parseAge(lo)
		if err != nil {
			return AgeRange{}, err
		}
		return AgePlus(n), nil
	}

	loRaw, hiRaw, ok := strings.Cut(s, "-")
	if !ok {
		return AgeRange{}, fmt.Errorf("%w: age range %q must look like 26-35 or 45+", ErrValidation, s)
	}
	lo, err := parseAge(loRaw)
	if err != nil {
		return AgeRange{}, err
	}
	hi, err := parseAge(hiRaw)
	if err != nil {
		return AgeRange{}, err
	}
	if lo > hi {
		return AgeRange{}, fmt.Errorf("%w: age range minimum %d exceeds maximum %d", ErrValidation, lo, hi)
	}
	return AgeBetween(lo, hi), nil
}

func parseAge(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q is not a valid age", ErrValidation, s)
	}
	return n, nil
}

// FilterCriteria is the viewer's current discovery filter selection.
// Nil distance bounds mean "no constraint".
type FilterCriteria struct {
	MinDistanceKm *float64
	MaxDistanceKm *float64
	AgeRange      AgeRange
}

// HasDistanceBounds reports whether either distance bound is set.
func (c FilterCriteria) HasDistanceBounds() bool {
	return c.MinDistanceKm != nil || c.MaxDistanceKm != nil
}

// DistanceWindow returns the inclusive [min, max] window, defaulting the
// missing bounds to 0 and +Inf.
func (c FilterCriteria) DistanceWindow() (lo, hi float64) {
	lo, hi = 0, math.Inf(1)
	if c.MinDistanceKm != nil {
		lo = *c.MinDistanceKm
	}
	if c.MaxDistanceKm != nil {
		hi = *c.MaxDistanceKm
	}
	return lo, hi
}

// Validate checks the criteria invariants: non-negative minimum distance,
// maximum not below minimum, well-formed age range.
func (c FilterCriteria) Validate() error {
	if c.MinDistanceKm != nil && (*c.MinDistanceKm < 0 || math.IsNaN(*c.MinDistanceKm)) {
		return fmt.Errorf("%w: min_distance_km must be a non-negative number", ErrValidation)
	}
	if c.MaxDistanceKm != nil && (*c.MaxDistanceKm < 0 || math.IsNaN(*c.MaxDistanceKm)) {
		return fmt.Errorf("%w: max_distance_km must be a non-negative number", ErrValidation)
	}
	if c.MinDistanceKm != nil && c.MaxDistanceKm != nil && *c.MinDistanceKm > *c.MaxDistanceKm {
		return fmt.Errorf("%w: min_distance_km must not exceed max_distance_km", ErrValidation)
	}
	switch c.AgeRange.Kind {
	case AgeRangeAny:
	case AgeRangeBetween:
		if c.AgeRange.Min < 0 || c.AgeRange.Min > c.AgeRange.Max {
			return fmt.Errorf("%w: invalid age range %s", ErrValidation, c.AgeRange)
		}
	case AgeRangePlus:
		if c.AgeRange.Min < 0 {
			return fmt.Errorf("%w: invalid age range %s", ErrValidation, c.AgeRange)
		}
	default:
		return fmt.Errorf("%w: unknown age range kind %d", ErrValidation, c.AgeRange.Kind)
	}
	return nil
}
