package domain

import (
	"fmt"
	"strings"
)

// ValidationError marks input that is rejected before any persistence call.
type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

// RepSchemeKind type for the three target-performance encodings
type RepSchemeKind string

const (
	RepSchemeFixed   RepSchemeKind = "fixed"   // Same rep count every set
	RepSchemeTimed   RepSchemeKind = "timed"   // Hold duration, same every set
	RepSchemePyramid RepSchemeKind = "pyramid" // One value per set, ascending or descending
)

// pyramidDelimiter joins per-set values into the flat stored form, e.g. "12 - 10 - 8".
const pyramidDelimiter = " - "

// RepScheme is the per-set target of a plan entry. For fixed and timed
// schemes Values holds a single element; for pyramid schemes it holds one
// value per set, ordered from set 1 to set N.
type RepScheme struct {
	Kind   RepSchemeKind `bson:"kind" json:"kind"`
	Values []string      `bson:"values" json:"values"`
}

// NewFixedScheme returns a fixed-rep scheme, e.g. "12" for every set.
func NewFixedScheme(value string) RepScheme {
	return RepScheme{Kind: RepSchemeFixed, Values: []string{value}}
}

// NewTimedScheme returns a timed-hold scheme. The stored representation is
// identical to a fixed scheme; only the unit shown to the caller differs.
func NewTimedScheme(value string) RepScheme {
	return RepScheme{Kind: RepSchemeTimed, Values: []string{value}}
}

// NewPyramidScheme returns a pyramid scheme with one value per set.
func NewPyramidScheme(values ...string) RepScheme {
	return RepScheme{Kind: RepSchemePyramid, Values: values}
}

// Encode flattens the scheme into its textual representation. Pyramid values
// are joined with the delimiter; the value count must match setCount.
func (s RepScheme) Encode(setCount int) (string, error) {
	switch s.Kind {
	case RepSchemeFixed, RepSchemeTimed:
		if len(s.Values) != 1 {
			return "", ValidationError(fmt.Sprintf("%s scheme requires exactly one value, got %d", s.Kind, len(s.Values)))
		}
		return s.Values[0], nil
	case RepSchemePyramid:
		if len(s.Values) != setCount {
			return "", ValidationError(fmt.Sprintf("pyramid scheme has %d values for %d sets", len(s.Values), setCount))
		}
		return strings.Join(s.Values, pyramidDelimiter), nil
	default:
		return "", ValidationError(fmt.Sprintf("unknown rep scheme kind %q", s.Kind))
	}
}

// DecodeRepScheme parses the flat textual representation back into a scheme.
// For pyramid schemes the raw value is split on the delimiter and the
// resulting count must equal setCount.
func DecodeRepScheme(raw string, kind RepSchemeKind, setCount int) (RepScheme, error) {
	switch kind {
	case RepSchemeFixed, RepSchemeTimed:
		return RepScheme{Kind: kind, Values: []string{raw}}, nil
	case RepSchemePyramid:
		values := strings.Split(raw, pyramidDelimiter)
		if len(values) != setCount {
			return RepScheme{}, ValidationError(fmt.Sprintf("pyramid value %q decodes to %d values for %d sets", raw, len(values), setCount))
		}
		return RepScheme{Kind: kind, Values: values}, nil
	default:
		return RepScheme{}, ValidationError(fmt.Sprintf("unknown rep scheme kind %q", kind))
	}
}

// Validate checks the scheme against the number of sets it will be performed for.
func (s RepScheme) Validate(setCount int) error {
	_, err := s.Encode(setCount)
	return err
}
