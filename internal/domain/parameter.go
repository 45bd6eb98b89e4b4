package domain

import (
	"strconv"
	"strings"
)

const (
	fromMarker = "_From_"
	toMarker   = "_To_"
	unitMarker = "_Unit_"
)

// ParameterRange is the per-parameter range annotation edited in the builder form.
// A nil bound means the input was left empty.
type ParameterRange struct {
	Min        *float64 `json:"min"`
	Max        *float64 `json:"max"`
	AddRange   bool     `json:"add_range"`
	Unit       string   `json:"unit"`
	RangeError string   `json:"range_error,omitempty"`
	UnitError  string   `json:"unit_error,omitempty"`
}

func DefaultRange() *ParameterRange {
	return &ParameterRange{
		Min:  Float(DefaultRangeMin),
		Max:  Float(DefaultRangeMax),
		Unit: "",
	}
}

// Valid reports whether the bounds can be used: both present and Min < Max.
func (r *ParameterRange) Valid() bool {
	return r.Min != nil && r.Max != nil && *r.Min < *r.Max
}

// Annotate renders the parameter the way the backend stores it:
// NAME or NAME_From_<min>_To_<max>[_Unit_<unit>].
func (r *ParameterRange) Annotate(name string) string {
	if r == nil || !r.AddRange || r.Min == nil || r.Max == nil {
		return name
	}

	var b strings.Builder
	b.WriteString(name)
	b.WriteString(fromMarker)
	b.WriteString(formatBound(*r.Min))
	b.WriteString(toMarker)
	b.WriteString(formatBound(*r.Max))

	if unit := strings.TrimSpace(r.Unit); unit != "" {
		b.WriteString(unitMarker)
		b.WriteString(unit)
	}

	return b.String()
}

// ParseParameter splits an annotated parameter back into its name and range.
// Plain names come back with a nil range.
func ParseParameter(s string) (string, *ParameterRange) {
	i := strings.LastIndex(s, fromMarker)
	if i <= 0 {
		return s, nil
	}

	name, rest := s[:i], s[i+len(fromMarker):]

	j := strings.Index(rest, toMarker)
	if j < 0 {
		return s, nil
	}

	minStr, rest := rest[:j], rest[j+len(toMarker):]
	maxStr, unit := rest, ""
	if k := strings.Index(rest, unitMarker); k >= 0 {
		maxStr, unit = rest[:k], rest[k+len(unitMarker):]
	}

	lo, err := strconv.ParseFloat(minStr, 64)
	if err != nil {
		return s, nil
	}
	hi, err := strconv.ParseFloat(maxStr, 64)
	if err != nil {
		return s, nil
	}

	return name, &ParameterRange{Min: &lo, Max: &hi, AddRange: true, Unit: unit}
}

// DisplayName hides the EMS_NEW_ prefix the catalog uses for newer points.
func DisplayName(param string) string {
	return strings.TrimPrefix(param, emsPrefix)
}

func JoinAdditionalInfo(tags []string) string {
	return strings.Join(tags, additionalInfoSep)
}

func SplitAdditionalInfo(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, additionalInfoSep)
}

func Float(v float64) *float64 {
	return &v
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
