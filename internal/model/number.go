package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Number is a float that also accepts its JSON form as a string ("20", "1,5", "").
// Form-entered values were historically stored as strings.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*n = 0
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f, ok := parseDecimal(s)
		if !ok && strings.TrimSpace(s) != "" {
			return fmt.Errorf("invalid number %q", s)
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// Float64 returns the value as a float64.
func (n Number) Float64() float64 { return float64(n) }

// GradeValue is the raw mark typed by the teacher. It is kept as text so that
// non-numeric marks ("abs", "disp.") survive; Float extracts the numeric part.
type GradeValue string

// UnmarshalJSON accepts strings, numbers and null.
func (v *GradeValue) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	switch {
	case raw == "null":
		*v = ""
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = GradeValue(s)
	default:
		var f json.Number
		if err := json.Unmarshal(b, &f); err != nil {
			return err
		}
		*v = GradeValue(f.String())
	}
	return nil
}

// Float parses the mark. Both "12.5" and "12,5" are accepted.
func (v GradeValue) Float() (float64, bool) {
	return parseDecimal(string(v))
}

func parseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
