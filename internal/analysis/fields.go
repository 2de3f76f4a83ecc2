package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"fortio.org/safecast"
	"golang.org/x/text/cases"
)

// lookupFolded returns the first key present in obj. Exact matches win; when
// none match, keys are compared case-folded so "Line" and "LÍNEA" resolve too.
func lookupFolded(obj map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			return v, true
		}
	}

	// cases.Caser is stateful and must not be shared between goroutines
	fold := cases.Fold()
	folded := make(map[string]any, len(obj))
	for k, v := range obj {
		fk := fold.String(k)
		if _, seen := folded[fk]; !seen {
			folded[fk] = v
		}
	}
	for _, k := range keys {
		if v, ok := folded[fold.String(k)]; ok {
			return v, true
		}
	}
	return nil, false
}

// toInt converts a decoded JSON number to a non-negative int
func toInt(v any, field string) (int, error) {
	var n int
	switch num := v.(type) {
	case json.Number:
		if i, err := num.Int64(); err == nil {
			if n, err = safecast.Conv[int](i); err != nil {
				return 0, invalidField(field, "an integer in range")
			}
			break
		}
		f, err := num.Float64()
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, invalidField(field, "an integer")
		}
		if n, err = floatToInt(f, field); err != nil {
			return 0, err
		}
	case float64:
		var err error
		if n, err = floatToInt(num, field); err != nil {
			return 0, err
		}
	case int:
		n = num
	case int64:
		var err error
		if n, err = safecast.Conv[int](num); err != nil {
			return 0, invalidField(field, "an integer in range")
		}
	case string:
		i, err := strconv.Atoi(num)
		if err != nil {
			return 0, invalidField(field, "an integer")
		}
		n = i
	default:
		return 0, invalidField(field, "an integer")
	}

	if n < 0 {
		return 0, invalidField(field, "a non-negative integer")
	}
	return n, nil
}

// toString accepts JSON strings and renders numbers and booleans as text
func toString(v any, field string) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case json.Number:
		return s.String(), nil
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(s), nil
	case nil:
		return "", invalidField(field, "a string")
	default:
		return "", invalidField(field, fmt.Sprintf("a string, got %T", v))
	}
}

// floatToInt accepts whole numbers only; magnitudes beyond int are rejected
// rather than wrapped.
func floatToInt(f float64, field string) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, invalidField(field, "an integer in range")
	}
	if f != math.Trunc(f) {
		return 0, invalidField(field, "an integer")
	}
	n, err := safecast.Convert[int](f)
	if err != nil {
		return 0, invalidField(field, "an integer in range")
	}
	return n, nil
}
