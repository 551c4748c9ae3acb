package analysis

import "math"

// maxExactInt is the largest magnitude at which every integer has an exact float64.
const maxExactInt = 1 << 53

// numeric reports whether v is an integer or float. Booleans are not numeric.
func numeric(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	default:
		return false
	}
}

// normalize canonicalizes a parameter value for reporting: every integer width becomes int64
// (uint64 above MaxInt64 is kept as is) and float32 becomes float64.
// Non-scalar values (lists, maps) report false.
func normalize(v any) (any, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return normalizeUint(uint64(n)), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return normalizeUint(n), true
	case float32:
		return float64(n), true
	case float64, string, bool:
		return n, true
	default:
		return nil, false
	}
}

func normalizeUint(n uint64) any {
	if n > math.MaxInt64 {
		return n
	}
	return int64(n)
}

// groupKey returns the map key a parameter value is grouped under.
// Integers within float64's exact range share a key with the equal float, so 2 and 2.0 group
// together; larger integers keep their exact value.
func groupKey(v any) (any, bool) {
	n, ok := normalize(v)
	if !ok {
		return nil, false
	}
	if i, ok := n.(int64); ok && i >= -maxExactInt && i <= maxExactInt {
		return float64(i), true
	}
	return n, true
}

type (
	absentCell struct{}
	nanCell    struct{}
)

// cellKey returns a comparable key for a range-table cell. Absent cells and NaN each compare
// equal to themselves.
func cellKey(v any) any {
	if v == nil {
		return absentCell{}
	}
	if f, ok := v.(float64); ok && math.IsNaN(f) {
		return nanCell{}
	}
	key, _ := groupKey(v)
	return key
}
