package clearance

import (
	"fmt"
	"math"
	"strconv"
)

// ParseLevel extracts a clearance level from a raw value. Records and
// page metadata store levels as either numbers or decorated strings
// ("Level 5 Restricted"); for strings the first run of digits is taken.
// Returns false if the value is nil, negative, or contains no digits.
func ParseLevel(value interface{}) (Level, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case Level:
		if v < 0 {
			return 0, false
		}
		return v, true
	case int:
		if v < 0 {
			return 0, false
		}
		return Level(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return Level(v), true
	case uint64:
		return Level(v), true
	case float64:
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return Level(v), true
	case string:
		return parseDigits(v)
	default:
		return parseDigits(fmt.Sprint(v))
	}
}

// parseDigits finds the first run of decimal digits in s
func parseDigits(s string) (Level, bool) {
	start := -1
	for i := 0; i < len(s); i++ {
		isDigit := s[i] >= '0' && s[i] <= '9'
		if isDigit && start < 0 {
			start = i
		}
		if !isDigit && start >= 0 {
			return atoiLevel(s[start:i])
		}
	}
	if start >= 0 {
		return atoiLevel(s[start:])
	}
	return 0, false
}

func atoiLevel(digits string) (Level, bool) {
	n, err := strconv.Atoi(digits)
	if err != nil {
		// Only possible on overflow since the input is all digits
		return 0, false
	}
	return Level(n), true
}
