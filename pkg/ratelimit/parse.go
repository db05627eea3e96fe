package ratelimit

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseBandwidth parses a limit such as "512K", "10M" or "1G" into bytes per
// second. Units are powers of 1024; a bare number is bytes. "" and "0" mean
// no limit.
func ParseBandwidth(s string) (int64, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	s = strings.TrimSuffix(strings.TrimSuffix(s, "/S"), "B")
	if s == "" {
		return 0, nil
	}

	multiplier := int64(1)
	switch s[len(s)-1] {
	case 'K':
		multiplier = 1 << 10
	case 'M':
		multiplier = 1 << 20
	case 'G':
		multiplier = 1 << 30
	}
	if multiplier > 1 {
		s = s[:len(s)-1]
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid bandwidth limit: %q", s)
	}

	return int64(value * float64(multiplier)), nil
}
