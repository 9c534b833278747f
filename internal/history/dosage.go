package history

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseDosage reads the leading integer of a free-text dosage such as "500mg" or " 25 mg".
// Anything without a leading integer parses to 0.
func ParseDosage(raw string) int {
	trimmed := strings.TrimLeftFunc(raw, unicode.IsSpace)
	end := 0
	if end < len(trimmed) && (trimmed[end] == '+' || trimmed[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(trimmed) && trimmed[end] >= '0' && trimmed[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0
	}
	value, err := strconv.Atoi(trimmed[:end])
	if err != nil {
		return 0
	}
	return value
}
