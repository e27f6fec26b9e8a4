package utils

import (
	"strconv"
)

// FormatHours renders hours in their shortest form: 8, 7.5, 0.
func FormatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
