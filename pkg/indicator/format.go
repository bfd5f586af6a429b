package indicator

import "strconv"

// FormatValue renders a value with the shortest exact representation.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
