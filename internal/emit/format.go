// Package emit serializes occupied clusters into the Jmol .cell file and the
// MEEP/MPB .ctl control file.
package emit

import (
	"strconv"
	"strings"
)

// FormatNumber renders v with six significant digits and no trailing zeros,
// the default rendering the downstream simulators' example inputs use
// (0.114943, 1e-05, -0).
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// formatDecimal is FormatNumber with a forced fractional part, for
// parameters the control files spell as decimals (thickness 1.0).
func formatDecimal(v float64) string {
	s := FormatNumber(v)
	if strings.ContainsAny(s, ".eEn") {
		return s
	}
	return s + ".0"
}
