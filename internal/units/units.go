// Package units converts between byte counts and human-readable size strings.
package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrFormat is returned by Machinize for strings that do not look like
// "<number> <unit>" with a unit from the supported ladder.
var ErrFormat = errors.New("not a recognized size string")

//nolint:gochecknoglobals
var sizeUnits = []string{"Bytes", "kB", "MB", "GB", "TB", "PB"}

const unitStep = 1024.0

// Humanize formats the given byte count using a fixed 1024-based unit
// ladder (Bytes, kB, MB, GB, TB, PB) with one decimal of precision.
func Humanize(b int64) string {
	f := float64(b)

	for i := 0; i < len(sizeUnits)-1; i++ {
		if f < unitStep {
			return fmt.Sprintf("%.1f %v", f, sizeUnits[i])
		}

		f /= unitStep
	}

	return fmt.Sprintf("%.1f %v", f, sizeUnits[len(sizeUnits)-1])
}

// Machinize converts a size string produced by Humanize back to a byte
// count. A bare numeric value is passed through unchanged, so inputs
// that are already machine-form parse idempotently. The Humanize round
// trip is lossy: the original value is recovered only within the
// precision of the selected unit.
func Machinize(s string) (float64, error) {
	parts := strings.Fields(s)

	switch len(parts) {
	case 1:
		v, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0, errors.Wrapf(ErrFormat, "%q", s)
		}

		return v, nil

	case 2:
		v, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0, errors.Wrapf(ErrFormat, "%q", s)
		}

		for i, u := range sizeUnits {
			if u == parts[1] {
				return v * math.Pow(unitStep, float64(i)), nil
			}
		}

		return 0, errors.Wrapf(ErrFormat, "unknown unit %q", parts[1])

	default:
		return 0, errors.Wrapf(ErrFormat, "%q", s)
	}
}
