// Package luck maps ordered key tuples to reproducible values in [0,1).
//
// The key is encoded like a JavaScript array's toString (parts joined by
// ","), so a tuple such as ("seed", 3, -4) always hashes the same bytes
// regardless of platform or process.
package luck

import (
	"math"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Tags used to decorrelate independent draws for the same cell.
const (
	TagTotalCoins = "totalCoins"
)

const unit = 1.0 / (1 << 53)

// Luck returns a deterministic value in [0,1) for the ordered key parts.
func Luck(parts ...any) float64 {
	return Float(Key(parts...))
}

// Float hashes an already encoded key.
func Float(key string) float64 {
	h := xxhash.Sum64String(key)
	// Top 53 bits fill a float64 mantissa exactly; the result never reaches 1.
	return float64(h>>11) * unit
}

// Key canonically encodes the parts. Unsupported types panic: keys are built
// by code, never from user input.
func Key(parts ...any) string {
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteByte(',')
		}
		switch v := p.(type) {
		case string:
			b.WriteString(v)
		case int:
			b.WriteString(strconv.Itoa(v))
		case int32:
			b.WriteString(strconv.FormatInt(int64(v), 10))
		case int64:
			b.WriteString(strconv.FormatInt(v, 10))
		case uint32:
			b.WriteString(strconv.FormatUint(uint64(v), 10))
		case uint64:
			b.WriteString(strconv.FormatUint(v, 10))
		case float64:
			b.WriteString(formatFloat(v))
		case bool:
			b.WriteString(strconv.FormatBool(v))
		default:
			panic("luck: unsupported key part type")
		}
	}
	return b.String()
}

// Below reports whether the draw for parts falls under p (a Bernoulli trial).
func Below(p float64, parts ...any) bool {
	return Luck(parts...) < p
}

// Scaled returns floor(Luck(parts...) * n), a value in [0, n) for n > 0.
func Scaled(n int, parts ...any) int {
	if n <= 0 {
		return 0
	}
	return int(math.Floor(Luck(parts...) * float64(n)))
}

func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		// -0 prints as 0, like the reference stringification.
		return "0"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
