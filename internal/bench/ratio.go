package bench

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidRatio reports a malformed workload-mix ratio.
var ErrInvalidRatio = errors.New("bench: invalid ratio")

// Ratio is a workload mix expressed as two nonnegative integers "a:b".
type Ratio struct {
	A int
	B int
}

// ParseRatio parses "a:b" where a and b are nonnegative integers.
func ParseRatio(s string) (Ratio, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return Ratio{}, fmt.Errorf("%w: %q (want A:B)", ErrInvalidRatio, s)
	}

	a, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Ratio{}, fmt.Errorf("%w: %q: %v", ErrInvalidRatio, s, err)
	}
	b, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Ratio{}, fmt.Errorf("%w: %q: %v", ErrInvalidRatio, s, err)
	}
	if a < 0 || b < 0 {
		return Ratio{}, fmt.Errorf("%w: %q (parts must be nonnegative)", ErrInvalidRatio, s)
	}
	return Ratio{A: a, B: b}, nil
}

// Probability returns a/(a+b), the chance of the first outcome.
// The degenerate 0:0 ratio yields probability 0.
func (r Ratio) Probability() float64 {
	total := r.A + r.B
	if total == 0 {
		return 0
	}
	return float64(r.A) / float64(total)
}

// Split divides n into a first-outcome count (floored) and a remainder.
// The second count absorbs the rounding remainder. 0:0 yields (0, n).
func (r Ratio) Split(n int) (first, second int) {
	total := r.A + r.B
	if total == 0 {
		return 0, n
	}
	first = n * r.A / total
	return first, n - first
}

func (r Ratio) String() string {
	return fmt.Sprintf("%d:%d", r.A, r.B)
}
