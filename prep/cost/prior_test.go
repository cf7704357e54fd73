package cost

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNaturalNumbersCodeLengthMonotone(t *testing.T) {
	req := require.New(t)
	prev := NaturalNumbersCodeLength(1)
	for n := 2; n <= 1000; n++ {
		cur := NaturalNumbersCodeLength(n)
		req.Greater(cur, prev, "log* must be strictly increasing at n=%d", n)
		prev = cur
	}
}

func TestNaturalNumbersCodeLengthPanicsOnNonPositive(t *testing.T) {
	req := require.New(t)
	req.Panics(func() { NaturalNumbersCodeLength(0) })
	req.Panics(func() { NaturalNumbersCodeLength(-1) })
}

func TestLnFactorialMatchesDirectProduct(t *testing.T) {
	req := require.New(t)
	for n := 0; n <= 10; n++ {
		want := 0.0
		for i := 2; i <= n; i++ {
			want += math.Log(float64(i))
		}
		req.InDelta(want, LnFactorial(n), 1e-9)
	}
}

func TestLnFactorialBeyondCacheUsesLgamma(t *testing.T) {
	req := require.New(t)
	got := LnFactorial(500)
	want, _ := math.Lgamma(501)
	req.InDelta(want, got, 1e-6)
}

func TestLnBellBaseCases(t *testing.T) {
	req := require.New(t)
	req.Equal(0.0, LnBell(0, 3))
	req.True(math.IsInf(LnBell(5, 0), 1))
}

func TestLnBellKEqualsNIsSingleGrouping(t *testing.T) {
	req := require.New(t)
	// Stirling2(n, n) == 1: exactly one way to put n items into n
	// non-empty singleton groups.
	req.InDelta(0.0, LnBell(4, 4), 1e-9)
}
