package prepmem

import "github.com/KhiopsML/khiops-sub024/prep"

// QuantileBuilder is an in-memory prep.QuantileBuilder over a sample of
// known size: it divides the sample into equal-sized partiles for
// whatever granularity is requested, with no actual value lookup
// behind it (a real dictionary-backed builder would instead partition
// sorted/frequency-ordered values).
type QuantileBuilder struct {
	SampleSize int

	current int
}

// ComputeQuantiles returns 2^granularity partiles (capped at
// SampleSize), each an evenly-sized slice of the sample.
func (q *QuantileBuilder) ComputeQuantiles(granularity int) []prep.Partile {
	k := 1 << uint(granularity)
	if k > q.SampleSize {
		k = q.SampleSize
	}
	if k < 1 {
		k = 1
	}
	q.current = k

	out := make([]prep.Partile, k)
	for i := 0; i < k; i++ {
		out[i] = prep.Partile{
			LastIndex:       q.IntervalLastIndex(i),
			FirstValueIndex: q.GroupFirstValueIndex(i),
		}
	}
	return out
}

// IntervalLastIndex returns the sample index ending the k-th interval
// of the most recent ComputeQuantiles call.
func (q *QuantileBuilder) IntervalLastIndex(k int) int {
	if q.current == 0 {
		return q.SampleSize - 1
	}
	return (k+1)*q.SampleSize/q.current - 1
}

// GroupFirstValueIndex returns the sample index starting the k-th
// group of the most recent ComputeQuantiles call.
func (q *QuantileBuilder) GroupFirstValueIndex(k int) int {
	if q.current == 0 {
		return 0
	}
	return k * q.SampleSize / q.current
}
