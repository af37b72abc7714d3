package engine

import "golang.org/x/exp/constraints"

// Key-sequence generators used to drive engine and index exercises with
// predictable data.

// SequentialKeys returns n ascending keys starting at 1.
func SequentialKeys[T constraints.Integer](n int) []T {
	keys := make([]T, n)
	for i := range keys {
		keys[i] = T(i + 1)
	}
	return keys
}

// ScatteredKeys returns a deterministic permutation of 1..n, scattering
// neighbouring values so that inserts exercise splits on both ends.
func ScatteredKeys[T constraints.Integer](n int) []T {
	stride := 1
	for _, p := range []int{61, 37, 17, 7, 3} {
		if n%p != 0 {
			stride = p
			break
		}
	}
	keys := make([]T, 0, n)
	for i := 0; i < n; i++ {
		keys = append(keys, T((i*stride)%n+1))
	}
	return keys
}
