package random

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Shuffle performs a cryptographically secure Fisher-Yates shuffle of the
// slice in place.
func Shuffle[T any](slice []T) error {
	n := len(slice)
	for i := n - 1; i > 0; i-- {
		jBig, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return fmt.Errorf("failed to generate random number: %w", err)
		}
		j := int(jBig.Int64())
		slice[i], slice[j] = slice[j], slice[i]
	}
	return nil
}

// Sample returns n elements drawn uniformly without replacement. The input
// slice is not modified. When n >= len(slice), a shuffled copy of the whole
// slice is returned.
func Sample[T any](slice []T, n int) ([]T, error) {
	if n <= 0 {
		return []T{}, nil
	}
	shuffled := make([]T, len(slice))
	copy(shuffled, slice)
	if err := Shuffle(shuffled); err != nil {
		return nil, err
	}
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n], nil
}
