package common

import (
	"math"
	"math/rand"
	"time"
)

// GenerateReference builds a short human-readable reference, e.g. for
// withdrawal codes shown to support staff. Provider-facing ids use uuid.
func GenerateReference(prefix string) string {
	const characters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	result := make([]byte, 8)
	for i := range result {
		result[i] = characters[r.Intn(len(characters))]
	}
	return prefix + string(result)
}

// Round2 rounds a monetary amount to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
