package analysis

import (
	"math/rand/v2"
	"sort"

	"github.com/hazyhaar/quinimind/draw"
)

// Picks taken from each list before random fill.
const (
	hotPicks  = 3
	coldPicks = 2
)

// Source yields uniform integers in [0, n). *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// NewSource returns a PCG generator. A zero seed draws the seed from the
// runtime's entropy source.
func NewSource(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Predict composes six distinct numbers: up to three from hot in order, up
// to two from cold, then uniform random fill. The result is sorted.
// Deterministic for given hot and cold except for the random fill.
func Predict(hot, cold []int, rng Source) []int {
	var chosen [numbers]bool
	picks := make([]int, 0, draw.Size)

	take := func(list []int, max int) {
		taken := 0
		for _, n := range list {
			if taken == max || len(picks) == draw.Size {
				return
			}
			if !inRange(n) || chosen[n] {
				continue
			}
			chosen[n] = true
			picks = append(picks, n)
			taken++
		}
	}
	take(hot, hotPicks)
	take(cold, coldPicks)

	for len(picks) < draw.Size {
		n := draw.MinNumber + rng.IntN(numbers)
		if chosen[n] {
			continue
		}
		chosen[n] = true
		picks = append(picks, n)
	}

	sort.Ints(picks)
	return picks
}
