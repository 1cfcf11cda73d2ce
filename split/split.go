package split

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/revelaction/absaset/absa"
)

// DefaultSeed is the seed used when none is configured.
const DefaultSeed int64 = 1234

// ErrInvalidFraction is returned for split fractions outside the accepted
// range.
var ErrInvalidFraction = errors.New("invalid split fraction")

// TrainTest shuffles items with a generator seeded by seed and holds out
// ceil(fraction*len(items)) of them. fraction must be in (0, 1). The same
// items and seed always give the same split. items is not modified.
func TrainTest[T any](items []T, fraction float64, seed int64) ([]T, []T, error) {
	if fraction <= 0 || fraction >= 1 || math.IsNaN(fraction) {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidFraction, fraction)
	}

	n := len(items)
	nTest := int(math.Ceil(fraction * float64(n)))

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)

	train := make([]T, 0, n-nTest)
	test := make([]T, 0, nTest)
	for i, p := range perm {
		if i < nTest {
			test = append(test, items[p])
			continue
		}
		train = append(train, items[p])
	}

	return train, test, nil
}

// GenerateDev fills the dev partition of p when the corpus has none.
//
// With a non zero fraction, dev is carved out of train. With a zero
// fraction, dev is the test partition. A present dev, or an absent train,
// leaves p unchanged.
func GenerateDev[T any](p absa.Partitions[T], fraction float64, seed int64) (absa.Partitions[T], error) {
	if fraction < 0 || fraction >= 1 || math.IsNaN(fraction) {
		return p, fmt.Errorf("%w: %v", ErrInvalidFraction, fraction)
	}

	if p.Dev.IsPresent() {
		return p, nil
	}

	if fraction == 0 {
		p.Dev = p.Test
		return p, nil
	}

	if !p.Train.IsPresent() {
		return p, nil
	}

	train, dev, err := TrainTest(p.Train.Items(), fraction, seed)
	if err != nil {
		return p, err
	}

	p.Train = absa.Present(train)
	p.Dev = absa.Present(dev)
	return p, nil
}
