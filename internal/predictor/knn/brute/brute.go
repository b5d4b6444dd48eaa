package brute

import (
	"fmt"
	"sync"

	"github.com/go-sod/smote/internal/dataset"
	"github.com/go-sod/smote/internal/geom"
	"github.com/go-sod/smote/internal/predictor"
	"github.com/go-sod/smote/pkg/pqueue"
)

var _ predictor.KNNAlg = (*brute)(nil)

// NewBruteAlg returns a linear scan nearest neighbour index. Every query is
// O(n); neighbours at equal distance come back in reference order.
func NewBruteAlg(distFn geom.DistanceFn) *brute {
	return &brute{distFunc: distFn}
}

type brute struct {
	mtx      sync.RWMutex
	data     []dataset.Example
	distFunc geom.DistanceFn
}

func (b *brute) Reset() {
	b.mtx.Lock()
	b.data = nil
	b.mtx.Unlock()
}

func (b *brute) Len() int {
	b.mtx.RLock()
	defer b.mtx.RUnlock()
	return len(b.data)
}

// Build replaces the reference set.
func (b *brute) Build(data ...dataset.Example) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.data = make([]dataset.Example, len(data))
	copy(b.data, data)
}

// KNN returns up to k examples ordered by ascending distance to vec. When k is
// at least the size of the reference set the whole set comes back sorted.
func (b *brute) KNN(vec []float64, k int) ([]dataset.Example, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	b.mtx.RLock()
	list := b.data
	b.mtx.RUnlock()
	if len(list) == 0 {
		return nil, fmt.Errorf("knn on empty reference set")
	}

	pq := pqueue.New(pqueue.WithCap(uint(k)))
	for _, item := range list {
		distance, err := b.distFunc(vec, item.Values)
		if err != nil {
			return nil, fmt.Errorf(
				"unable to compute distance between %v and %v: %w",
				vec, item.Values,
				err,
			)
		}
		pq.Push(item, distance)
	}
	knn := make([]dataset.Example, pq.Len())
	for i, pData := range pq.PopAll() {
		knn[i] = pData.(dataset.Example)
	}
	return knn, nil
}
