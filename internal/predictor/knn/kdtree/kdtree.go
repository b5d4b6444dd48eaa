package kdtree

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/go-sod/smote/internal/dataset"
	"github.com/go-sod/smote/internal/geom"
	"github.com/go-sod/smote/internal/predictor"
)

var _ predictor.KNNAlg = (*Tree)(nil)

// New returns a k-d tree index. Queries return the same neighbours in the same
// order as a linear scan: ascending distance, ties in reference order.
//
// The distance function must not decrease when a single attribute difference
// grows. The euclidean, manhattan and chebyshev functions and their
// normalized variants qualify.
func New(distFn geom.DistanceFn) *Tree {
	return &Tree{distFn: distFn}
}

type item struct {
	idx     int
	example dataset.Example
}

type node struct {
	Key   item
	dim   int
	Left  *node
	Right *node
}

type Tree struct {
	mtx    sync.RWMutex
	root   *node
	items  []item
	scan   bool
	distFn geom.DistanceFn
}

func (t *Tree) Reset() {
	t.mtx.Lock()
	t.root = nil
	t.items = nil
	t.scan = false
	t.mtx.Unlock()
}

func (t *Tree) Len() int {
	t.mtx.RLock()
	defer t.mtx.RUnlock()
	return len(t.items)
}

// Build replaces the reference set. A reference set with unknown values is
// searched linearly, since an unknown value gives no bound on the distance.
func (t *Tree) Build(data ...dataset.Example) {
	items := make([]item, len(data))
	scan := false
	for i, e := range data {
		items[i] = item{idx: i, example: e}
		for _, v := range e.Values {
			if dataset.IsMissing(v) {
				scan = true
			}
		}
	}

	var root *node
	if !scan && len(items) > 0 && len(items[0].example.Values) > 0 {
		points := make([]item, len(items))
		copy(points, items)
		root = buildTreeRecursive(points, 0)
	} else {
		scan = true
	}

	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.items = items
	t.root = root
	t.scan = scan
}

type sortPoints struct {
	dim    int
	points []item
}

func (b *sortPoints) Len() int {
	return len(b.points)
}

func (b *sortPoints) Less(i, j int) bool {
	return b.points[i].example.Values[b.dim] < b.points[j].example.Values[b.dim]
}

func (b *sortPoints) Swap(i, j int) {
	b.points[i], b.points[j] = b.points[j], b.points[i]
}

func buildTreeRecursive(points []item, dim int) *node {
	if len(points) == 0 {
		return nil
	}
	if len(points) == 1 {
		return &node{Key: points[0], dim: dim}
	}

	sort.Stable(&sortPoints{dim: dim, points: points})
	mid := len(points) / 2
	nextDim := (dim + 1) % len(points[mid].example.Values)
	return &node{
		Key:   points[mid],
		dim:   dim,
		Left:  buildTreeRecursive(points[:mid], nextDim),
		Right: buildTreeRecursive(points[mid+1:], nextDim),
	}
}

type neighbor struct {
	item
	distance float64
}

// candidates keeps the k best neighbours seen so far, ordered by distance and
// then by reference position.
type candidates struct {
	k    int
	list []neighbor
}

func (c *candidates) worst() float64 {
	if len(c.list) < c.k {
		return math.Inf(1)
	}
	return c.list[len(c.list)-1].distance
}

func (c *candidates) push(n neighbor) {
	pos := sort.Search(len(c.list), func(i int) bool {
		o := c.list[i]
		return o.distance > n.distance || (o.distance == n.distance && o.idx > n.idx)
	})
	if pos >= c.k {
		return
	}
	if len(c.list) < c.k {
		c.list = append(c.list, neighbor{})
	}
	copy(c.list[pos+1:], c.list[pos:])
	c.list[pos] = n
}

// KNN returns up to k examples ordered by ascending distance to vec.
func (t *Tree) KNN(vec []float64, k int) ([]dataset.Example, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	t.mtx.RLock()
	root, items, scan := t.root, t.items, t.scan
	t.mtx.RUnlock()
	if len(items) == 0 {
		return nil, fmt.Errorf("knn on empty reference set")
	}
	if len(vec) != len(items[0].example.Values) {
		return nil, geom.ErrDimNotEqual
	}

	c := &candidates{k: k}
	if scan {
		for _, it := range items {
			d, err := t.distance(vec, it)
			if err != nil {
				return nil, err
			}
			c.push(neighbor{item: it, distance: d})
		}
	} else {
		plane := make([]float64, len(vec))
		copy(plane, vec)
		if err := t.knn(vec, plane, root, c); err != nil {
			return nil, err
		}
	}

	out := make([]dataset.Example, len(c.list))
	for i, n := range c.list {
		out[i] = n.example
	}
	return out, nil
}

func (t *Tree) knn(vec, plane []float64, n *node, c *candidates) error {
	if n == nil {
		return nil
	}
	d, err := t.distance(vec, n.Key)
	if err != nil {
		return err
	}
	c.push(neighbor{item: n.Key, distance: d})

	near, far := n.Left, n.Right
	if vec[n.dim] >= n.Key.example.Values[n.dim] {
		near, far = n.Right, n.Left
	}
	if err := t.knn(vec, plane, near, c); err != nil {
		return err
	}
	if far == nil {
		return nil
	}
	bound, err := t.distanceForDimension(vec, plane, n.Key, n.dim)
	if err != nil {
		return err
	}
	if bound <= c.worst() {
		return t.knn(vec, plane, far, c)
	}
	return nil
}

func (t *Tree) distance(vec []float64, it item) (float64, error) {
	d, err := t.distFn(vec, it.example.Values)
	if err != nil {
		return 0, fmt.Errorf(
			"unable to compute distance between %v and %v: %w",
			vec, it.example.Values,
			err,
		)
	}
	return d, nil
}

// distanceForDimension is the distance between vec and vec moved onto the
// splitting plane of key, a lower bound for everything on the far side.
func (t *Tree) distanceForDimension(vec, plane []float64, key item, dim int) (float64, error) {
	plane[dim] = key.example.Values[dim]
	d, err := t.distFn(vec, plane)
	plane[dim] = vec[dim]
	return d, err
}
