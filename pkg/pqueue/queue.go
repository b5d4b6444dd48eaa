package pqueue

import (
	"sort"
)

func WithOrderAsc() Option {
	return func(q *Queue) {
		q.order = orderAsc
	}
}

func WithOrderDesc() Option {
	return func(q *Queue) {
		q.order = orderDesc
	}
}

func WithCap(size uint) Option {
	return func(q *Queue) {
		q.cap = int(size)
	}
}

type Option func(*Queue)

type order uint8

const (
	orderAsc order = iota
	orderDesc
)

type item struct {
	value interface{}
	prior float64
}

// New returns a bounded priority queue. Items with equal priority keep their
// insertion order, and once the queue is full an item only gets in if it
// strictly beats the current tail.
func New(opts ...Option) *Queue {
	p := &Queue{order: orderAsc, cap: -1}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type Queue struct {
	order order
	cap   int
	items []item
}

func (q *Queue) PopAll() []interface{} {
	pulled := make([]interface{}, len(q.items))
	for i := range q.items {
		pulled[i] = q.items[i].value
	}
	q.items = q.items[:0]
	return pulled
}

func (q *Queue) Push(val interface{}, priority float64) {
	if q.cap == 0 {
		return
	}
	pos := sort.Search(len(q.items), func(i int) bool {
		return q.before(priority, q.items[i].prior)
	})
	if q.cap > 0 && pos >= q.cap {
		return
	}
	q.items = append(q.items, item{})
	copy(q.items[pos+1:], q.items[pos:])
	q.items[pos] = item{value: val, prior: priority}
	if q.cap > 0 && len(q.items) > q.cap {
		q.items = q.items[:q.cap]
	}
}

func (q *Queue) Len() int { return len(q.items) }

// before reports whether priority a must be placed strictly before b.
func (q *Queue) before(a, b float64) bool {
	if q.order == orderAsc {
		return a < b
	}
	return a > b
}
