package anim

// Pool is a free list of reusable objects. After warmup, Get and Put do not allocate.
// A Pool is owned by one controller and is not safe for concurrent use.
type Pool[T any] struct {
	free    []*T
	reset   func(*T)
	created int
}

// NewPool creates a pool. reset, if non-nil, is applied to every object returned by Get.
func NewPool[T any](reset func(*T)) *Pool[T] {
	return &Pool[T]{reset: reset}
}

// Get returns a reset object, allocating only when the free list is empty.
func (p *Pool[T]) Get() *T {
	var obj *T
	if n := len(p.free); n > 0 {
		obj = p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
	} else {
		obj = new(T)
		p.created++
	}
	if p.reset != nil {
		p.reset(obj)
	}
	return obj
}

// Put returns obj to the pool. Nil is ignored.
func (p *Pool[T]) Put(obj *T) {
	if obj == nil {
		return
	}
	p.free = append(p.free, obj)
}

// Warmup pre-allocates objects so that the first count Gets do not allocate.
func (p *Pool[T]) Warmup(count int) {
	for len(p.free) < count {
		p.free = append(p.free, new(T))
		p.created++
	}
}

// Free returns the number of idle objects.
func (p *Pool[T]) Free() int {
	return len(p.free)
}

// Created returns the number of objects the pool has allocated.
func (p *Pool[T]) Created() int {
	return p.created
}

// Outstanding returns the number of objects handed out and not yet returned.
func (p *Pool[T]) Outstanding() int {
	return p.created - len(p.free)
}
