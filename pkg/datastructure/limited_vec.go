package datastructure

import "errors"

const DefaultMaxArenaSize = 5_000_000

var ErrOutOfMemory = errors.New("search arena exceeded its size limit")

// LimitedVec is a growable slice that refuses to grow past maxSize.
type LimitedVec[T any] struct {
	inner   []T
	maxSize int
}

// NewLimitedVec uses DefaultMaxArenaSize when maxSize is not positive.
func NewLimitedVec[T any](maxSize int) *LimitedVec[T] {
	if maxSize <= 0 {
		maxSize = DefaultMaxArenaSize
	}
	return &LimitedVec[T]{
		inner:   make([]T, 0, min(maxSize, 1024)),
		maxSize: maxSize,
	}
}

func (v *LimitedVec[T]) Push(item T) error {
	if len(v.inner) >= v.maxSize {
		return ErrOutOfMemory
	}
	v.inner = append(v.inner, item)
	return nil
}

func (v *LimitedVec[T]) Len() int {
	return len(v.inner)
}

// At returns a pointer into the backing slice, valid until the next Push.
func (v *LimitedVec[T]) At(i int) *T {
	return &v.inner[i]
}

func (v *LimitedVec[T]) Inner() []T {
	return v.inner
}
