package concurrent

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkerPool(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	workers := NewWorkerPool[int, int](3, len(items))
	for _, it := range items {
		workers.AddJob(it)
	}
	workers.Close()
	workers.Start(func(x int) int { return x * x })
	workers.Wait()

	got := make([]int, 0, len(items))
	for res := range workers.CollectResults() {
		got = append(got, res)
	}
	sort.Ints(got)
	assert.Equal(t, []int{1, 4, 9, 16, 25, 36, 49, 64, 81, 100}, got)
}

func TestWorkerPoolEmpty(t *testing.T) {
	workers := NewWorkerPool[string, error](0, 0)
	workers.Close()
	workers.Start(func(string) error { return nil })
	workers.Wait()

	n := 0
	for range workers.CollectResults() {
		n++
	}
	assert.Zero(t, n)
}
