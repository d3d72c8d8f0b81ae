package datastructure

// MinHeap is a binary heap ordered by less.
type MinHeap[T any] struct {
	heap []T
	less func(a, b T) bool
}

func NewMinHeap[T any](less func(a, b T) bool) *MinHeap[T] {
	return &MinHeap[T]{
		heap: make([]T, 0),
		less: less,
	}
}

func (h *MinHeap[T]) parent(index int) int {
	return (index - 1) / 2
}

func (h *MinHeap[T]) leftChild(index int) int {
	return 2*index + 1
}

func (h *MinHeap[T]) rightChild(index int) int {
	return 2*index + 2
}

// heapifyUp swaps the item at index with its parent while it is smaller. O(log n).
func (h *MinHeap[T]) heapifyUp(index int) {
	for index != 0 && h.less(h.heap[index], h.heap[h.parent(index)]) {
		h.heap[index], h.heap[h.parent(index)] = h.heap[h.parent(index)], h.heap[index]
		index = h.parent(index)
	}
}

// heapifyDown swaps the item at index with its smallest child while that child is smaller. O(log n).
func (h *MinHeap[T]) heapifyDown(index int) {
	for {
		smallest := index
		left := h.leftChild(index)
		right := h.rightChild(index)

		if left < len(h.heap) && h.less(h.heap[left], h.heap[smallest]) {
			smallest = left
		}
		if right < len(h.heap) && h.less(h.heap[right], h.heap[smallest]) {
			smallest = right
		}
		if smallest == index {
			return
		}
		h.heap[index], h.heap[smallest] = h.heap[smallest], h.heap[index]
		index = smallest
	}
}

func (h *MinHeap[T]) Insert(item T) {
	h.heap = append(h.heap, item)
	h.heapifyUp(len(h.heap) - 1)
}

func (h *MinHeap[T]) GetMin() (T, bool) {
	if len(h.heap) == 0 {
		var zero T
		return zero, false
	}
	return h.heap[0], true
}

func (h *MinHeap[T]) ExtractMin() (T, bool) {
	var zero T
	if len(h.heap) == 0 {
		return zero, false
	}
	root := h.heap[0]
	last := len(h.heap) - 1
	h.heap[0] = h.heap[last]
	h.heap[last] = zero
	h.heap = h.heap[:last]
	if len(h.heap) > 0 {
		h.heapifyDown(0)
	}
	return root, true
}

func (h *MinHeap[T]) Size() int {
	return len(h.heap)
}

func (h *MinHeap[T]) IsEmpty() bool {
	return len(h.heap) == 0
}
