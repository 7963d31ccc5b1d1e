package util

import (
	"container/heap"
	"sync"
)

// PriorityQueue é uma fila thread-safe com chaves únicas ordenada por
// prioridade crescente (menor primeiro). Empates preservam a ordem de
// inserção, então a drenagem é estável entre ticks idênticos.
type PriorityQueue[K comparable, V any] struct {
	mu      sync.Mutex
	items   pqHeap[K, V]
	present map[K]*pqItem[K, V]
	seq     int64
}

type pqItem[K comparable, V any] struct {
	key      K
	value    V
	priority float64
	seq      int64
	index    int
}

// NewPriorityQueue cria uma fila de prioridade vazia.
func NewPriorityQueue[K comparable, V any]() *PriorityQueue[K, V] {
	return &PriorityQueue[K, V]{
		items:   make(pqHeap[K, V], 0, 64),
		present: make(map[K]*pqItem[K, V]),
	}
}

// Push insere a chave com a prioridade dada. Se a chave já está na fila o
// valor e a prioridade são atualizados no lugar. Retorna true se a chave
// era nova.
func (q *PriorityQueue[K, V]) Push(key K, value V, priority float64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if it, ok := q.present[key]; ok {
		it.value = value
		it.priority = priority
		heap.Fix(&q.items, it.index)
		return false
	}

	it := &pqItem[K, V]{key: key, value: value, priority: priority, seq: q.seq}
	q.seq++
	q.present[key] = it
	heap.Push(&q.items, it)
	return true
}

// Pop remove e retorna o item de menor prioridade. O terceiro retorno é
// false se a fila está vazia.
func (q *PriorityQueue[K, V]) Pop() (K, V, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		var zeroK K
		var zeroV V
		return zeroK, zeroV, false
	}
	it := heap.Pop(&q.items).(*pqItem[K, V])
	delete(q.present, it.key)
	return it.key, it.value, true
}

// Contains verifica se uma chave está na fila.
func (q *PriorityQueue[K, V]) Contains(key K) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.present[key]
	return ok
}

// Remove tira uma chave específica da fila. Retorna false se ausente.
func (q *PriorityQueue[K, V]) Remove(key K) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	it, ok := q.present[key]
	if !ok {
		return false
	}
	heap.Remove(&q.items, it.index)
	delete(q.present, key)
	return true
}

// DropWhere remove todos os itens para os quais pred retorna true e
// devolve quantos foram removidos. Usado para descartar trabalho obsoleto
// em lote quando a profundidade muda.
func (q *PriorityQueue[K, V]) DropWhere(pred func(key K, value V) bool) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.items[:0]
	dropped := 0
	for _, it := range q.items {
		if pred(it.key, it.value) {
			delete(q.present, it.key)
			dropped++
			continue
		}
		kept = append(kept, it)
	}
	if dropped == 0 {
		return 0
	}
	q.items = kept
	for i, it := range q.items {
		it.index = i
	}
	heap.Init(&q.items)
	return dropped
}

// Len retorna o número de itens na fila.
func (q *PriorityQueue[K, V]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Clear limpa a fila.
func (q *PriorityQueue[K, V]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = q.items[:0]
	q.present = make(map[K]*pqItem[K, V])
}

// pqHeap implementa container/heap sobre os itens da fila.
type pqHeap[K comparable, V any] []*pqItem[K, V]

func (h pqHeap[K, V]) Len() int { return len(h) }

func (h pqHeap[K, V]) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].seq < h[j].seq
}

func (h pqHeap[K, V]) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *pqHeap[K, V]) Push(x any) {
	it := x.(*pqItem[K, V])
	it.index = len(*h)
	*h = append(*h, it)
}

func (h *pqHeap[K, V]) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return it
}

// ThreadSafeQueue é uma fila simples thread-safe (sem unicidade).
type ThreadSafeQueue[T any] struct {
	mu    sync.Mutex
	items []T
}

// NewThreadSafeQueue cria uma nova fila thread-safe.
func NewThreadSafeQueue[T any]() *ThreadSafeQueue[T] {
	return &ThreadSafeQueue[T]{
		items: make([]T, 0, 64),
	}
}

// Push adiciona um item ao fim da fila.
func (q *ThreadSafeQueue[T]) Push(item T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, item)
}

// Pop remove e retorna o primeiro item. Retorna false se vazia.
func (q *ThreadSafeQueue[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}

// Len retorna o tamanho da fila.
func (q *ThreadSafeQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
