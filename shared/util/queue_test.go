package util

import "testing"

func TestPriorityQueueOrder(t *testing.T) {
	q := NewPriorityQueue[string, int]()
	q.Push("c", 3, 30)
	q.Push("a", 1, 10)
	q.Push("b", 2, 20)

	want := []string{"a", "b", "c"}
	for _, w := range want {
		k, _, ok := q.Pop()
		if !ok || k != w {
			t.Fatalf("Pop() = %q, esperado %q", k, w)
		}
	}
	if _, _, ok := q.Pop(); ok {
		t.Error("fila vazia deveria retornar false")
	}
}

func TestPriorityQueueStableTies(t *testing.T) {
	q := NewPriorityQueue[string, int]()
	q.Push("primeiro", 1, 5)
	q.Push("segundo", 2, 5)
	q.Push("terceiro", 3, 5)

	want := []string{"primeiro", "segundo", "terceiro"}
	for _, w := range want {
		k, _, _ := q.Pop()
		if k != w {
			t.Fatalf("empate não preservou ordem de inserção: veio %q, esperado %q", k, w)
		}
	}
}

func TestPriorityQueueUniqueUpdate(t *testing.T) {
	q := NewPriorityQueue[string, int]()
	if !q.Push("x", 1, 50) {
		t.Error("primeira inserção deveria ser nova")
	}
	if q.Push("x", 9, 5) {
		t.Error("reinserção deveria atualizar, não duplicar")
	}
	if q.Len() != 1 {
		t.Fatalf("Len() = %d, esperado 1", q.Len())
	}
	q.Push("y", 2, 10)

	k, v, _ := q.Pop()
	if k != "x" || v != 9 {
		t.Errorf("atualização não reordenou: veio (%q, %d)", k, v)
	}
}

func TestPriorityQueueRemoveAndContains(t *testing.T) {
	q := NewPriorityQueue[int, string]()
	q.Push(1, "a", 1)
	q.Push(2, "b", 2)

	if !q.Contains(2) {
		t.Error("Contains(2) deveria ser true")
	}
	if !q.Remove(2) {
		t.Error("Remove(2) deveria remover")
	}
	if q.Contains(2) || q.Remove(2) {
		t.Error("chave removida ainda presente")
	}
	if q.Len() != 1 {
		t.Errorf("Len() = %d, esperado 1", q.Len())
	}
}

func TestPriorityQueueDropWhere(t *testing.T) {
	q := NewPriorityQueue[int, int]()
	for i := 0; i < 10; i++ {
		q.Push(i, i, float64(i))
	}
	dropped := q.DropWhere(func(k, v int) bool { return k%2 == 0 })
	if dropped != 5 {
		t.Fatalf("DropWhere removeu %d, esperado 5", dropped)
	}
	// Os ímpares saem na ordem de prioridade.
	want := []int{1, 3, 5, 7, 9}
	for _, w := range want {
		k, _, ok := q.Pop()
		if !ok || k != w {
			t.Fatalf("após DropWhere, Pop() = %d, esperado %d", k, w)
		}
	}
}
