package arena

import "testing"

type node struct {
	val  int
	next *node
}

func TestPoolBumpAllocation(t *testing.T) {
	a := New()
	pool := NewPool[node](a, 4)

	n1 := pool.New()
	n1.val = 1
	n2 := pool.New()
	n2.val = 2

	if n1.val != 1 || n2.val != 2 {
		t.Fatalf("expected distinct values, got %d and %d", n1.val, n2.val)
	}
	if n1 == n2 {
		t.Fatal("expected distinct addresses")
	}
	if a.Allocated() != 2 {
		t.Fatalf("expected 2 allocations tracked, got %d", a.Allocated())
	}
}

func TestPoolGrowsAcrossSlabs(t *testing.T) {
	a := New()
	pool := NewPool[int](a, 2)

	ptrs := make([]*int, 0, 20)
	for i := 0; i < 20; i++ {
		p := pool.New()
		*p = i
		ptrs = append(ptrs, p)
	}

	for i, p := range ptrs {
		if *p != i {
			t.Fatalf("slot %d: expected %d, got %d (slab growth corrupted an earlier pointer)", i, i, *p)
		}
	}
	if pool.Len() != 20 {
		t.Fatalf("expected Len() == 20, got %d", pool.Len())
	}
}

func TestPoolDefaultSlabSize(t *testing.T) {
	pool := NewPool[int](nil, 0)
	p := pool.New()
	*p = 42
	if *p != 42 {
		t.Fatalf("expected 42, got %d", *p)
	}
}
