package ring

import "testing"

func TestInsertBelowCapacityKeepsOrder(t *testing.T) {
	s := New[int](10, 3)
	for i := 0; i < 5; i++ {
		s.Insert(i)
	}
	got := s.Items()
	want := []int{0, 1, 2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("items[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

// TestEvictionBatchArithmetic walks through the N=10, K=3 example named in
// the testable-properties scenario: insert 12 sequential items and check
// the eviction happens exactly once, trimming exactly K items the moment
// capacity is reached, never before and never partially.
func TestEvictionBatchArithmetic(t *testing.T) {
	s := New[int](10, 3)
	for i := 0; i < 12; i++ {
		s.Insert(i)
	}

	got := s.Items()
	// After 10 inserts the sequence is full (items 0..9). The 11th insert
	// sees size==capacity and evicts the 3 oldest (0,1,2) before appending
	// 10, leaving [3..10] (8 items). The 12th insert sees size=8<10, so it
	// just appends, leaving [3..11] (9 items).
	want := []int{3, 4, 5, 6, 7, 8, 9, 10, 11}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d: got %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("items[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestCapacityNeverExceeded(t *testing.T) {
	s := New[int](10, 3)
	for i := 0; i < 100; i++ {
		s.Insert(i)
		if s.Len() > 10 {
			t.Fatalf("length %d exceeds capacity after insert %d", s.Len(), i)
		}
	}
}

func TestSingleNotificationPerInsert(t *testing.T) {
	s := New[int](5, 2)
	notifications := 0
	s.Subscribe(func() { notifications++ })

	for i := 0; i < 9; i++ {
		s.Insert(i)
	}
	if notifications != 9 {
		t.Errorf("notifications = %d, want 9 (one per insert, none partial)", notifications)
	}
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	s := New[int](5, 2)
	count := 0
	unsub := s.Subscribe(func() { count++ })

	s.Insert(1)
	unsub()
	s.Insert(2)
	s.Insert(3)

	if count != 1 {
		t.Errorf("count = %d, want 1 (unsubscribe should stop further calls)", count)
	}
}

func TestDefaultTrimBatch(t *testing.T) {
	s := New[int](100, 0)
	if s.trimBatch != 5 {
		t.Errorf("default trim batch = %d, want 5 (capacity/20)", s.trimBatch)
	}
}

func TestClear(t *testing.T) {
	s := New[int](10, 3)
	s.Insert(1)
	s.Insert(2)
	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Len() after Clear() = %d, want 0", s.Len())
	}
}
