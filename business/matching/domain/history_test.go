package domain

import (
	"fmt"
	"sync"
	"testing"
)

func TestMatchHistory_RingBuffer(t *testing.T) {
	h := NewMatchHistory(3)

	for i := 1; i <= 5; i++ {
		h.Append(MatchEntry{PairKey: fmt.Sprintf("p%d", i), Safe: i%2 == 0})
	}

	if h.Len() != 3 {
		t.Fatalf("Len = %d, want 3", h.Len())
	}

	recent := h.Recent(10)
	want := []string{"p5", "p4", "p3"}
	for i, e := range recent {
		if e.PairKey != want[i] {
			t.Errorf("Recent[%d] = %s, want %s", i, e.PairKey, want[i])
		}
	}

	compared, safe := h.Totals()
	if compared != 5 || safe != 2 {
		t.Errorf("Totals = (%d, %d), want (5, 2)", compared, safe)
	}

	if got := h.Recent(1); len(got) != 1 || got[0].PairKey != "p5" {
		t.Errorf("Recent(1) = %+v", got)
	}
}

func TestMatchHistory_Concurrent(t *testing.T) {
	h := NewMatchHistory(0)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				h.Append(MatchEntry{Safe: true})
				_ = h.Recent(5)
			}
		}()
	}
	wg.Wait()

	compared, _ := h.Totals()
	if compared != 800 {
		t.Errorf("compared = %d, want 800", compared)
	}
	if h.Len() != 800 {
		t.Errorf("Len = %d, want 800", h.Len())
	}
}
