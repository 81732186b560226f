package greenblue

import "testing"

func TestPendingLogOrderAndDrain(t *testing.T) {
	l := newPendingLog[string, int](4)
	l.append("a", 1)
	l.append("b", 2)
	if s := l.append("a", 3); s != 3 {
		t.Fatalf("seq = %d, want 3", s)
	}

	snap := l.snapshot()
	if l.len() != 3 || len(snap) != 3 {
		t.Fatalf("snapshot must not clear the log")
	}
	snap[0].Value = 99
	if l.snapshot()[0].Value != 1 {
		t.Fatalf("snapshot aliases the log")
	}

	got := l.drain()
	if l.len() != 0 {
		t.Fatalf("drain left %d entries", l.len())
	}
	want := []entry[string, int]{{"a", 1, 1}, {"b", 2, 2}, {"a", 3, 3}}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d = %+v want %+v", i, got[i], want[i])
		}
	}

	// sequence numbers keep increasing across drains
	if s := l.append("c", 4); s != 4 {
		t.Fatalf("seq after drain = %d, want 4", s)
	}
}

func TestPointerSwap(t *testing.T) {
	var p pointer
	if p.current() != 0 || p.staging() != 1 || p.generation() != 0 {
		t.Fatalf("zero pointer: cur=%d stg=%d gen=%d", p.current(), p.staging(), p.generation())
	}
	for n := 1; n <= 4; n++ {
		prev := p.current()
		if stale := p.swap(); stale != prev {
			t.Fatalf("swap returned %d, want %d", stale, prev)
		}
		if p.current()+p.staging() != 1 || p.generation() != uint64(n) {
			t.Fatalf("after swap %d: cur=%d stg=%d gen=%d", n, p.current(), p.staging(), p.generation())
		}
	}
}
