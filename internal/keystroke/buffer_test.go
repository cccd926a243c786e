package keystroke

import "testing"

func TestBufferRecordDeltas(t *testing.T) {
	b := NewBuffer(4)
	first := b.Record("a", 1000, false, 1)
	if first.TimeDelta != 0 {
		t.Fatalf("expected first delta 0, got %d", first.TimeDelta)
	}
	second := b.Record("b", 1250, false, 2)
	if second.TimeDelta != 250 {
		t.Fatalf("expected delta 250, got %d", second.TimeDelta)
	}
	back := b.Record("backspace", 1200, true, 1)
	if back.TimeDelta != 0 {
		t.Fatalf("expected regression to clamp to 0, got %d", back.TimeDelta)
	}
	next := b.Record("c", 1300, false, 2)
	if next.TimeDelta != 50 {
		t.Fatalf("expected delta from latest timestamp, got %d", next.TimeDelta)
	}
}

func TestBufferDropsOldest(t *testing.T) {
	b := NewBuffer(3)
	for i := 0; i < 5; i++ {
		b.Record(string(rune('a'+i)), int64(i*100), false, i)
	}
	if b.Len() != 3 {
		t.Fatalf("expected len 3, got %d", b.Len())
	}
	if b.Total() != 5 {
		t.Fatalf("expected total 5, got %d", b.Total())
	}
	snap := b.Snapshot()
	want := []string{"c", "d", "e"}
	for i, w := range want {
		if snap[i].Key != w {
			t.Fatalf("snapshot[%d]: expected %q, got %q", i, w, snap[i].Key)
		}
	}
	snap[0].Key = "mutated"
	if b.Snapshot()[0].Key != "c" {
		t.Fatalf("snapshot must be a copy")
	}
}

func TestNewBufferDefaultCapacity(t *testing.T) {
	b := NewBuffer(0)
	for i := 0; i < DefaultCapacity+5; i++ {
		b.Record("x", int64(i), false, i)
	}
	if b.Len() != DefaultCapacity {
		t.Fatalf("expected len %d, got %d", DefaultCapacity, b.Len())
	}
}
