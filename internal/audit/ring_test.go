package audit

import "testing"

func TestRingEmpty(t *testing.T) {
	r := NewRing(4)
	if got := r.All(); len(got) != 0 {
		t.Errorf("expected empty ring, got %v", got)
	}
}

func TestRingPartiallyFull(t *testing.T) {
	r := NewRing(4)
	r.Add(Entry{Key: "a"})
	r.Add(Entry{Key: "b"})

	all := r.All()
	if len(all) != 2 || all[0].Key != "a" || all[1].Key != "b" {
		t.Errorf("All = %v", all)
	}
}

func TestRingWrapsAround(t *testing.T) {
	r := NewRing(3)
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		r.Add(Entry{Key: k})
	}

	all := r.All()
	want := []string{"c", "d", "e"}
	if len(all) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(all))
	}
	for i, k := range want {
		if all[i].Key != k {
			t.Errorf("all[%d].Key = %q, want %q", i, all[i].Key, k)
		}
	}
}

func TestRingLast(t *testing.T) {
	r := NewRing(5)
	for _, k := range []string{"a", "b", "c"} {
		r.Add(Entry{Key: k})
	}

	last := r.Last(2)
	if len(last) != 2 || last[0].Key != "b" || last[1].Key != "c" {
		t.Errorf("Last(2) = %v", last)
	}
	if got := r.Last(10); len(got) != 3 {
		t.Errorf("Last(10) should return all 3, got %d", len(got))
	}
}
