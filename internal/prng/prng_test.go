package prng

import "testing"

func TestSameSeedSameSequence(t *testing.T) {
	a := New(12345)
	b := New(12345)

	for i := 0; i < 10000; i++ {
		va, vb := a.Uint32(), b.Uint32()
		if va != vb {
			t.Fatalf("draw %d differs: %d != %d", i, va, vb)
		}
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := New(1)
	b := New(2)

	same := 0
	for i := 0; i < 100; i++ {
		if a.Uint32() == b.Uint32() {
			same++
		}
	}
	if same == 100 {
		t.Error("seeds 1 and 2 produced identical sequences")
	}
}

func TestSeedResetsStream(t *testing.T) {
	r := New(99)
	first := make([]uint32, 16)
	for i := range first {
		first[i] = r.Uint32()
	}

	r.Seed(99)
	if r.Draws() != 0 {
		t.Errorf("Draws() after Seed = %d, expected 0", r.Draws())
	}
	for i := range first {
		if v := r.Uint32(); v != first[i] {
			t.Fatalf("draw %d after reseed = %d, expected %d", i, v, first[i])
		}
	}
}

func TestSeedMasking(t *testing.T) {
	a := New(7)
	b := New(7 + (1 << 31))

	if a.Uint32() != b.Uint32() {
		t.Error("seeds equal modulo 2^31 should produce the same stream")
	}
}

func TestFloat64Range(t *testing.T) {
	r := New(42)
	for i := 0; i < 10000; i++ {
		f := r.Float64()
		if f < 0 || f >= 1 {
			t.Fatalf("Float64() = %v, out of [0,1)", f)
		}
	}
}

func TestIntnBounds(t *testing.T) {
	tests := []struct {
		name string
		n    int
	}{
		{"one", 1},
		{"small", 3},
		{"thousand", 1000},
		{"large", 1 << 30},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := New(2024)
			for i := 0; i < 5000; i++ {
				v := r.Intn(tc.n)
				if v < 0 || v >= tc.n {
					t.Fatalf("Intn(%d) = %d", tc.n, v)
				}
			}
		})
	}
}

func TestIntnNonPositive(t *testing.T) {
	r := New(1)
	if v := r.Intn(0); v != 0 {
		t.Errorf("Intn(0) = %d, expected 0", v)
	}
	if v := r.Intn(-5); v != 0 {
		t.Errorf("Intn(-5) = %d, expected 0", v)
	}
}

func TestRange(t *testing.T) {
	r := New(5)
	seen := make(map[int]bool)
	for i := 0; i < 2000; i++ {
		v := r.Range(3, 6)
		if v < 3 || v > 6 {
			t.Fatalf("Range(3, 6) = %d", v)
		}
		seen[v] = true
	}
	if len(seen) != 4 {
		t.Errorf("Range(3, 6) produced %d distinct values, expected 4", len(seen))
	}

	draws := r.Draws()
	if v := r.Range(8, 8); v != 8 {
		t.Errorf("Range(8, 8) = %d, expected 8", v)
	}
	if r.Draws() != draws {
		t.Error("degenerate Range should not consume a draw")
	}
}

func TestRandomSeedInRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		s, err := RandomSeed()
		if err != nil {
			t.Fatalf("RandomSeed() failed: %v", err)
		}
		if !ValidSeed(s) {
			t.Fatalf("RandomSeed() = %d, outside [0, %d]", s, MaxSeed)
		}
	}
}
