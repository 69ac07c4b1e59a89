package core

import "testing"

func TestRectContains(t *testing.T) {
	// A slot-sized area away from the origin.
	r := NewRect(SlotW, RowH, SlotW, RowH-1)

	tests := []struct {
		name string
		x, y int
		want bool
	}{
		{"top-left", SlotW, RowH, true},
		{"last column", 2*SlotW - 1, RowH, true},
		{"right edge is exclusive", 2 * SlotW, RowH, false},
		{"bottom edge is exclusive", SlotW, 2*RowH - 1, false},
		{"left neighbour", SlotW - 1, RowH, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.x, tt.y); got != tt.want {
				t.Errorf("Contains(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
	if r.Right() != 2*SlotW || r.Bottom() != 2*RowH-1 {
		t.Errorf("edges = %d,%d", r.Right(), r.Bottom())
	}
}

func TestAbs(t *testing.T) {
	for in, want := range map[int]int{-3: 3, 0: 0, 4: 4} {
		if got := Abs(in); got != want {
			t.Errorf("Abs(%d) = %d, want %d", in, got, want)
		}
	}
}
