package board

import "testing"

func TestTotalPages(t *testing.T) {
	tests := []struct {
		count int
		want  int
	}{
		{0, 1},
		{1, 1},
		{10, 1},
		{11, 2},
		{20, 2},
		{21, 3},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.count); got != tt.want {
			t.Errorf("TotalPages(%d) = %d, want %d", tt.count, got, tt.want)
		}
	}
}

func TestPageOf(t *testing.T) {
	items := make([]Notice, 23)
	for i := range items {
		items[i] = Notice{LocalID: i + 1}
	}

	first := pageOf(items, 1)
	if len(first) != PageSize || first[0].LocalID != 1 {
		t.Errorf("Page 1: got %d items starting at %d", len(first), first[0].LocalID)
	}

	last := pageOf(items, 3)
	if len(last) != 3 || last[0].LocalID != 21 {
		t.Errorf("Page 3: got %d items", len(last))
	}

	if got := pageOf(items, 4); len(got) != 0 {
		t.Errorf("Page past the end: expected empty, got %d items", len(got))
	}
	if got := pageOf(items, 0); len(got) != 0 {
		t.Errorf("Page 0: expected empty, got %d items", len(got))
	}
	if got := pageOf(nil, 1); len(got) != 0 {
		t.Errorf("Empty list: expected empty, got %d items", len(got))
	}
}
