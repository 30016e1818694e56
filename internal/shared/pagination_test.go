package shared

import "testing"

func TestNewPaginationDefaults(t *testing.T) {
	p := NewPagination(0, 0, 45)
	if p.Page != 1 || p.PerPage != 20 {
		t.Fatalf("unexpected defaults: %+v", p)
	}
	if p.TotalPages != 3 {
		t.Fatalf("expected 3 pages got %d", p.TotalPages)
	}
	if p.Offset() != 0 {
		t.Fatalf("expected offset 0 got %d", p.Offset())
	}
}

func TestPaginationOffset(t *testing.T) {
	p := NewPagination(3, 25, 100)
	if p.Offset() != 50 {
		t.Fatalf("expected offset 50 got %d", p.Offset())
	}
	if p.TotalPages != 4 {
		t.Fatalf("expected 4 pages got %d", p.TotalPages)
	}
}
