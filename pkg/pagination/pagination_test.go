package pagination

import "testing"

func TestNormalizeLimit(t *testing.T) {
	if got := NormalizeLimit(0); got != DefaultLimit {
		t.Fatalf("expected default %d, got %d", DefaultLimit, got)
	}
	if got := NormalizeLimit(-5); got != DefaultLimit {
		t.Fatalf("expected default %d, got %d", DefaultLimit, got)
	}
	if got := NormalizeLimit(1000); got != MaxLimit {
		t.Fatalf("expected max %d, got %d", MaxLimit, got)
	}
	if got := NormalizeLimit(10); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
}

func TestNormalizeOffset(t *testing.T) {
	if got := NormalizeOffset(-1); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if got := NormalizeOffset(MaxOffset + 5); got != MaxOffset {
		t.Fatalf("expected %d, got %d", MaxOffset, got)
	}
	if got := NormalizeOffset(50); got != 50 {
		t.Fatalf("expected 50, got %d", got)
	}
}

func TestNormalize(t *testing.T) {
	page := Normalize(0, -3)
	if page.Limit != DefaultLimit || page.Offset != 0 {
		t.Fatalf("unexpected page %+v", page)
	}
}
