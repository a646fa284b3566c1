package cards

import (
	"context"
	"errors"
	"testing"
)

type fakeCodeChecker struct {
	collisions int
	calls      int
	err        error
}

func (f *fakeCodeChecker) CodeExists(context.Context, string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.calls <= f.collisions, nil
}

func TestGenerateCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("GenerateCode: %v", err)
		}
		if !ValidCode(code) {
			t.Fatalf("generated code %q does not match the format", code)
		}
		seen[code] = true
	}
	// 100 draws from a 36^8 space colliding would mean a broken generator.
	if len(seen) < 100 {
		t.Fatalf("expected 100 distinct codes, got %d", len(seen))
	}
}

func TestValidCode(t *testing.T) {
	for code, want := range map[string]bool{
		"ABCD-1234":  true,
		"0000-ZZZZ":  true,
		"abcd-1234":  false,
		"ABCD1234":   false,
		"ABCD-123":   false,
		"ABCD-12345": false,
		"ÁBCD-1234":  false,
		"":           false,
	} {
		if got := ValidCode(code); got != want {
			t.Errorf("ValidCode(%q) = %v, want %v", code, got, want)
		}
	}
}

func TestNewUniqueCode_RetriesOnCollision(t *testing.T) {
	checker := &fakeCodeChecker{collisions: 3}
	code, err := NewUniqueCode(context.Background(), checker)
	if err != nil {
		t.Fatalf("NewUniqueCode: %v", err)
	}
	if !ValidCode(code) {
		t.Fatalf("unexpected code %q", code)
	}
	if checker.calls != 4 {
		t.Fatalf("expected 4 attempts, got %d", checker.calls)
	}
}

func TestNewUniqueCode_GivesUp(t *testing.T) {
	checker := &fakeCodeChecker{collisions: codeMaxAttempts + 1}
	if _, err := NewUniqueCode(context.Background(), checker); err == nil {
		t.Fatal("expected exhaustion error")
	}
	if checker.calls != codeMaxAttempts {
		t.Fatalf("expected %d attempts, got %d", codeMaxAttempts, checker.calls)
	}
}

func TestNewUniqueCode_PropagatesCheckerError(t *testing.T) {
	boom := errors.New("db down")
	checker := &fakeCodeChecker{err: boom}
	if _, err := NewUniqueCode(context.Background(), checker); !errors.Is(err, boom) {
		t.Fatalf("expected checker error, got %v", err)
	}
}
