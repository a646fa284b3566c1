package gcs

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTokenSourceCachesUntilExpiry(t *testing.T) {
	calls := 0
	ts := &tokenSource{
		fetch: func(context.Context) (string, time.Time, error) {
			calls++
			return "token-1", time.Now().Add(time.Hour), nil
		},
	}

	for i := 0; i < 3; i++ {
		token, err := ts.Token(context.Background())
		if err != nil {
			t.Fatalf("token: %v", err)
		}
		if token != "token-1" {
			t.Fatalf("unexpected token %q", token)
		}
	}
	if calls != 1 {
		t.Fatalf("expected 1 fetch, got %d", calls)
	}
}

func TestTokenSourceRefreshesNearExpiry(t *testing.T) {
	calls := 0
	ts := &tokenSource{
		token:  "stale",
		expiry: time.Now().Add(30 * time.Second),
		fetch: func(context.Context) (string, time.Time, error) {
			calls++
			return "fresh", time.Now().Add(time.Hour), nil
		},
	}

	token, err := ts.Token(context.Background())
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if token != "fresh" {
		t.Fatalf("expected refreshed token, got %q", token)
	}
	if calls != 1 {
		t.Fatalf("expected 1 fetch, got %d", calls)
	}
}

func TestTokenSourcePropagatesFetchError(t *testing.T) {
	ts := &tokenSource{
		fetch: func(context.Context) (string, time.Time, error) {
			return "", time.Time{}, errors.New("boom")
		},
	}
	if _, err := ts.Token(context.Background()); err == nil {
		t.Fatal("expected fetch error")
	}
}

func TestObjectURL(t *testing.T) {
	c := &Client{defaultBucket: "kodacard-media"}
	got := c.ObjectURL("profiles/7/avatar.png")
	want := "https://storage.googleapis.com/kodacard-media/profiles/7/avatar.png"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestParsePrivateKeyRejectsGarbage(t *testing.T) {
	if _, err := parsePrivateKey("not a pem"); err == nil {
		t.Fatal("expected parse error")
	}
}
