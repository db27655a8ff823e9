package cache

import (
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if err := c.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("expected set to succeed, got %v", err)
	}

	got, found := c.Get("k")
	if !found {
		t.Fatal("expected key to be found")
	}
	if string(got) != "v" {
		t.Errorf("expected value 'v', got %q", got)
	}
}

func TestMemoryCache_Miss(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("expected miss for absent key")
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	_ = c.Set("k", []byte("v"), time.Minute)
	if err := c.Delete("k"); err != nil {
		t.Fatalf("expected delete to succeed, got %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("expected key gone after delete")
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	_ = c.Set("a", []byte("1"), time.Minute)
	_ = c.Set("b", []byte("2"), time.Minute)
	if err := c.Clear(); err != nil {
		t.Fatalf("expected clear to succeed, got %v", err)
	}
	if _, found := c.Get("a"); found {
		t.Error("expected cache empty after clear")
	}
}

func TestMemoryCache_TTLExpiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	_ = c.Set("k", []byte("v"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, found := c.Get("k"); found {
		t.Error("expected key to expire")
	}
}

func TestLookupKey_StableAndDistinct(t *testing.T) {
	a := LookupKey("semantic", "P-1", "allergy")
	b := LookupKey("semantic", "P-1", "allergy")
	if a != b {
		t.Error("expected stable key for identical inputs")
	}

	distinct := []string{
		LookupKey("semantic", "P-1", "condition"),
		LookupKey("semantic", "P-2", "allergy"),
		LookupKey("episodic", "P-1", "allergy"),
	}
	for _, other := range distinct {
		if other == a {
			t.Errorf("expected distinct key, got collision with %q", other)
		}
	}
}
