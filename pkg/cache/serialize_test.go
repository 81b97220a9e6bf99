package cache

import (
	"testing"
	"time"
)

func TestExportImportRoundTrip(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock, WithMaxSize(10))
	c.Set("a", "va", 0)
	c.Set("b", "vb", TTLForever)

	data, err := c.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	restored := newTestCache(clock, WithMaxSize(10))
	if err := restored.Import(data); err != nil {
		t.Fatalf("Import: %v", err)
	}

	for _, id := range []string{"a", "b"} {
		entry, ok := restored.Get(id)
		if !ok {
			t.Fatalf("entry %q missing after import", id)
		}
		if entry.Payload != "v"+id {
			t.Errorf("payload for %q = %v", id, entry.Payload)
		}
	}
}

func TestImportDropsExpired(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock)
	c.Set("short", "v", time.Minute)
	c.Set("forever", "v", TTLForever)

	data, err := c.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	clock.Advance(time.Hour)
	restored := newTestCache(clock)
	if err := restored.Import(data); err != nil {
		t.Fatalf("Import: %v", err)
	}

	if restored.Has("short") {
		t.Error("expired entry should be dropped on import")
	}
	if !restored.Has("forever") {
		t.Error("unexpired entry should survive import")
	}
}

func TestImportRespectsSizeBound(t *testing.T) {
	clock := newFakeClock()
	big := newTestCache(clock, WithMaxSize(10))
	for _, id := range []string{"a", "b", "c", "d"} {
		big.Set(id, id, TTLForever)
	}
	data, err := big.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	small := newTestCache(clock, WithMaxSize(2))
	if err := small.Import(data); err != nil {
		t.Fatalf("Import: %v", err)
	}
	if small.Size() != 2 {
		t.Errorf("Size() = %d, want 2", small.Size())
	}
	// Export order is LRU-first, so the most recent entries win.
	if !small.Has("c") || !small.Has("d") {
		t.Error("most recently used entries should survive a bounded import")
	}
}

func TestImportBadPayload(t *testing.T) {
	c := newTestCache(newFakeClock())
	if err := c.Import([]byte("{broken")); err == nil {
		t.Error("expected error for invalid snapshot")
	}
}
