package cache

import (
	"testing"
	"time"

	"github.com/guimove/trainfit/internal/model"
	"github.com/guimove/trainfit/internal/optimizer"
)

func testSnapshot() model.Snapshot {
	return model.Snapshot{
		Carriers: []model.Carrier{{ID: 1, WeightCapacity: 8, VolumeCapacity: 5, Cost: 10}},
		Units:    []model.Unit{{ID: 1, Weight: 5, Volume: 2}},
	}
}

func TestFingerprint_Stable(t *testing.T) {
	opts := optimizer.DefaultOptions()
	a, err := Fingerprint(testSnapshot(), opts)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}

	snap := testSnapshot()
	snap.CollectedAt = time.Now()
	b, err := Fingerprint(snap, opts)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	if a != b {
		t.Error("collection time must not change the fingerprint")
	}
	if len(a) != 64 {
		t.Errorf("expected a hex sha256, got %q", a)
	}
}

func TestFingerprint_SensitiveToContent(t *testing.T) {
	opts := optimizer.DefaultOptions()
	base, _ := Fingerprint(testSnapshot(), opts)

	snap := testSnapshot()
	snap.Units[0].Weight = 6
	if fp, _ := Fingerprint(snap, opts); fp == base {
		t.Error("unit change must change the fingerprint")
	}

	opts.EnforceVolume = false
	if fp, _ := Fingerprint(testSnapshot(), opts); fp == base {
		t.Error("option change must change the fingerprint")
	}
}

func TestResultCache(t *testing.T) {
	rc := NewResultCache(2)
	r1 := &model.Result{TotalCost: 1}
	r2 := &model.Result{TotalCost: 2}
	r3 := &model.Result{TotalCost: 3}

	rc.Add("a", r1)
	rc.Add("b", r2)
	if got, ok := rc.Get("a"); !ok || got != r1 {
		t.Fatal("expected hit for a")
	}

	// b is now least recently used.
	rc.Add("c", r3)
	if _, ok := rc.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if rc.Len() != 2 {
		t.Errorf("Len: got %d, want 2", rc.Len())
	}

	rc.Remove("a")
	if _, ok := rc.Get("a"); ok {
		t.Error("expected miss after Remove")
	}
}

func TestResultCache_Disabled(t *testing.T) {
	rc := NewResultCache(0)
	rc.Add("a", &model.Result{})
	if _, ok := rc.Get("a"); ok {
		t.Error("disabled cache should never hit")
	}
	if rc.Len() != 0 {
		t.Errorf("Len: got %d, want 0", rc.Len())
	}
}

func TestFileCache_SetAndGet(t *testing.T) {
	cache := NewFileCache(t.TempDir())

	original := model.Result{
		Assignment: model.Assignment{1: {5, 4}},
		TotalCost:  10,
	}
	if err := cache.Set("test-key", original); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var loaded model.Result
	if !cache.Get("test-key", time.Hour, &loaded) {
		t.Fatal("Get returned false for valid cache entry")
	}
	if loaded.TotalCost != 10 || len(loaded.Assignment[1]) != 2 {
		t.Errorf("got %+v, want %+v", loaded, original)
	}
}

func TestFileCache_Expired(t *testing.T) {
	cache := NewFileCache(t.TempDir())

	if err := cache.Set("expired", "value"); err != nil {
		t.Fatal(err)
	}

	var result string
	// TTL of 0 means always expired
	if cache.Get("expired", 0, &result) {
		t.Error("expected expired cache miss")
	}
}

func TestFileCache_Missing(t *testing.T) {
	cache := NewFileCache(t.TempDir())

	var result string
	if cache.Get("nonexistent", time.Hour, &result) {
		t.Error("expected cache miss for nonexistent key")
	}
}

func TestFileCache_Clear(t *testing.T) {
	cache := NewFileCache(t.TempDir())

	_ = cache.Set("key1", "val1")
	_ = cache.Set("key2", "val2")

	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	var result string
	if cache.Get("key1", time.Hour, &result) {
		t.Error("expected cache miss after clear")
	}
}

func TestFileCache_ClearMissingDir(t *testing.T) {
	if err := NewFileCache("/nonexistent/trainfit-cache").Clear(); err != nil {
		t.Errorf("clearing a missing directory should succeed, got %v", err)
	}
}
