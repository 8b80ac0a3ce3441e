package archive

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/nepselab/floorwatch/internal/config"
)

func TestNewUnknownType(t *testing.T) {
	_, err := New(config.ArchiveConfig{Type: "tape"})
	if err == nil {
		t.Fatal("expected error for unknown archive type")
	}
}

func TestNewLocalFSSelected(t *testing.T) {
	store, err := New(config.ArchiveConfig{Type: "localfs", Path: t.TempDir()})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := store.(*LocalFS); !ok {
		t.Fatalf("got %T, want *LocalFS", store)
	}
}

func TestLocalFSPutGet(t *testing.T) {
	store, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	if err := store.Put(ctx, "run-1/daily_signals.csv", []byte("symbol,date\n")); err != nil {
		t.Fatalf("put: %v", err)
	}
	data, err := store.Get(ctx, "run-1/daily_signals.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(data) != "symbol,date\n" {
		t.Errorf("got %q", data)
	}
}

func TestLocalFSList(t *testing.T) {
	store, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()
	for _, key := range []string{"run-1/a.csv", "run-1/b.csv", "run-2/a.csv"} {
		if err := store.Put(ctx, key, []byte("x")); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}

	keys, err := store.List(ctx, "run-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	sort.Strings(keys)
	want := []string{"run-1/a.csv", "run-1/b.csv"}
	if len(keys) != len(want) {
		t.Fatalf("got %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestLocalFSListMissingPrefix(t *testing.T) {
	store, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	keys, err := store.List(context.Background(), "nope")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("got %v, want empty", keys)
	}
}

func TestPutDir(t *testing.T) {
	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "flows.csv"), []byte("f"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "stats.csv"), []byte("s"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(src, "sub"), 0755); err != nil {
		t.Fatal(err)
	}

	store, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()
	if err := PutDir(ctx, store, "run-9", src); err != nil {
		t.Fatalf("putdir: %v", err)
	}

	keys, err := store.List(ctx, "run-9")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("got %d keys %v, want 2", len(keys), keys)
	}
}
