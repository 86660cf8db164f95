package filestore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLocalStore_WriteAndDelete(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	ctx := context.Background()
	ref, err := store.Write(ctx, "KSM-001", ".pdf", strings.NewReader("content"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.HasPrefix(ref, "KSM-001_") || !strings.HasSuffix(ref, ".pdf") {
		t.Fatalf("unexpected reference shape: %q", ref)
	}

	data, err := os.ReadFile(filepath.Join(store.BaseDir(), ref))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "content" {
		t.Fatalf("expected %q got %q", "content", data)
	}

	if err := store.Delete(ctx, ref); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.BaseDir(), ref)); !os.IsNotExist(err) {
		t.Fatal("file should be gone after delete")
	}
}

func TestLocalStore_UniqueReferences(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	ctx := context.Background()
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		ref, err := store.Write(ctx, "same-prefix", ".png", strings.NewReader("x"))
		if err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
		if seen[ref] {
			t.Fatalf("duplicate reference generated: %q", ref)
		}
		seen[ref] = true
	}
}

func TestLocalStore_SanitizesPrefix(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	ref, err := store.Write(context.Background(), "../../etc/passwd", ".jpg", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if strings.ContainsAny(ref, "/\\") || strings.Contains(ref, "..") {
		t.Fatalf("reference leaked path characters: %q", ref)
	}
	if _, err := os.Stat(filepath.Join(store.BaseDir(), ref)); err != nil {
		t.Fatalf("file should live inside the store dir: %v", err)
	}
}

func TestLocalStore_RejectsBadReferences(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	for _, ref := range []string{"", "../escape.pdf", "a/b.pdf", ".hidden"} {
		if err := store.Delete(context.Background(), ref); !errors.Is(err, ErrInvalidReference) {
			t.Fatalf("ref %q: expected ErrInvalidReference, got %v", ref, err)
		}
	}
}

func TestLocalStore_WriteHonorsCancellation(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Write(ctx, "p", ".pdf", strings.NewReader("x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLocalStore_ListOlderThan(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	ctx := context.Background()
	oldRef, err := store.Write(ctx, "old", ".pdf", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	past := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(filepath.Join(store.BaseDir(), oldRef), past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	if _, err := store.Write(ctx, "fresh", ".pdf", strings.NewReader("x")); err != nil {
		t.Fatalf("write: %v", err)
	}

	refs, err := store.ListOlderThan(time.Now().Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(refs) != 1 || refs[0] != oldRef {
		t.Fatalf("expected only %q, got %v", oldRef, refs)
	}
}
