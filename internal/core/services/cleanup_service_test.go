package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dloms-api/internal/adapters/filestore"
	"dloms-api/internal/adapters/persistence/models"
)

func TestSweepRemovesOnlyAgedOrphans(t *testing.T) {
	dir := t.TempDir()
	store, err := filestore.New(dir)
	if err != nil {
		t.Fatalf("filestore.New: %v", err)
	}
	repo := newFakeParcelRepository()
	svc := NewCleanupService(repo, store)
	ctx := context.Background()

	writeDoc := func(prefix string) string {
		ref, err := store.Write(ctx, prefix, ".pdf", strings.NewReader("doc"))
		if err != nil {
			t.Fatalf("store.Write: %v", err)
		}
		return ref
	}
	age := func(ref string) {
		old := time.Now().Add(-48 * time.Hour)
		if err := os.Chtimes(filepath.Join(dir, ref), old, old); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}

	referenced := writeDoc("KSM-600")
	orphanOld := writeDoc("KSM-601")
	orphanFresh := writeDoc("KSM-602")
	age(referenced)
	age(orphanOld)

	parcel := &models.Parcel{ParcelID: "KSM-600"}
	parcel.SetDocumentRefs([]string{referenced})
	if err := repo.Insert(ctx, parcel); err != nil {
		t.Fatalf("seed parcel: %v", err)
	}

	if err := svc.Sweep(ctx); err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	mustExist := func(ref string, want bool) {
		_, err := os.Stat(filepath.Join(dir, ref))
		exists := err == nil
		if exists != want {
			t.Errorf("file %s: exists=%v, want %v", ref, exists, want)
		}
	}
	mustExist(referenced, true)   // referenced by a parcel
	mustExist(orphanOld, false)   // old and unreferenced
	mustExist(orphanFresh, true)  // unreferenced but within the grace window
}
