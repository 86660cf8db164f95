package services

import (
	"context"
	"log"
	"time"

	"dloms-api/internal/adapters/filestore"
	"dloms-api/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// orphanGracePeriod is how old an unreferenced file must be before the
// sweeper reclaims it. The grace window keeps in-flight uploads (written to
// the store but not yet appended to a record) out of reach.
const orphanGracePeriod = 24 * time.Hour

// CleanupService reconciles the upload directory against the parcel records.
// Best-effort file cleanup (failed compensations, detach failures during
// delete) can leave stray files behind; the nightly sweep removes any stored
// file that no parcel references and that is older than the grace period.
type CleanupService struct {
	parcelRepo repositories.ParcelRepository
	store      *filestore.LocalStore
	cron       *cron.Cron
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(parcelRepo repositories.ParcelRepository, store *filestore.LocalStore) *CleanupService {
	return &CleanupService{
		parcelRepo: parcelRepo,
		store:      store,
		cron:       cron.New(),
	}
}

// Start schedules the nightly sweep
func (s *CleanupService) Start() {
	s.cron.AddFunc("@daily", func() {
		if err := s.Sweep(context.Background()); err != nil {
			log.Printf("❌ Orphaned-file sweep failed: %v", err)
		}
	})
	s.cron.Start()
	log.Println("🧹 Document cleanup service started (daily sweep)")
}

// Stop stops the scheduler
func (s *CleanupService) Stop() {
	s.cron.Stop()
	log.Println("🛑 Document cleanup service stopped")
}

// Sweep deletes stored files that are old enough and referenced by no
// parcel. Individual deletion failures are logged and skipped.
func (s *CleanupService) Sweep(ctx context.Context) error {
	referenced, err := s.parcelRepo.AllDocumentRefs(ctx)
	if err != nil {
		return err
	}

	stale, err := s.store.ListOlderThan(time.Now().Add(-orphanGracePeriod))
	if err != nil {
		return err
	}

	removed := 0
	for _, ref := range stale {
		if _, ok := referenced[ref]; ok {
			continue
		}
		if err := s.store.Delete(ctx, ref); err != nil {
			log.Printf("⚠️ Failed to remove orphaned file %s: %v", ref, err)
			continue
		}
		removed++
	}

	if removed > 0 {
		log.Printf("🧹 Removed %d orphaned document(s)", removed)
	}
	return nil
}
