package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"

	"dloms-api/internal/adapters/persistence/models"
	"dloms-api/internal/adapters/persistence/repositories"
	"dloms-api/internal/core/domain"
)

// Document errors
var (
	ErrNoDocuments        = errors.New("no documents provided for upload")
	ErrFileTooLarge       = errors.New("file exceeds the maximum size of 10 MB")
	ErrFileTypeNotAllowed = errors.New("file type not allowed: only jpeg, jpg, png, pdf, doc and docx are accepted")
)

// MaxFileSize is the per-file upload ceiling
const MaxFileSize = 10 << 20 // 10 MB

// documentAppendRetries bounds the optimistic-retry loop for concurrent
// document-list appends
const documentAppendRetries = 3

var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

var allowedContentTypes = map[string]bool{
	"image/jpeg":         true,
	"image/jpg":          true,
	"image/png":          true,
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// DocumentService bridges the file store and the parcel repository. Files
// written for an attempt that fails to persist are always deleted again
// (compensating action); record deletes never wait on file cleanup.
type DocumentService struct {
	parcelRepo repositories.ParcelRepository
	store      FileStore
}

// NewDocumentService creates a new document service
func NewDocumentService(parcelRepo repositories.ParcelRepository, store FileStore) *DocumentService {
	return &DocumentService{
		parcelRepo: parcelRepo,
		store:      store,
	}
}

// CreateWithDocuments writes the uploaded files, then inserts the parcel
// record. If the insert fails for any reason (including a duplicate parcel
// ID), every file written for this attempt is deleted before the error is
// surfaced.
func (s *DocumentService) CreateWithDocuments(ctx context.Context, parcel *models.Parcel, files []*multipart.FileHeader) (*models.Parcel, error) {
	refs, err := s.saveAll(ctx, parcel.ParcelID, files)
	if err != nil {
		return nil, err
	}
	parcel.SetDocumentRefs(refs)

	if err := s.parcelRepo.Insert(ctx, parcel); err != nil {
		s.compensate(ctx, refs)
		return nil, err
	}
	return parcel, nil
}

// AttachNew writes the uploaded files and appends their references to the
// parcel's document list. The append is a version-checked update retried a
// bounded number of times, so concurrent attachments against the same parcel
// cannot lose each other's references. If the record update ultimately
// fails, the files written here are deleted again.
func (s *DocumentService) AttachNew(ctx context.Context, parcelID string, files []*multipart.FileHeader) (*models.Parcel, error) {
	if len(files) == 0 {
		return nil, ErrNoDocuments
	}

	// Resolve the parcel before any file hits the store, so a missing
	// parcel leaves nothing to clean up.
	parcel, err := s.parcelRepo.GetByParcelID(ctx, parcelID)
	if err != nil {
		return nil, err
	}

	refs, err := s.saveAll(ctx, parcelID, files)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < documentAppendRetries; attempt++ {
		merged := append(parcel.DocumentRefs(), refs...)
		ok, err := s.parcelRepo.UpdateDocuments(ctx, parcelID, parcel.Version, merged)
		if err != nil {
			s.compensate(ctx, refs)
			return nil, err
		}
		if ok {
			return s.parcelRepo.GetByParcelID(ctx, parcelID)
		}

		// Version moved underneath us; re-read and retry the append.
		parcel, err = s.parcelRepo.GetByParcelID(ctx, parcelID)
		if err != nil {
			s.compensate(ctx, refs)
			return nil, err
		}
	}

	s.compensate(ctx, refs)
	return nil, fmt.Errorf("%w: document list kept changing concurrently", domain.ErrStorage)
}

// DetachAll deletes every file the parcel references. Failures are logged
// and swallowed: cleanup is best-effort and must never mask the caller's
// primary result.
func (s *DocumentService) DetachAll(ctx context.Context, parcel *models.Parcel) {
	cleanupCtx := context.WithoutCancel(ctx)
	for _, ref := range parcel.DocumentRefs() {
		if err := s.store.Delete(cleanupCtx, ref); err != nil {
			log.Printf("⚠️ Failed to delete document %s of parcel %s: %v", ref, parcel.ParcelID, err)
		}
	}
}

// saveAll validates every file against the acceptance policy, then writes
// them. Validation happens up front so a rejected file means zero writes.
// A failure mid-way deletes the files already written.
func (s *DocumentService) saveAll(ctx context.Context, parcelID string, files []*multipart.FileHeader) ([]string, error) {
	for _, header := range files {
		if err := validateFile(header); err != nil {
			return nil, err
		}
	}

	refs := make([]string, 0, len(files))
	for _, header := range files {
		ref, err := s.saveOne(ctx, parcelID, header)
		if err != nil {
			s.compensate(ctx, refs)
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (s *DocumentService) saveOne(ctx context.Context, parcelID string, header *multipart.FileHeader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	return s.store.Write(ctx, parcelID, filepath.Ext(header.Filename), src)
}

// compensate deletes files written during a failed attempt. It runs
// detached from the caller's cancellation so an aborted request still gets
// cleaned up; deletion failures are logged, never returned.
func (s *DocumentService) compensate(ctx context.Context, refs []string) {
	cleanupCtx := context.WithoutCancel(ctx)
	for _, ref := range refs {
		if err := s.store.Delete(cleanupCtx, ref); err != nil {
			log.Printf("⚠️ Failed to delete file %s during compensation: %v", ref, err)
		}
	}
}

// validateFile enforces the acceptance policy before anything is written
func validateFile(header *multipart.FileHeader) error {
	if header.Size > MaxFileSize {
		return fmt.Errorf("%w: %s", ErrFileTooLarge, header.Filename)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return fmt.Errorf("%w: %s", ErrFileTypeNotAllowed, header.Filename)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType != "" {
		if base, _, found := strings.Cut(contentType, ";"); found {
			contentType = base
		}
		if !allowedContentTypes[strings.TrimSpace(contentType)] {
			return fmt.Errorf("%w: %s", ErrFileTypeNotAllowed, header.Filename)
		}
	}
	return nil
}
