package services

import (
	"context"
	"io"
	"mime/multipart"

	"dloms-api/internal/adapters/persistence/models"
)

// FileStore is the durable document store consumed by the attachment
// manager. Write returns a stable reference that is unique by contract;
// callers never invent filenames.
type FileStore interface {
	Write(ctx context.Context, prefix, ext string, r io.Reader) (string, error)
	Delete(ctx context.Context, ref string) error
}

// DocumentManager coordinates file-store writes with parcel-record updates
// so the two stay consistent despite the absence of a transaction spanning
// both. Implemented by DocumentService.
type DocumentManager interface {
	CreateWithDocuments(ctx context.Context, parcel *models.Parcel, files []*multipart.FileHeader) (*models.Parcel, error)
	AttachNew(ctx context.Context, parcelID string, files []*multipart.FileHeader) (*models.Parcel, error)
	DetachAll(ctx context.Context, parcel *models.Parcel)
}
