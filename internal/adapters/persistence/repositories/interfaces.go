package repositories

import (
	"context"

	"dloms-api/internal/adapters/persistence/models"
)

// ParcelFilter narrows parcel listings. Search is a case-insensitive
// substring match against parcel ID, owner name and owner ID number
// (OR-combined); Status is an exact match. Both combine with AND.
type ParcelFilter struct {
	Search string
	Status string
}

// ParcelRepository defines parcel persistence operations
type ParcelRepository interface {
	// Insert persists a new parcel. Uniqueness of the parcel ID is enforced
	// by the storage engine's unique index, so concurrent inserts of the
	// same ID surface domain.ErrParcelAlreadyExists for all but one caller.
	Insert(ctx context.Context, parcel *models.Parcel) error
	GetByParcelID(ctx context.Context, parcelID string) (*models.Parcel, error)
	List(ctx context.Context, filter ParcelFilter) ([]*models.Parcel, error)
	// ListWithinBBox returns parcels whose geometry falls within the
	// axis-aligned rectangle. All four bounds are mandatory.
	ListWithinBBox(ctx context.Context, minLon, minLat, maxLon, maxLat float64) ([]*models.Parcel, error)
	// Update replaces the mutable lifecycle fields of a parcel (last writer
	// wins). The documents list and its version counter are excluded: they
	// belong to UpdateDocuments exclusively, so a stale read can never undo
	// a concurrent append.
	Update(ctx context.Context, parcel *models.Parcel) error
	// UpdateDocuments replaces the document list only when the stored
	// version still matches expectedVersion. Returns false on a version
	// conflict so the caller can re-read and retry.
	UpdateDocuments(ctx context.Context, parcelID string, expectedVersion int, refs []string) (bool, error)
	Delete(ctx context.Context, parcelID string) error
	// AllDocumentRefs returns every file reference held by any parcel
	AllDocumentRefs(ctx context.Context) (map[string]struct{}, error)
}

// UserRepository defines user persistence operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
