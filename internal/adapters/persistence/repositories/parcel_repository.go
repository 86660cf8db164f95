package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"dloms-api/internal/adapters/persistence/models"
	"dloms-api/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// parcelRepository implements ParcelRepository on GORM/MySQL
type parcelRepository struct {
	db *gorm.DB
}

// NewParcelRepository creates a new parcel repository
func NewParcelRepository(db *gorm.DB) ParcelRepository {
	return &parcelRepository{db: db}
}

// Insert creates a new parcel. The unique index on parcel_id makes the
// duplicate check race-safe at the storage engine, not in application code.
func (r *parcelRepository) Insert(ctx context.Context, parcel *models.Parcel) error {
	if err := r.db.WithContext(ctx).Create(parcel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrParcelAlreadyExists
		}
		return err
	}
	return nil
}

// GetByParcelID gets a parcel by its public parcel ID
func (r *parcelRepository) GetByParcelID(ctx context.Context, parcelID string) (*models.Parcel, error) {
	var parcel models.Parcel
	err := r.db.WithContext(ctx).
		Preload("RegisteredBy").
		Where("parcel_id = ?", parcelID).
		First(&parcel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrParcelNotFound
		}
		return nil, err
	}
	return &parcel, nil
}

// List lists parcels matching the filter
func (r *parcelRepository) List(ctx context.Context, filter ParcelFilter) ([]*models.Parcel, error) {
	query := r.db.WithContext(ctx).Model(&models.Parcel{}).Preload("RegisteredBy")

	if filter.Search != "" {
		term := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(parcel_id) LIKE ? OR LOWER(owner_name) LIKE ? OR LOWER(owner_id_number) LIKE ?",
			term, term, term,
		)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var parcels []*models.Parcel
	if err := query.Order("created_at DESC").Find(&parcels).Error; err != nil {
		return nil, err
	}
	return parcels, nil
}

// ListWithinBBox returns parcels whose bounding box is contained in the
// query rectangle. The idx_parcels_bbox composite index keeps this
// sub-linear; there is no fallback scan path.
func (r *parcelRepository) ListWithinBBox(ctx context.Context, minLon, minLat, maxLon, maxLat float64) ([]*models.Parcel, error) {
	var parcels []*models.Parcel
	err := r.db.WithContext(ctx).
		Preload("RegisteredBy").
		Where("min_lon >= ? AND max_lon <= ? AND min_lat >= ? AND max_lat <= ?",
			minLon, maxLon, minLat, maxLat).
		Order("parcel_id").
		Find(&parcels).Error
	if err != nil {
		return nil, err
	}
	return parcels, nil
}

// Update replaces the mutable lifecycle fields of a parcel (last writer
// wins). The document list and its version guard are owned by
// UpdateDocuments and are never written here, so an update carrying stale
// values cannot roll back a concurrent append.
func (r *parcelRepository) Update(ctx context.Context, parcel *models.Parcel) error {
	return r.db.WithContext(ctx).
		Omit("documents", "version", clause.Associations).
		Save(parcel).Error
}

// UpdateDocuments performs a version-conditioned replace of the document
// list. A false return means another writer got there first.
func (r *parcelRepository) UpdateDocuments(ctx context.Context, parcelID string, expectedVersion int, refs []string) (bool, error) {
	data, err := json.Marshal(refs)
	if err != nil {
		return false, err
	}

	result := r.db.WithContext(ctx).
		Model(&models.Parcel{}).
		Where("parcel_id = ? AND version = ?", parcelID, expectedVersion).
		Updates(map[string]interface{}{
			"documents": string(data),
			"version":   gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete removes a parcel permanently
func (r *parcelRepository) Delete(ctx context.Context, parcelID string) error {
	result := r.db.WithContext(ctx).
		Where("parcel_id = ?", parcelID).
		Delete(&models.Parcel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrParcelNotFound
	}
	return nil
}

// AllDocumentRefs collects every stored file reference, used by the
// orphaned-file sweeper to decide what is safe to reclaim
func (r *parcelRepository) AllDocumentRefs(ctx context.Context) (map[string]struct{}, error) {
	var lists []string
	err := r.db.WithContext(ctx).
		Model(&models.Parcel{}).
		Where("documents IS NOT NULL AND documents != ''").
		Pluck("documents", &lists).Error
	if err != nil {
		return nil, err
	}

	refs := make(map[string]struct{})
	for _, list := range lists {
		var decoded []string
		if err := json.Unmarshal([]byte(list), &decoded); err != nil {
			continue
		}
		for _, ref := range decoded {
			refs[ref] = struct{}{}
		}
	}
	return refs, nil
}
