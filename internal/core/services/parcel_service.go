package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"dloms-api/internal/adapters/persistence/models"
	"dloms-api/internal/adapters/persistence/repositories"
	"dloms-api/internal/core/domain"
	"dloms-api/internal/pkg/geojson"
)

// Parcel service errors
var (
	ErrRoleNotAllowed   = errors.New("role is not authorized for this action")
	ErrNotParcelOwner   = errors.New("not authorized to update this parcel")
	ErrStatusRestricted = errors.New("only admin or verifier can set this status")
	ErrInvalidStatus    = errors.New("invalid status provided")
	ErrInvalidGeometry  = errors.New("invalid GeoJSON polygon")
)

// ParcelService is the single entry point for parcel lifecycle operations.
// It owns every role, ownership and status rule itself — it stays correct
// no matter which entry point invokes it, never relying on an upstream
// route gate.
type ParcelService struct {
	parcelRepo repositories.ParcelRepository
	documents  DocumentManager
}

// NewParcelService creates a new parcel service
func NewParcelService(parcelRepo repositories.ParcelRepository, documents DocumentManager) *ParcelService {
	return &ParcelService{
		parcelRepo: parcelRepo,
		documents:  documents,
	}
}

// CreateParcelInput represents create parcel input
type CreateParcelInput struct {
	ParcelID     string
	OwnerDetails domain.OwnerDetails
	Geometry     []byte
	Status       string
}

// UpdateParcelInput represents update parcel input; nil fields are left
// untouched
type UpdateParcelInput struct {
	OwnerDetails *domain.OwnerDetails
	Geometry     []byte
	Status       *string
}

// Create registers a new land parcel. Only field officers and admins may
// create parcels; the actor becomes the registrant.
func (s *ParcelService) Create(ctx context.Context, actor domain.Actor, input *CreateParcelInput, files []*multipart.FileHeader) (*models.Parcel, error) {
	if actor.Role != domain.RoleFieldOfficer && actor.Role != domain.RoleAdmin {
		return nil, ErrRoleNotAllowed
	}

	parcelID := NormalizeParcelID(input.ParcelID)
	if parcelID == "" {
		return nil, fmt.Errorf("%w: parcel ID is required", domain.ErrInvalidInput)
	}
	if input.OwnerDetails.OwnerName == "" {
		return nil, fmt.Errorf("%w: owner name is required", domain.ErrInvalidInput)
	}
	if input.OwnerDetails.IDNumber == "" {
		return nil, fmt.Errorf("%w: owner ID number is required", domain.ErrInvalidInput)
	}

	poly, err := geojson.ParsePolygon(input.Geometry)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
	}

	status := domain.StatusPendingVerification
	if input.Status != "" {
		status = domain.ParcelStatus(input.Status)
		if !domain.ValidStatus(status) {
			return nil, ErrInvalidStatus
		}
	}

	parcel := &models.Parcel{
		ParcelID:       parcelID,
		Status:         string(status),
		RegisteredByID: actor.UserID,
	}
	parcel.SetOwnerDetails(input.OwnerDetails)
	if err := applyGeometry(parcel, poly); err != nil {
		return nil, err
	}

	created, err := s.documents.CreateWithDocuments(ctx, parcel, files)
	if err != nil {
		return nil, err
	}

	// Re-read to expand the registrant for the response; the parcel is
	// already durable at this point.
	if full, err := s.parcelRepo.GetByParcelID(ctx, created.ParcelID); err == nil {
		return full, nil
	}
	return created, nil
}

// Get returns a single parcel by its public ID
func (s *ParcelService) Get(ctx context.Context, parcelID string) (*models.Parcel, error) {
	return s.parcelRepo.GetByParcelID(ctx, NormalizeParcelID(parcelID))
}

// List returns parcels matching an optional search term and status filter
func (s *ParcelService) List(ctx context.Context, search, status string) ([]*models.Parcel, error) {
	return s.parcelRepo.List(ctx, repositories.ParcelFilter{
		Search: search,
		Status: status,
	})
}

// Update patches owner details, geometry and/or status of a parcel.
// Field officers may only touch parcels they registered; setting the status
// to verified or disputed requires admin or verifier.
func (s *ParcelService) Update(ctx context.Context, actor domain.Actor, parcelID string, patch *UpdateParcelInput) (*models.Parcel, error) {
	if !domain.ValidRole(actor.Role) {
		return nil, ErrRoleNotAllowed
	}

	parcel, err := s.parcelRepo.GetByParcelID(ctx, NormalizeParcelID(parcelID))
	if err != nil {
		return nil, err
	}

	if actor.Role == domain.RoleFieldOfficer && parcel.RegisteredByID != actor.UserID {
		return nil, ErrNotParcelOwner
	}

	if patch.OwnerDetails != nil {
		if patch.OwnerDetails.OwnerName == "" {
			return nil, fmt.Errorf("%w: owner name is required", domain.ErrInvalidInput)
		}
		if patch.OwnerDetails.IDNumber == "" {
			return nil, fmt.Errorf("%w: owner ID number is required", domain.ErrInvalidInput)
		}
		parcel.SetOwnerDetails(*patch.OwnerDetails)
	}

	if len(patch.Geometry) > 0 {
		poly, err := geojson.ParsePolygon(patch.Geometry)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
		}
		if err := applyGeometry(parcel, poly); err != nil {
			return nil, err
		}
	}

	if patch.Status != nil {
		status := domain.ParcelStatus(*patch.Status)
		if !domain.ValidStatus(status) {
			return nil, ErrInvalidStatus
		}
		// Any status may move to any other status; the only structural
		// rule is the role gate on verified/disputed.
		if status == domain.StatusVerified || status == domain.StatusDisputed {
			if actor.Role != domain.RoleAdmin && actor.Role != domain.RoleVerifier {
				return nil, ErrStatusRestricted
			}
		}
		parcel.Status = string(status)
	}

	if err := s.parcelRepo.Update(ctx, parcel); err != nil {
		return nil, err
	}
	return parcel, nil
}

// AddDocuments appends uploaded documents to an existing parcel. All three
// roles may attach documents.
func (s *ParcelService) AddDocuments(ctx context.Context, actor domain.Actor, parcelID string, files []*multipart.FileHeader) (*models.Parcel, error) {
	if !domain.ValidRole(actor.Role) {
		return nil, ErrRoleNotAllowed
	}
	return s.documents.AttachNew(ctx, NormalizeParcelID(parcelID), files)
}

// Delete removes a parcel and reclaims its documents. Admin only. File
// cleanup is best-effort and runs first; the record delete is the operation
// of record — if it fails the parcel still exists and the error surfaces.
func (s *ParcelService) Delete(ctx context.Context, actor domain.Actor, parcelID string) error {
	if actor.Role != domain.RoleAdmin {
		return ErrRoleNotAllowed
	}

	id := NormalizeParcelID(parcelID)
	parcel, err := s.parcelRepo.GetByParcelID(ctx, id)
	if err != nil {
		return err
	}

	s.documents.DetachAll(ctx, parcel)
	return s.parcelRepo.Delete(ctx, id)
}

// ListWithinBoundingBox returns parcels whose geometry falls within the
// given axis-aligned rectangle. Any authenticated actor may query.
func (s *ParcelService) ListWithinBoundingBox(ctx context.Context, minLon, minLat, maxLon, maxLat float64) ([]*models.Parcel, error) {
	return s.parcelRepo.ListWithinBBox(ctx, minLon, minLat, maxLon, maxLat)
}

// NormalizeParcelID canonicalizes a parcel ID for storage and lookup
func NormalizeParcelID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// applyGeometry stores the normalized polygon and refreshes the indexed
// bounding-box columns alongside it
func applyGeometry(parcel *models.Parcel, poly *geojson.Polygon) error {
	data, err := poly.MarshalGeoJSON()
	if err != nil {
		return err
	}
	bbox := poly.BoundingBox()
	parcel.Geometry = string(data)
	parcel.MinLon = bbox.MinLon
	parcel.MinLat = bbox.MinLat
	parcel.MaxLon = bbox.MaxLon
	parcel.MaxLat = bbox.MaxLat
	return nil
}
