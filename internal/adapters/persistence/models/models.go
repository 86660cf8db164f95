package models

import (
	"encoding/json"
	"time"

	"dloms-api/internal/core/domain"

	"gorm.io/gorm"
)

// User represents users table
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'field_officer'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Parcel represents the land_parcels table.
//
// Geometry is stored as normalized single-ring GeoJSON text; MinLon..MaxLat
// hold its precomputed bounding box and back the spatial query through the
// composite idx_parcels_bbox index (an R-tree-less prefilter; a raw table
// scan is never needed for bbox lookups).
//
// Version guards the documents list: appends go through a version-conditioned
// UPDATE so concurrent attachments cannot lose each other's references.
type Parcel struct {
	ID            uint    `gorm:"primaryKey" json:"-"`
	ParcelID      string  `gorm:"uniqueIndex;size:50;not null" json:"parcelId"`
	OwnerName     string  `gorm:"size:150;not null" json:"-"`
	OwnerIDNumber string  `gorm:"size:50;not null" json:"-"`
	OwnerContact  string  `gorm:"size:100" json:"-"`
	OwnerAddress  string  `gorm:"size:255" json:"-"`
	Geometry      string  `gorm:"type:json;not null" json:"-"`
	Documents     string  `gorm:"type:json" json:"-"`
	Status        string  `gorm:"size:30;default:'pending_verification';index" json:"status"`
	MinLon        float64 `gorm:"index:idx_parcels_bbox,priority:1" json:"-"`
	MinLat        float64 `gorm:"index:idx_parcels_bbox,priority:2" json:"-"`
	MaxLon        float64 `gorm:"index:idx_parcels_bbox,priority:3" json:"-"`
	MaxLat        float64 `gorm:"index:idx_parcels_bbox,priority:4" json:"-"`
	Version       int     `gorm:"default:0" json:"-"`

	RegisteredByID uint `gorm:"index;not null" json:"-"`
	RegisteredBy   User `gorm:"foreignKey:RegisteredByID" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Parcel) TableName() string {
	return "land_parcels"
}

// DocumentRefs decodes the stored document reference list
func (p *Parcel) DocumentRefs() []string {
	if p.Documents == "" {
		return []string{}
	}
	var refs []string
	if err := json.Unmarshal([]byte(p.Documents), &refs); err != nil {
		return []string{}
	}
	return refs
}

// SetDocumentRefs encodes the document reference list for storage
func (p *Parcel) SetDocumentRefs(refs []string) {
	if refs == nil {
		refs = []string{}
	}
	data, _ := json.Marshal(refs)
	p.Documents = string(data)
}

// OwnerDetails assembles the embedded owner fields
func (p *Parcel) OwnerDetails() domain.OwnerDetails {
	return domain.OwnerDetails{
		OwnerName: p.OwnerName,
		IDNumber:  p.OwnerIDNumber,
		Contact:   p.OwnerContact,
		Address:   p.OwnerAddress,
	}
}

// SetOwnerDetails spreads owner details over the embedded columns
func (p *Parcel) SetOwnerDetails(o domain.OwnerDetails) {
	p.OwnerName = o.OwnerName
	p.OwnerIDNumber = o.IDNumber
	p.OwnerContact = o.Contact
	p.OwnerAddress = o.Address
}

// RegisteredByResponse is the expanded registrant in API responses
type RegisteredByResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Email    string `json:"email"`
}

// ParcelResponse DTO
type ParcelResponse struct {
	ParcelID     string                `json:"parcelId"`
	OwnerDetails domain.OwnerDetails   `json:"ownerDetails"`
	Geometry     json.RawMessage       `json:"geometry"`
	Documents    []string              `json:"documents"`
	Status       string                `json:"status"`
	RegisteredBy *RegisteredByResponse `json:"registeredBy,omitempty"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

func (p *Parcel) ToResponse() *ParcelResponse {
	resp := &ParcelResponse{
		ParcelID:     p.ParcelID,
		OwnerDetails: p.OwnerDetails(),
		Geometry:     json.RawMessage(p.Geometry),
		Documents:    p.DocumentRefs(),
		Status:       p.Status,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if p.RegisteredBy.ID != 0 {
		resp.RegisteredBy = &RegisteredByResponse{
			Username: p.RegisteredBy.Username,
			Role:     p.RegisteredBy.Role,
			Email:    p.RegisteredBy.Email,
		}
	}
	return resp
}

// ParcelsToResponse maps a slice of parcels to DTOs
func ParcelsToResponse(parcels []*Parcel) []*ParcelResponse {
	out := make([]*ParcelResponse, len(parcels))
	for i, p := range parcels {
		out[i] = p.ToResponse()
	}
	return out
}

// AutoMigrate creates or updates all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Parcel{},
	)
}
