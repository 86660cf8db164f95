package domain

// Role represents user role in the system
type Role string

const (
	RoleFieldOfficer Role = "field_officer"
	RoleVerifier     Role = "verifier"
	RoleAdmin        Role = "admin"
)

// ValidRole reports whether r is one of the known roles
func ValidRole(r Role) bool {
	switch r {
	case RoleFieldOfficer, RoleVerifier, RoleAdmin:
		return true
	}
	return false
}

// ParcelStatus represents the verification status of a land parcel
type ParcelStatus string

const (
	StatusPendingVerification ParcelStatus = "pending_verification"
	StatusVerified            ParcelStatus = "verified"
	StatusDisputed            ParcelStatus = "disputed"
	StatusRegistered          ParcelStatus = "registered"
)

// ValidStatus reports whether s is one of the known parcel statuses
func ValidStatus(s ParcelStatus) bool {
	switch s {
	case StatusPendingVerification, StatusVerified, StatusDisputed, StatusRegistered:
		return true
	}
	return false
}

// Actor is the authenticated identity performing an operation.
// Role and ownership checks always receive the actor explicitly; there is
// no ambient current-user state anywhere in the core.
type Actor struct {
	UserID   uint
	Username string
	Role     Role
}

// OwnerDetails holds the owner information embedded in a parcel
type OwnerDetails struct {
	OwnerName string `json:"ownerName"`
	IDNumber  string `json:"idNumber"`
	Contact   string `json:"contact,omitempty"`
	Address   string `json:"address,omitempty"`
}
