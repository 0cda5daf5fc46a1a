package services

import (
	"maidgroup-backend/models"

	"gorm.io/gorm"
)

// Authorize is the single allow/deny decision shared by every mutating and
// single-resource read operation. Admins are always allowed; everyone else
// only when they own the target resource. Pure decision over loaded entities.
func Authorize(requester *models.User, ownerID *uint) error {
	if requester == nil {
		return ErrUnauthorized
	}
	if requester.IsAdmin() {
		return nil
	}
	if ownerID != nil && *ownerID == requester.ID {
		return nil
	}
	return ErrUnauthorized
}

func RequireAdmin(requester *models.User) error {
	if requester == nil || !requester.IsAdmin() {
		return ErrUnauthorized
	}
	return nil
}

// ScopeToOwner narrows listing queries to the requester's own rows. Listings
// never deny; non-admins just see a filtered result set.
func ScopeToOwner(db *gorm.DB, requester *models.User) *gorm.DB {
	if requester != nil && requester.IsAdmin() {
		return db
	}
	if requester == nil {
		return db.Where("user_id IS NULL")
	}
	return db.Where("user_id = ?", requester.ID)
}
