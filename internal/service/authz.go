package service

import (
	"github.com/noah-isme/uni-adm-api/internal/models"
	appErrors "github.com/noah-isme/uni-adm-api/pkg/errors"
)

// Authorization checks shared by every service. Role gates happen at the
// router; these helpers enforce the ownership rules that depend on the
// loaded resource.

// requireClaims guards against handlers invoked without an authenticated
// principal attached.
func requireClaims(claims *models.JWTClaims) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	return nil
}

// requireStudent permits students only.
func requireStudent(claims *models.JWTClaims) error {
	if err := requireClaims(claims); err != nil {
		return err
	}
	if claims.Role != models.RoleStudent {
		return appErrors.ErrForbidden
	}
	return nil
}

// requireReviewer permits staff and admin only.
func requireReviewer(claims *models.JWTClaims) error {
	if err := requireClaims(claims); err != nil {
		return err
	}
	if !claims.Role.IsReviewer() {
		return appErrors.ErrForbidden
	}
	return nil
}

// requireOwnerOrReviewer permits the resource owner plus staff and admin.
func requireOwnerOrReviewer(claims *models.JWTClaims, ownerID string) error {
	if err := requireClaims(claims); err != nil {
		return err
	}
	if claims.Role.IsReviewer() || claims.UserID == ownerID {
		return nil
	}
	return appErrors.ErrForbidden
}

// requireOwnerOrAdmin permits the resource owner plus admin. Staff are
// excluded: they may review resources but not mutate someone else's.
func requireOwnerOrAdmin(claims *models.JWTClaims, ownerID string) error {
	if err := requireClaims(claims); err != nil {
		return err
	}
	if claims.Role == models.RoleAdmin || claims.UserID == ownerID {
		return nil
	}
	return appErrors.ErrForbidden
}
