package services

import (
	"context"
	"errors"
	"testing"

	"dloms-api/internal/core/domain"
)

func seedAdmin(t *testing.T, repo *fakeUserRepository, svc *UserService) uint {
	t.Helper()
	user, err := svc.CreateUser(context.Background(), &CreateUserInput{
		Username: "admin1",
		Email:    "admin1@example.org",
		Password: "longenough1",
		Role:     string(domain.RoleAdmin),
	})
	if err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	return user.ID
}

func TestCreateUserRequiresExplicitValidRole(t *testing.T) {
	svc := NewUserService(newFakeUserRepository())
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, &CreateUserInput{
		Username: "v1", Email: "v1@example.org", Password: "longenough1", Role: "",
	})
	if !errors.Is(err, ErrInvalidRole) {
		t.Errorf("empty role: expected ErrInvalidRole, got %v", err)
	}

	user, err := svc.CreateUser(ctx, &CreateUserInput{
		Username: "v1", Email: "v1@example.org", Password: "longenough1",
		Role: string(domain.RoleVerifier),
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Role != string(domain.RoleVerifier) || !user.IsActive {
		t.Errorf("unexpected created user: %+v", user)
	}
}

func TestUpdateUserCannotChangeOwnRole(t *testing.T) {
	repo := newFakeUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()
	adminID := seedAdmin(t, repo, svc)

	role := string(domain.RoleFieldOfficer)
	_, err := svc.UpdateUser(ctx, adminID, adminID, &UpdateUserInput{Role: &role})
	if !errors.Is(err, ErrCannotChangeOwnRole) {
		t.Errorf("expected ErrCannotChangeOwnRole, got %v", err)
	}

	// Other fields on the own account are fine
	email := "newmail@example.org"
	updated, err := svc.UpdateUser(ctx, adminID, adminID, &UpdateUserInput{Email: &email})
	if err != nil {
		t.Fatalf("own email update: %v", err)
	}
	if updated.Email != email {
		t.Errorf("email not updated: %q", updated.Email)
	}
}

func TestUpdateUserRoleAndActiveFlag(t *testing.T) {
	repo := newFakeUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()
	adminID := seedAdmin(t, repo, svc)

	target, err := svc.CreateUser(ctx, &CreateUserInput{
		Username: "officer9", Email: "officer9@example.org", Password: "longenough1",
		Role: string(domain.RoleFieldOfficer),
	})
	if err != nil {
		t.Fatalf("create target: %v", err)
	}

	badRole := "superuser"
	if _, err := svc.UpdateUser(ctx, adminID, target.ID, &UpdateUserInput{Role: &badRole}); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("expected ErrInvalidRole, got %v", err)
	}

	role := string(domain.RoleVerifier)
	inactive := false
	updated, err := svc.UpdateUser(ctx, adminID, target.ID, &UpdateUserInput{Role: &role, IsActive: &inactive})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.Role != role || updated.IsActive {
		t.Errorf("unexpected updated user: %+v", updated)
	}
}

func TestDeleteUserRejectsSelf(t *testing.T) {
	repo := newFakeUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()
	adminID := seedAdmin(t, repo, svc)

	if err := svc.DeleteUser(ctx, adminID, adminID); !errors.Is(err, ErrCannotDeleteSelf) {
		t.Errorf("expected ErrCannotDeleteSelf, got %v", err)
	}

	target, err := svc.CreateUser(ctx, &CreateUserInput{
		Username: "temp", Email: "temp@example.org", Password: "longenough1",
		Role: string(domain.RoleFieldOfficer),
	})
	if err != nil {
		t.Fatalf("create target: %v", err)
	}
	if err := svc.DeleteUser(ctx, adminID, target.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := repo.GetByID(ctx, target.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected user gone, got %v", err)
	}

	if err := svc.DeleteUser(ctx, adminID, 999); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("missing user: expected ErrUserNotFound, got %v", err)
	}
}
