package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"kasir-system/internal/apperr"
	"kasir-system/internal/database/models"
	"kasir-system/internal/services/user/store"
	"kasir-system/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

type fakeRevoker struct {
	revoked map[string]time.Duration
}

func (f *fakeRevoker) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if f.revoked == nil {
		f.revoked = make(map[string]time.Duration)
	}
	f.revoked[jti] = ttl
	return nil
}

func newService(t *testing.T) (*Service, *fakeRevoker) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("kasir123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	st := store.NewMemoryStore(
		models.User{Name: "Kasir Apotek", Email: "kasir@apotek.com", Password: string(hash), Role: models.RoleKasir},
		models.User{Name: "Superadmin Apotek", Email: "super@apotek.com", Password: string(hash), Role: models.RoleSuperadmin},
	)
	rev := &fakeRevoker{}
	svc := NewService(st, utils.NewTokenIssuer("secret", time.Hour, "farma"), rev, models.FarmaRoles)
	return svc, rev
}

func TestLogin(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	res, err := svc.Login(ctx, "KASIR@apotek.com", "kasir123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Role != models.RoleKasir || res.Token == "" || res.TokenType != "Bearer" {
		t.Fatalf("unexpected login result %+v", res)
	}
	if res.User.LastLogin == nil {
		t.Fatalf("expected last login to be set")
	}

	if _, err := svc.Login(ctx, "kasir@apotek.com", "wrong"); apperr.HTTPStatus(err) != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@apotek.com", "kasir123"); apperr.HTTPStatus(err) != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown email, got %v", err)
	}
}

func TestLogoutRevokesForRemainingLifetime(t *testing.T) {
	svc, rev := newService(t)
	issuer := utils.NewTokenIssuer("secret", time.Hour, "farma")
	_, claims, _ := issuer.GenerateToken(models.User{ID: 1, Role: models.RoleKasir})

	if err := svc.Logout(context.Background(), claims); err != nil {
		t.Fatalf("logout: %v", err)
	}
	ttl, ok := rev.revoked[claims.ID]
	if !ok || ttl <= 0 || ttl > time.Hour {
		t.Fatalf("expected revocation with ttl within token lifetime, got %v", ttl)
	}
}

func TestCreateUserValidatesRoleAndEmail(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateUserInput{Name: "Chef", Email: "chef@apotek.com", Password: "secret1", Role: models.RoleChef})
	if apperr.HTTPStatus(err) != http.StatusUnprocessableEntity || apperr.Fields(err)["role"] == "" {
		t.Fatalf("expected role validation error, got %v", err)
	}

	_, err = svc.Create(ctx, CreateUserInput{Name: "Dup", Email: "kasir@apotek.com", Password: "secret1", Role: models.RoleKasir})
	if apperr.HTTPStatus(err) != http.StatusConflict {
		t.Fatalf("expected conflict on duplicate email, got %v", err)
	}

	_, err = svc.Create(ctx, CreateUserInput{Name: "Outlet", Email: "o@apotek.com", Password: "secret1", Role: models.RoleKasir, CafeID: new(int64)})
	if apperr.HTTPStatus(err) != http.StatusUnprocessableEntity {
		t.Fatalf("expected cafe_id to be rejected without a lookup, got %v", err)
	}

	user, err := svc.Create(ctx, CreateUserInput{Name: "Apoteker", Email: "Apoteker@Apotek.com", Password: "secret1", Role: models.RoleApoteker})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.Email != "apoteker@apotek.com" || user.Password == "secret1" {
		t.Fatalf("expected normalized email and hashed password, got %+v", user)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	role := models.RoleApoteker
	user, err := svc.Update(ctx, 1, UpdateUserInput{Role: &role})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if user.Role != models.RoleApoteker {
		t.Fatalf("expected role change, got %s", user.Role)
	}

	if _, err := svc.Update(ctx, 99, UpdateUserInput{}); apperr.HTTPStatus(err) != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}

	if err := svc.Delete(ctx, 2, 2); apperr.HTTPStatus(err) != http.StatusBadRequest {
		t.Fatalf("expected self delete to be rejected, got %v", err)
	}
	if err := svc.Delete(ctx, 1, 2); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, 1); apperr.HTTPStatus(err) != http.StatusNotFound {
		t.Fatalf("expected deleted user to be gone, got %v", err)
	}
}

func TestCafeLookup(t *testing.T) {
	svc, _ := newService(t)
	svc.WithCafeLookup(func(_ context.Context, id int64) (bool, error) { return id == 1, nil })

	one, two := int64(1), int64(2)
	if _, err := svc.Create(context.Background(), CreateUserInput{Name: "A", Email: "a@x.com", Password: "secret1", Role: models.RoleKasir, CafeID: &two}); apperr.HTTPStatus(err) != http.StatusUnprocessableEntity {
		t.Fatalf("expected unknown cafe to be rejected, got %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateUserInput{Name: "B", Email: "b@x.com", Password: "secret1", Role: models.RoleKasir, CafeID: &one}); err != nil {
		t.Fatalf("expected known cafe to be accepted: %v", err)
	}
}
