package user

import (
	"context"
	"testing"

	"github.com/yungbote/examgenius-backend/internal/data/repos/testutil"
	types "github.com/yungbote/examgenius-backend/internal/domain"
	"github.com/yungbote/examgenius-backend/internal/pkg/apierr"
	"github.com/yungbote/examgenius-backend/internal/pkg/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.New(context.Background())

	u := &types.User{
		Name:           "Asha",
		Email:          "  Asha@Example.com ",
		PasswordHash:   "hash",
		TargetExamType: "Backend",
		IsActive:       true,
	}
	if err := repo.Create(dbc, u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Email != "asha@example.com" {
		t.Fatalf("Create: expected normalized email, got %q", u.Email)
	}

	got, err := repo.GetByEmail(dbc, "ASHA@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("GetByEmail: expected %s, got %s", u.ID, got.ID)
	}

	exists, err := repo.EmailExists(dbc, "asha@example.com")
	if err != nil || !exists {
		t.Fatalf("EmailExists: exists=%v err=%v", exists, err)
	}
	exists, err = repo.EmailExists(dbc, "does-not-exist@example.com")
	if err != nil || exists {
		t.Fatalf("EmailExists (missing): exists=%v err=%v", exists, err)
	}

	dup := &types.User{Name: "Other", Email: "asha@example.com", PasswordHash: "x", TargetExamType: "Other"}
	err = repo.Create(dbc, dup)
	if !apierr.IsUniqueViolation(err) {
		t.Fatalf("Create duplicate: expected unique violation, got %v", err)
	}

	if err := repo.UpdateFields(dbc, u.ID, map[string]interface{}{"college": "IIT", "year": "3"}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, err = repo.GetByID(dbc, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.College != "IIT" || got.Year != "3" {
		t.Fatalf("UpdateFields: unexpected user %+v", got)
	}

	testutil.SeedAdmin(t, context.Background(), db, "admin@example.com")
	users, err := repo.ListNonAdmin(dbc, 10, 0)
	if err != nil {
		t.Fatalf("ListNonAdmin: %v", err)
	}
	if len(users) != 1 || users[0].ID != u.ID {
		t.Fatalf("ListNonAdmin: unexpected %+v", users)
	}
	count, err := repo.CountNonAdmin(dbc)
	if err != nil || count != 1 {
		t.Fatalf("CountNonAdmin: count=%d err=%v", count, err)
	}
}
