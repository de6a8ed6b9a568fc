package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTaxonomyStatuses(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
		is     error
	}{
		{Validation("bad %s", "input"), http.StatusBadRequest, "validation_error", ErrValidation},
		{NotFound("attempt not found"), http.StatusNotFound, "not_found", ErrNotFound},
		{Conflict("already started"), http.StatusConflict, "conflict", ErrConflict},
		{Unauthorized("no token"), http.StatusUnauthorized, "unauthorized", ErrUnauthorized},
		{Forbidden("admins only"), http.StatusForbidden, "forbidden", ErrForbidden},
		{Internal("finish", errors.New("boom")), http.StatusInternalServerError, "internal_error", ErrInternal},
	}
	for _, tc := range cases {
		require.Equal(t, tc.status, Status(tc.err), tc.err.Error())
		require.Equal(t, tc.code, Code(tc.err))
		require.ErrorIs(t, tc.err, tc.is)
	}
}

func TestInternalHidesCause(t *testing.T) {
	err := Internal("load attempt", errors.New("pq: password authentication failed"))
	require.Equal(t, "internal server error", PublicMessage(err))
	require.Contains(t, fmt.Sprintf("%v", errors.Unwrap(err)), "password authentication failed")
}

func TestFromDB(t *testing.T) {
	require.NoError(t, FromDB("op", nil, ""))

	nf := FromDB("load test", gorm.ErrRecordNotFound, "test not found or inactive")
	require.Equal(t, http.StatusNotFound, Status(nf))
	require.Equal(t, "test not found or inactive", PublicMessage(nf))

	dup := FromDB("create attempt", &pgconn.PgError{Code: "23505"}, "")
	require.Equal(t, http.StatusConflict, Status(dup))

	dup2 := FromDB("create attempt", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), "")
	require.Equal(t, http.StatusConflict, Status(dup2))

	other := FromDB("query", errors.New("connection reset"), "")
	require.Equal(t, http.StatusInternalServerError, Status(other))

	already := Validation("keep me")
	require.Same(t, already, FromDB("op", already, ""))
}

func TestPlainErrorDefaults(t *testing.T) {
	err := errors.New("raw")
	require.Equal(t, http.StatusInternalServerError, Status(err))
	require.Equal(t, "internal_error", Code(err))
	require.Equal(t, "internal server error", PublicMessage(err))
}
