package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppErrorUnwrap(t *testing.T) {
	inner := errors.New("database unreachable")
	err := Wrap(inner, "loading group failed")

	require.ErrorIs(t, err, inner)
	require.Contains(t, err.Error(), "loading group failed")
}

func TestWithInternalDoesNotMutateOriginal(t *testing.T) {
	inner := errors.New("boom")
	withErr := ErrNotFound.WithInternal(inner)

	require.Nil(t, ErrNotFound.Internal)
	require.ErrorIs(t, withErr, inner)
	require.Equal(t, ErrNotFound.Code, withErr.Code)
}

func TestFromError(t *testing.T) {
	require.Nil(t, FromError(nil))

	appErr := FromError(ErrPreconditionFailed)
	require.Equal(t, "PRECONDITION_FAILED", appErr.Code)
	require.Equal(t, http.StatusConflict, appErr.StatusCode)

	generic := FromError(errors.New("unexpected"))
	require.Equal(t, ErrInternalServer.Code, generic.Code)
}
