package gameerr

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	weberrors "github.com/lk2023060901/kickoff/pkg/web/errors"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"direct", New(KindInsufficientFunds, "need %d", 500), KindInsufficientFunds},
		{"wrapped", errors.Wrap(New(KindMaxLevelReached, "max"), "enhance"), KindMaxLevelReached},
		{"plain", errors.New("connection reset"), KindStoreFailure},
		{"store", Store(errors.New("boom"), "update account"), KindStoreFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorIs(t *testing.T) {
	err := errors.Wrap(New(KindOwnsNoCharacter, "no such character"), "enhance")
	assert.True(t, errors.Is(err, ErrOwnsNoCharacter))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestStore_KeepsBusinessError(t *testing.T) {
	orig := New(KindNotFound, "account 1")
	assert.Same(t, orig, Store(orig, "get account"))
	assert.Nil(t, Store(nil, "noop"))

	wrapped := Store(errors.New("timeout"), "lock account")
	require.Error(t, wrapped)
	assert.Contains(t, wrapped.Error(), "store: lock account")
	assert.Contains(t, errors.GetAllDetails(wrapped), "StoreFailure")
}

func TestCodes(t *testing.T) {
	assert.Equal(t, weberrors.CodeNotFound, KindNotFound.Code())
	assert.Equal(t, weberrors.CodeInternalError, KindStoreFailure.Code())
	assert.Equal(t, 40302, KindInsufficientMaterial.Code())
	assert.Equal(t, 400, weberrors.CodeToStatus(KindInsufficientFunds.Code()))
	assert.Equal(t, "Kind(99)", Kind(99).String())
}

func TestWithData(t *testing.T) {
	e := New(KindInsufficientMaterial, "not enough").WithData("required", 10, "available", 3, 7)
	assert.Equal(t, map[string]any{"required": 10, "available": 3}, e.Data)
	assert.True(t, IsValidation(e))
	assert.False(t, IsValidation(errors.New("x")))
	assert.False(t, IsValidation(nil))
}
