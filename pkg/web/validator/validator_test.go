package validator

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sellRequest struct {
	CharacterName string   `json:"characterName" validate:"charname"`
	Bench         []string `json:"bench" validate:"dive,charname"`
}

func TestCharacterName(t *testing.T) {
	v := validator.New()
	Register(v)

	tests := []struct {
		name string
		in   string
		ok   bool
	}{
		{"plain", "Ace", true},
		{"inner space", "Golden Striker", true},
		{"empty", "", false},
		{"blank", "   ", false},
		{"leading space", " Ace", false},
		{"max length", strings.Repeat("a", MaxCharacterNameLen), true},
		{"too long", strings.Repeat("a", MaxCharacterNameLen+1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(sellRequest{CharacterName: tt.in})
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestErrorsUseJSONNames(t *testing.T) {
	v := validator.New()
	Register(v)

	err := v.Struct(sellRequest{CharacterName: "Ace", Bench: []string{"Blaze", ""}})
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, "bench[1]", verrs[0].Field())
	assert.Equal(t, "charname", verrs[0].Tag())
}
