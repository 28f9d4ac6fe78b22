package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  string
	}{
		{name: "simple", username: "asha"},
		{name: "mixed with underscore", username: "Asha_Rao_1987"},
		{name: "min length", username: "abc"},
		{name: "max length", username: strings.Repeat("a", 32)},
		{name: "empty", username: "", wantErr: "username is required"},
		{name: "too short", username: "ab", wantErr: "username must be 3-32 characters"},
		{name: "too long", username: strings.Repeat("a", 33), wantErr: "username must be 3-32 characters"},
		{name: "space", username: "asha rao", wantErr: "only latin letters"},
		{name: "dash", username: "asha-rao", wantErr: "only latin letters"},
		{name: "email", username: "asha@example.com", wantErr: "only latin letters"},
		{name: "cyrillic", username: "пользователь", wantErr: "only latin letters"},
		{name: "devanagari", username: "आशा", wantErr: "only latin letters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			var fe FieldErrors
			require.ErrorAs(t, err, &fe)
			assert.Contains(t, fe["username"], tt.wantErr)
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  string
	}{
		{name: "valid", password: "correct-horse-battery"},
		{name: "exactly twelve", password: "123456789012"},
		{name: "empty", password: "", wantErr: "master password is required"},
		{name: "short", password: "short", wantErr: "at least 12 characters"},
		{name: "multibyte counted by runes", password: "पासवर्ड", wantErr: "at least 12 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			var fe FieldErrors
			require.ErrorAs(t, err, &fe)
			assert.Contains(t, fe["master_password"], tt.wantErr)
		})
	}
}
