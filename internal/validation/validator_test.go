package validation

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStruct_LoginInput(t *testing.T) {
	tests := []struct {
		name      string
		input     LoginInput
		wantError bool
		errorMsg  string
	}{
		{
			name:      "valid login input",
			input:     LoginInput{Username: "testuser", Password: "password"},
			wantError: false,
		},
		{
			name:      "empty username",
			input:     LoginInput{Username: "", Password: "password"},
			wantError: true,
			errorMsg:  "username is required",
		},
		{
			name:      "blank username",
			input:     LoginInput{Username: "   ", Password: "password"},
			wantError: true,
			errorMsg:  "username must not be blank",
		},
		{
			name:      "empty password",
			input:     LoginInput{Username: "testuser", Password: ""},
			wantError: true,
			errorMsg:  "password is required",
		},
		{
			name:      "username too long",
			input:     LoginInput{Username: strings.Repeat("a", 256), Password: "password"},
			wantError: true,
			errorMsg:  "username must be at most 255",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(context.Background(), tt.input)

			if tt.wantError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateStruct_CreateUserInput(t *testing.T) {
	err := ValidateStruct(context.Background(), CreateUserInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username is required")
	assert.Contains(t, err.Error(), "password is required")

	assert.NoError(t, ValidateStruct(context.Background(), CreateUserInput{Username: "bob", Password: "pw"}))
}
