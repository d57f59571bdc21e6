package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateRegex(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateRegex(""))
	assert.NoError(t, ValidateRegex(`^/(coffee)+$`))
	assert.Error(t, ValidateRegex("[invalid"))
}

func TestValidateHTTPMethod(t *testing.T) {
	t.Parallel()

	tests := []struct {
		method  string
		wantErr bool
	}{
		{"GET", false},
		{"post", false},
		{"*", false},
		{"BREW", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			t.Parallel()
			err := ValidateHTTPMethod(tt.method)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateMisc(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateDuration(0))
	assert.Error(t, ValidateDuration(-time.Second))

	assert.NoError(t, ValidateHTTPStatusCode(200))
	assert.Error(t, ValidateHTTPStatusCode(42))

	assert.NoError(t, ValidatePort(1123))
	assert.Error(t, ValidatePort(0))
	assert.Error(t, ValidatePort(70000))

	assert.NoError(t, ValidateNonEmpty("x", "name"))
	assert.EqualError(t, ValidateNonEmpty("  ", "name"), "name cannot be empty")
}
