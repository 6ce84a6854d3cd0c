package domain_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive-backend/internal/core/domain"
	apperrors "github.com/taskhive/taskhive-backend/internal/core/errors"
)

func validRegistrationParams() domain.UserRegistrationParams {
	return domain.UserRegistrationParams{
		Username: "jdoe",
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		Password: "Str0ngPassword",
	}
}

func TestUserRegistrationParams_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*domain.UserRegistrationParams)
		wantField string // field expected to fail, empty means valid
	}{
		{"valid params", func(p *domain.UserRegistrationParams) {}, ""},
		{"missing username", func(p *domain.UserRegistrationParams) { p.Username = "" }, "username"},
		{"uppercase username", func(p *domain.UserRegistrationParams) { p.Username = "JDoe" }, "username"},
		{"username too short", func(p *domain.UserRegistrationParams) { p.Username = "ab" }, "username"},
		{"missing full name", func(p *domain.UserRegistrationParams) { p.FullName = "" }, "fullName"},
		{"full name too long", func(p *domain.UserRegistrationParams) { p.FullName = strings.Repeat("x", 256) }, "fullName"},
		{"missing email", func(p *domain.UserRegistrationParams) { p.Email = "" }, "email"},
		{"malformed email", func(p *domain.UserRegistrationParams) { p.Email = "not-an-email" }, "email"},
		{"weak password", func(p *domain.UserRegistrationParams) { p.Password = "short" }, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validRegistrationParams()
			tt.mutate(&params)

			err := params.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var validationErrs *apperrors.ValidationErrors
			require.ErrorAs(t, err, &validationErrs)
			assert.Contains(t, validationErrs.Errors, tt.wantField)
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"meets all requirements", "Str0ngPassword", true},
		{"too short", "Ab1", false},
		{"no uppercase", "str0ngpassword", false},
		{"no lowercase", "STR0NGPASSWORD", false},
		{"no digit", "StrongPassword", false},
		{"too long", "Ab1" + strings.Repeat("x", 128), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := domain.ValidatePassword(tt.password)
			if tt.valid {
				assert.Empty(t, errs)
			} else {
				assert.NotEmpty(t, errs)
			}
		})
	}
}

func TestNewUser(t *testing.T) {
	orgID := uuid.New()

	t.Run("hashes the password", func(t *testing.T) {
		user, err := domain.NewUser(validRegistrationParams(), orgID)
		require.NoError(t, err)

		assert.Equal(t, orgID, user.OrganizationID)
		assert.True(t, user.IsActive)
		assert.NotEqual(t, "Str0ngPassword", user.HashedPassword)
		assert.True(t, user.CheckPassword("Str0ngPassword"))
		assert.False(t, user.CheckPassword("WrongPassword1"))
	})

	t.Run("invalid params are rejected", func(t *testing.T) {
		params := validRegistrationParams()
		params.Email = "nope"

		user, err := domain.NewUser(params, orgID)
		assert.Error(t, err)
		assert.Nil(t, user)
	})
}

func TestHashPassword_RejectsWeakPasswords(t *testing.T) {
	_, err := domain.HashPassword("weak")
	assert.ErrorIs(t, err, apperrors.ErrPasswordTooWeak)
}
