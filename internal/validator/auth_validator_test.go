package validator

import (
	"context"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func TestValidateRegister(t *testing.T) {
	v := NewAuthValidator()
	ctx := context.Background()

	assert.NoError(t, v.ValidateRegister(ctx, usecase.RegisterInput{Email: "a@example.com", Password: "password1", ConfirmPassword: "password1"}))
	assert.ErrorIs(t, v.ValidateRegister(ctx, usecase.RegisterInput{Email: "", Password: "password1"}), ErrInvalidInput)
	assert.ErrorIs(t, v.ValidateRegister(ctx, usecase.RegisterInput{Email: "not-an-email", Password: "password1"}), ErrInvalidEmail)
	assert.ErrorIs(t, v.ValidateRegister(ctx, usecase.RegisterInput{Email: "a@example.com", Password: "short"}), ErrPasswordTooShort)
	assert.ErrorIs(t, v.ValidateRegister(ctx, usecase.RegisterInput{Email: "a@example.com", Password: "password1", ConfirmPassword: "password2"}), usecase.ErrPasswordMismatch)

	// Google はトークンだけ
	assert.NoError(t, v.ValidateRegister(ctx, usecase.RegisterInput{GoogleJwtToken: "g.jwt.token"}))
}

func TestValidateLogin(t *testing.T) {
	v := NewAuthValidator()
	ctx := context.Background()

	assert.NoError(t, v.ValidateLogin(ctx, usecase.LoginInput{Email: "a@example.com", Password: "x"}))
	assert.ErrorIs(t, v.ValidateLogin(ctx, usecase.LoginInput{Email: "a@example.com"}), ErrInvalidInput)
	assert.ErrorIs(t, v.ValidateLogin(ctx, usecase.LoginInput{Email: "a@", Password: "x"}), ErrInvalidEmail)
	assert.NoError(t, v.ValidateLogin(ctx, usecase.LoginInput{GoogleJwtToken: "g"}))
}

func TestValidateProfileUpdate(t *testing.T) {
	v := NewAuthValidator()
	ctx := context.Background()

	assert.ErrorIs(t, v.ValidateProfileUpdate(ctx, model.UserUpdate{}), ErrInvalidInput)
	assert.ErrorIs(t, v.ValidateProfileUpdate(ctx, model.UserUpdate{Email: "bad"}), ErrInvalidEmail)
	assert.NoError(t, v.ValidateProfileUpdate(ctx, model.UserUpdate{Username: "neo"}))
	assert.NoError(t, v.ValidateProfileUpdate(ctx, model.UserUpdate{Avatar: &model.Upload{FileName: "a.png", Data: []byte{1}}}))
}
