package validator

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"
)

var (
	// 入力が不正
	ErrInvalidInput = errors.New("invalid input")

	// email形式
	ErrInvalidEmail = errors.New("invalid email")

	// パスワードが短い
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type authValidator struct{}

// Usecaseは interface を依存注入
func NewAuthValidator() usecase.AuthValidator {
	return &authValidator{}
}

// サインアップの入力を検証（Google の場合はトークンだけでよい）
func (v *authValidator) ValidateRegister(ctx context.Context, in usecase.RegisterInput) error {
	if strings.TrimSpace(in.GoogleJwtToken) != "" {
		return nil
	}

	email := strings.TrimSpace(in.Email)

	// 必須チェック
	if email == "" || in.Password == "" {
		return ErrInvalidInput
	}

	// email形式
	if !isEmailLike(email) {
		return ErrInvalidEmail
	}

	// パスワード最低文字数（MVP: 8）
	if len(in.Password) < 8 {
		return ErrPasswordTooShort
	}

	// 確認用が送られてきたときだけ比べる
	if in.ConfirmPassword != "" && in.ConfirmPassword != in.Password {
		return usecase.ErrPasswordMismatch
	}

	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, in usecase.LoginInput) error {
	if strings.TrimSpace(in.GoogleJwtToken) != "" {
		return nil
	}

	email := strings.TrimSpace(in.Email)

	// 必須チェック
	if email == "" || in.Password == "" {
		return ErrInvalidInput
	}

	// email形式
	if !isEmailLike(email) {
		return ErrInvalidEmail
	}

	return nil
}

// プロフィール更新（空の項目は送らない）
func (v *authValidator) ValidateProfileUpdate(ctx context.Context, in model.UserUpdate) error {
	if in.Username == "" && in.Email == "" && in.Avatar == nil {
		return ErrInvalidInput
	}
	if in.Email != "" && !isEmailLike(in.Email) {
		return ErrInvalidEmail
	}
	if len(in.Username) > 64 {
		return ErrInvalidInput
	}
	return nil
}

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	return emailRe.MatchString(s)
}
