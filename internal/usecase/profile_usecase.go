package usecase

import (
	"context"
	"net/http"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/sirupsen/logrus"
)

type ProfileUsecase struct {
	users     repo.UserRepository
	tokens    repo.TokenRepository
	validator AuthValidator
	log       *logrus.Entry
}

// DI
func NewProfileUsecase(users repo.UserRepository, tokens repo.TokenRepository, validator AuthValidator, log *logrus.Entry) *ProfileUsecase {
	return &ProfileUsecase{
		users:     users,
		tokens:    tokens,
		validator: validator,
		log:       log.WithField("component", "profile"),
	}
}

func (u *ProfileUsecase) requireLogin(ctx context.Context) error {
	if _, ok := u.tokens.Token(ctx); !ok {
		return ErrLoginRequired
	}
	return nil
}

// Get はログイン中ユーザーのプロフィール。
func (u *ProfileUsecase) Get(ctx context.Context) (model.UserProfile, error) {
	if err := u.requireLogin(ctx); err != nil {
		return model.UserProfile{}, err
	}
	p, err := u.users.Profile(ctx)
	if err != nil {
		return model.UserProfile{}, fromAPIError(err, "profile fetch failed")
	}
	return p, nil
}

// Products は購入済みの商品。
func (u *ProfileUsecase) Products(ctx context.Context) ([]model.Product, error) {
	if err := u.requireLogin(ctx); err != nil {
		return nil, err
	}
	list, err := u.users.Products(ctx)
	if err != nil {
		return nil, fromAPIError(err, "products fetch failed")
	}
	return list, nil
}

// Update はユーザー名・メール・アバターを multipart で送る。
func (u *ProfileUsecase) Update(ctx context.Context, in model.UserUpdate) (model.UserUpdateResult, error) {
	if err := u.requireLogin(ctx); err != nil {
		return model.UserUpdateResult{}, err
	}
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := u.validator.ValidateProfileUpdate(ctx, in); err != nil {
		return model.UserUpdateResult{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if in.Avatar != nil {
		if err := checkUpload(*in.Avatar); err != nil {
			return model.UserUpdateResult{}, err
		}
	}

	res, err := u.users.Update(ctx, in)
	if err != nil {
		return model.UserUpdateResult{}, fromAPIError(err, "profile update failed")
	}
	return res, nil
}

// =====================
// 管理者
// =====================

func (u *ProfileUsecase) AdminListUsers(ctx context.Context) ([]model.User, error) {
	list, err := u.users.List(ctx)
	if err != nil {
		return nil, fromAPIError(err, "users fetch failed")
	}
	return list, nil
}

func (u *ProfileUsecase) AdminGetUser(ctx context.Context, id int64) (model.User, error) {
	if id <= 0 {
		return model.User{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	usr, err := u.users.FindByID(ctx, id)
	if err != nil {
		return model.User{}, fromAPIError(err, "user fetch failed")
	}
	return usr, nil
}

// AdminDeleteUser は自分自身は消せない。
func (u *ProfileUsecase) AdminDeleteUser(ctx context.Context, actorID, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if actorID == id {
		return NewHTTPError(http.StatusBadRequest, "cannot delete yourself")
	}
	if err := u.users.Delete(ctx, id); err != nil {
		return fromAPIError(err, "user delete failed")
	}
	return nil
}
