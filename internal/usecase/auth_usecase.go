package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/infra/api"
	"storefront/internal/repository"

	"github.com/sirupsen/logrus"
)

var (
	//400 入力不足
	ErrValidation = errors.New("validation error")
	//400 パスワード不一致
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, in RegisterInput) error
	ValidateLogin(ctx context.Context, in LoginInput) error
	ValidateProfileUpdate(ctx context.Context, in model.UserUpdate) error
}

// ログアウト時にキャッシュを捨てる
type cacheResetter interface {
	Reset()
}

type LoginInput struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	GoogleJwtToken string `json:"googleJwtToken"`
	Remember       bool   `json:"remember"`
}

type RegisterInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	GoogleJwtToken  string `json:"googleJwtToken"`
	Remember        bool   `json:"remember"`
}

// SessionOutput はログイン状態。トークン自体は返さない。
type SessionOutput struct {
	Authenticated bool       `json:"authenticated"`
	UserID        int64      `json:"userId,omitempty"`
	Role          model.Role `json:"role,omitempty"`
	Message       string     `json:"message,omitempty"`
}

type AuthUsecase struct {
	auth      repository.AuthRepository
	tokens    repository.TokenRepository
	cache     cacheResetter
	validator AuthValidator
	log       *logrus.Entry
}

// DI
func NewAuthUsecase(
	auth repository.AuthRepository,
	tokens repository.TokenRepository,
	cache cacheResetter,
	validator AuthValidator,
	log *logrus.Entry,
) *AuthUsecase {
	return &AuthUsecase{
		auth:      auth,
		tokens:    tokens,
		cache:     cache,
		validator: validator,
		log:       log.WithField("component", "auth"),
	}
}

// Login は email/password か Google の IDトークンでログインする。
// Google でアカウントが無ければ作ってからログインする。
func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (SessionOutput, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := u.validator.ValidateLogin(ctx, in); err != nil {
		return SessionOutput{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := u.auth.Login(ctx, model.UserLogin{
		Email:          in.Email,
		Password:       in.Password,
		GoogleJwtToken: in.GoogleJwtToken,
	})
	if err != nil && in.GoogleJwtToken != "" && api.IsKind(err, api.KindNotFound) {
		u.log.Info("google account not found, registering")
		res, err = u.auth.Register(ctx, model.UserRegister{GoogleJwtToken: in.GoogleJwtToken})
		if err == nil && res.Token == "" {
			res, err = u.auth.Login(ctx, model.UserLogin{GoogleJwtToken: in.GoogleJwtToken})
		}
	}
	if err != nil {
		return SessionOutput{}, fromAPIError(err, "login failed")
	}
	return u.start(ctx, res, in.Remember)
}

// Register は登録する。レスポンスにトークンが無ければ同じ資格情報でログインする。
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (SessionOutput, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := u.validator.ValidateRegister(ctx, in); err != nil {
		return SessionOutput{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := u.auth.Register(ctx, model.UserRegister{
		Name:           in.Name,
		Email:          in.Email,
		Password:       in.Password,
		GoogleJwtToken: in.GoogleJwtToken,
	})
	if err != nil {
		return SessionOutput{}, fromAPIError(err, "registration failed")
	}
	if res.Token == "" {
		res, err = u.auth.Login(ctx, model.UserLogin{
			Email:          in.Email,
			Password:       in.Password,
			GoogleJwtToken: in.GoogleJwtToken,
		})
		if err != nil {
			return SessionOutput{}, fromAPIError(err, "login after registration failed")
		}
	}
	return u.start(ctx, res, in.Remember)
}

func (u *AuthUsecase) start(ctx context.Context, res model.AuthToken, remember bool) (SessionOutput, error) {
	if strings.TrimSpace(res.Token) == "" {
		return SessionOutput{}, NewHTTPError(http.StatusBadGateway, "empty token in response")
	}
	if err := u.tokens.Save(ctx, res.Token, remember); err != nil {
		u.log.WithError(err).Error("save token failed")
		return SessionOutput{}, NewHTTPError(http.StatusInternalServerError, "save token failed")
	}
	// 前のユーザーのキャッシュを見せない
	u.cache.Reset()

	out := SessionOutput{Authenticated: true, Message: res.Message}
	if s, err := ParseSession(res.Token); err == nil {
		out.UserID = s.UserID
		out.Role = s.Role
	} else {
		u.log.WithError(err).Warn("token claims unreadable")
	}
	return out, nil
}

// Logout はトークンを消してキャッシュを捨てる。カートは残す。
func (u *AuthUsecase) Logout(ctx context.Context) error {
	if err := u.tokens.ClearToken(ctx); err != nil {
		u.log.WithError(err).Error("clear token failed")
		return NewHTTPError(http.StatusInternalServerError, "logout failed")
	}
	u.cache.Reset()
	return nil
}

// Session は保存済みトークンからログイン状態を返す。
func (u *AuthUsecase) Session(ctx context.Context) SessionOutput {
	token, ok := u.tokens.Token(ctx)
	if !ok {
		return SessionOutput{}
	}
	s, err := ParseSession(token)
	if err != nil {
		// 中身が読めなくてもトークンはある（検証はサーバ側）
		return SessionOutput{Authenticated: true}
	}
	return SessionOutput{Authenticated: true, UserID: s.UserID, Role: s.Role}
}
