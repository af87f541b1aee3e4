package usecase

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/infra/api"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type authDeps struct {
	auth      *MockAuthRepository
	tokens    *MockTokenRepository
	cache     *MockCache
	validator *MockAuthValidator
}

func newAuthUsecase() (*AuthUsecase, authDeps) {
	d := authDeps{
		auth:      new(MockAuthRepository),
		tokens:    new(MockTokenRepository),
		cache:     new(MockCache),
		validator: new(MockAuthValidator),
	}
	return NewAuthUsecase(d.auth, d.tokens, d.cache, d.validator, testLogger()), d
}

// =====================
// Login
// =====================

func TestLogin_SavesTokenAndResetsCache(t *testing.T) {
	ctx := context.Background()
	u, d := newAuthUsecase()
	token := testToken(t, jwt.MapClaims{"Id": "12", "role": "Admin"})

	in := LoginInput{Email: "a@example.com", Password: "password1", Remember: true}
	d.validator.On("ValidateLogin", mock.Anything, in).Return(nil)
	d.auth.On("Login", mock.Anything, model.UserLogin{Email: "a@example.com", Password: "password1"}).
		Return(model.AuthToken{Token: token, Message: "ok"}, nil)
	d.tokens.On("Save", mock.Anything, token, true).Return(nil)
	d.cache.On("Reset").Return()

	out, err := u.Login(ctx, in)
	require.NoError(t, err)
	assert.True(t, out.Authenticated)
	assert.Equal(t, int64(12), out.UserID)
	assert.Equal(t, model.RoleAdmin, out.Role)

	d.tokens.AssertExpectations(t)
	d.cache.AssertCalled(t, "Reset")
}

func TestLogin_ValidationError(t *testing.T) {
	u, d := newAuthUsecase()
	d.validator.On("ValidateLogin", mock.Anything, mock.Anything).Return(ErrValidation)

	_, err := u.Login(context.Background(), LoginInput{Email: "x"})
	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 400, he.Status)
	d.auth.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
}

func TestLogin_WrongPasswordKeepsFieldMessages(t *testing.T) {
	u, d := newAuthUsecase()
	d.validator.On("ValidateLogin", mock.Anything, mock.Anything).Return(nil)
	d.auth.On("Login", mock.Anything, mock.Anything).Return(nil, &api.Error{
		Kind: api.KindValidation, Status: 400, Message: "Invalid credentials", Errors: []string{"password is wrong"},
	})

	_, err := u.Login(context.Background(), LoginInput{Email: "a@example.com", Password: "bad"})
	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 400, he.Status)
	assert.Equal(t, "Invalid credentials", he.Message)
	assert.Equal(t, []string{"password is wrong"}, he.Errors)
	d.tokens.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_GoogleRegistersUnknownAccount(t *testing.T) {
	ctx := context.Background()
	u, d := newAuthUsecase()
	token := testToken(t, jwt.MapClaims{"sub": "5"})

	d.validator.On("ValidateLogin", mock.Anything, mock.Anything).Return(nil)
	d.auth.On("Login", mock.Anything, model.UserLogin{GoogleJwtToken: "g"}).
		Return(nil, &api.Error{Kind: api.KindNotFound, Status: 404}).Once()
	d.auth.On("Register", mock.Anything, model.UserRegister{GoogleJwtToken: "g"}).
		Return(model.AuthToken{}, nil)
	d.auth.On("Login", mock.Anything, model.UserLogin{GoogleJwtToken: "g"}).
		Return(model.AuthToken{Token: token}, nil).Once()
	d.tokens.On("Save", mock.Anything, token, false).Return(nil)
	d.cache.On("Reset").Return()

	out, err := u.Login(ctx, LoginInput{GoogleJwtToken: "g"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), out.UserID)
	d.auth.AssertNumberOfCalls(t, "Login", 2)
}

func TestLogin_EmptyToken(t *testing.T) {
	u, d := newAuthUsecase()
	d.validator.On("ValidateLogin", mock.Anything, mock.Anything).Return(nil)
	d.auth.On("Login", mock.Anything, mock.Anything).Return(model.AuthToken{Message: "ok"}, nil)

	_, err := u.Login(context.Background(), LoginInput{Email: "a@example.com", Password: "p"})
	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 502, he.Status)
}

// =====================
// Register
// =====================

func TestRegister_LogsInWhenNoTokenReturned(t *testing.T) {
	ctx := context.Background()
	u, d := newAuthUsecase()
	token := testToken(t, jwt.MapClaims{"id": 9.0})

	in := RegisterInput{Name: "Neo", Email: "neo@example.com", Password: "password1", ConfirmPassword: "password1"}
	d.validator.On("ValidateRegister", mock.Anything, in).Return(nil)
	d.auth.On("Register", mock.Anything, model.UserRegister{Name: "Neo", Email: "neo@example.com", Password: "password1"}).
		Return(model.AuthToken{Message: "registered"}, nil)
	d.auth.On("Login", mock.Anything, model.UserLogin{Email: "neo@example.com", Password: "password1"}).
		Return(model.AuthToken{Token: token}, nil)
	d.tokens.On("Save", mock.Anything, token, false).Return(nil)
	d.cache.On("Reset").Return()

	out, err := u.Register(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, int64(9), out.UserID)
}

func TestRegister_Conflict(t *testing.T) {
	u, d := newAuthUsecase()
	d.validator.On("ValidateRegister", mock.Anything, mock.Anything).Return(nil)
	d.auth.On("Register", mock.Anything, mock.Anything).Return(nil, &api.Error{Kind: api.KindValidation, Status: 409, Message: "Email already registered"})

	_, err := u.Register(context.Background(), RegisterInput{Email: "a@example.com", Password: "password1"})
	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 409, he.Status)
}

// =====================
// Logout / Session
// =====================

func TestLogout_ClearsTokenAndCache(t *testing.T) {
	u, d := newAuthUsecase()
	d.tokens.On("ClearToken", mock.Anything).Return(nil)
	d.cache.On("Reset").Return()

	require.NoError(t, u.Logout(context.Background()))
	d.tokens.AssertExpectations(t)
	d.cache.AssertExpectations(t)
}

func TestLogout_StoreFailure(t *testing.T) {
	u, d := newAuthUsecase()
	d.tokens.On("ClearToken", mock.Anything).Return(errors.New("io"))

	err := u.Logout(context.Background())
	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 500, he.Status)
	d.cache.AssertNotCalled(t, "Reset")
}

func TestSession(t *testing.T) {
	u, d := newAuthUsecase()
	d.tokens.On("Token", mock.Anything).Return("", false).Once()
	assert.False(t, u.Session(context.Background()).Authenticated)

	d.tokens.On("Token", mock.Anything).Return(testToken(t, jwt.MapClaims{"Id": 3.0}), true).Once()
	s := u.Session(context.Background())
	assert.True(t, s.Authenticated)
	assert.Equal(t, int64(3), s.UserID)
}

func TestParseSession(t *testing.T) {
	s, err := ParseSession(testToken(t, jwt.MapClaims{
		"sub": "77",
		"http://schemas.microsoft.com/ws/2008/06/identity/claims/role": "Admin",
	}))
	require.NoError(t, err)
	assert.Equal(t, int64(77), s.UserID)
	assert.True(t, s.IsAdmin())

	_, err = ParseSession("not-a-jwt")
	assert.Error(t, err)

	_, err = ParseSession(testToken(t, jwt.MapClaims{"sub": "abc"}))
	assert.Error(t, err)
}
