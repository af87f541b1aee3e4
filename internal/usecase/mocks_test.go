package usecase

import (
	"context"
	"io"
	"testing"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/querycache"

	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// テスト用のトークン（署名は検証しない）
func testToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func pct(v float64) *float64 { return &v }

func game(id int64, title string, price int64, discount *float64) model.GameSnapshot {
	return model.GameSnapshot{ID: id, Title: title, PriceValue: model.AmountFromInt(price), DiscountPercent: discount}
}

// =====================
// Mock: CartRepository
// =====================

type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) Load(ctx context.Context) ([]model.CartLineItem, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.CartLineItem)
	return items, args.Error(1)
}

func (m *MockCartRepository) Save(ctx context.Context, items []model.CartLineItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

// =====================
// Mock: ProductRepository
// =====================

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) List(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]model.Product)
	return list, args.Error(1)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *MockProductRepository) WatchList() *querycache.Subscription[[]model.Product] {
	args := m.Called()
	s, _ := args.Get(0).(*querycache.Subscription[[]model.Product])
	return s
}

func (m *MockProductRepository) Create(ctx context.Context, in model.CreateProduct) (model.Product, error) {
	args := m.Called(ctx, in)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, id int64, in model.UpdateProduct) (model.Product, error) {
	args := m.Called(ctx, id, in)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *MockProductRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) SetCover(ctx context.Context, id int64, coverFileID int64) (model.Product, error) {
	args := m.Called(ctx, id, coverFileID)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

// =====================
// Mock: FileRepository
// =====================

type MockFileRepository struct {
	mock.Mock
}

func (m *MockFileRepository) ListByProduct(ctx context.Context, productID int64) ([]model.ProductFile, error) {
	args := m.Called(ctx, productID)
	list, _ := args.Get(0).([]model.ProductFile)
	return list, args.Error(1)
}

func (m *MockFileRepository) FindByID(ctx context.Context, fileID int64) (model.ProductFile, error) {
	args := m.Called(ctx, fileID)
	f, _ := args.Get(0).(model.ProductFile)
	return f, args.Error(1)
}

func (m *MockFileRepository) Upload(ctx context.Context, productID int64, file model.Upload) (model.ProductFile, error) {
	args := m.Called(ctx, productID, file)
	f, _ := args.Get(0).(model.ProductFile)
	return f, args.Error(1)
}

func (m *MockFileRepository) UploadBulk(ctx context.Context, productID int64, files []model.Upload) error {
	args := m.Called(ctx, productID, files)
	return args.Error(0)
}

func (m *MockFileRepository) Delete(ctx context.Context, fileID int64) error {
	args := m.Called(ctx, fileID)
	return args.Error(0)
}

func (m *MockFileRepository) Photo(ctx context.Context, photoID int64) (model.PhotoFile, error) {
	args := m.Called(ctx, photoID)
	f, _ := args.Get(0).(model.PhotoFile)
	return f, args.Error(1)
}

func (m *MockFileRepository) DeletePhoto(ctx context.Context, photoID int64) error {
	args := m.Called(ctx, photoID)
	return args.Error(0)
}

// =====================
// Mock: FavoriteRepository
// =====================

type MockFavoriteRepository struct {
	mock.Mock
}

func (m *MockFavoriteRepository) List(ctx context.Context) ([]model.Favorite, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]model.Favorite)
	return list, args.Error(1)
}

func (m *MockFavoriteRepository) Cached() ([]model.Favorite, time.Time, bool) {
	args := m.Called()
	list, _ := args.Get(0).([]model.Favorite)
	at, _ := args.Get(1).(time.Time)
	return list, at, args.Bool(2)
}

func (m *MockFavoriteRepository) WatchList() *querycache.Subscription[[]model.Favorite] {
	args := m.Called()
	sub, _ := args.Get(0).(*querycache.Subscription[[]model.Favorite])
	return sub
}

func (m *MockFavoriteRepository) Check(ctx context.Context, productID int64) (bool, error) {
	args := m.Called(ctx, productID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFavoriteRepository) Add(ctx context.Context, productID int64) (model.Favorite, error) {
	args := m.Called(ctx, productID)
	f, _ := args.Get(0).(model.Favorite)
	return f, args.Error(1)
}

func (m *MockFavoriteRepository) Remove(ctx context.Context, productID int64) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

// =====================
// Mock: TokenRepository
// =====================

type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) Token(ctx context.Context) (string, bool) {
	args := m.Called(ctx)
	return args.String(0), args.Bool(1)
}

func (m *MockTokenRepository) Save(ctx context.Context, token string, remember bool) error {
	args := m.Called(ctx, token, remember)
	return args.Error(0)
}

func (m *MockTokenRepository) ClearToken(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// =====================
// Mock: PreferenceRepository
// =====================

type MockPreferenceRepository struct {
	mock.Mock
}

func (m *MockPreferenceRepository) Country(ctx context.Context) (model.Country, bool, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).(model.Country)
	return c, args.Bool(1), args.Error(2)
}

func (m *MockPreferenceRepository) SaveCountry(ctx context.Context, c model.Country) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockPreferenceRepository) Settings(ctx context.Context) (model.Settings, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(model.Settings)
	return s, args.Error(1)
}

func (m *MockPreferenceRepository) SaveSettings(ctx context.Context, s model.Settings) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

// =====================
// Mock: BillRepository
// =====================

type MockBillRepository struct {
	mock.Mock
}

func (m *MockBillRepository) List(ctx context.Context) ([]model.Bill, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]model.Bill)
	return list, args.Error(1)
}

func (m *MockBillRepository) FindByID(ctx context.Context, id int64) (model.Bill, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(model.Bill)
	return b, args.Error(1)
}

func (m *MockBillRepository) ListMine(ctx context.Context) ([]model.Bill, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]model.Bill)
	return list, args.Error(1)
}

func (m *MockBillRepository) Create(ctx context.Context, in model.BillCreate) (model.Bill, error) {
	args := m.Called(ctx, in)
	b, _ := args.Get(0).(model.Bill)
	return b, args.Error(1)
}

func (m *MockBillRepository) Update(ctx context.Context, id int64, in model.BillUpdate) error {
	args := m.Called(ctx, id, in)
	return args.Error(0)
}

func (m *MockBillRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// =====================
// Mock: PaymentRepository
// =====================

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) CreateIntent(ctx context.Context, billID int64) (model.PaymentIntent, error) {
	args := m.Called(ctx, billID)
	p, _ := args.Get(0).(model.PaymentIntent)
	return p, args.Error(1)
}

func (m *MockPaymentRepository) UpdateStatus(ctx context.Context, in model.UpdatePaymentRequest) (model.PaymentIntent, error) {
	args := m.Called(ctx, in)
	p, _ := args.Get(0).(model.PaymentIntent)
	return p, args.Error(1)
}

func (m *MockPaymentRepository) Complete(ctx context.Context, paymentIntentID string) error {
	args := m.Called(ctx, paymentIntentID)
	return args.Error(0)
}

// =====================
// Mock: UserRepository
// =====================

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Profile(ctx context.Context) (model.UserProfile, error) {
	args := m.Called(ctx)
	p, _ := args.Get(0).(model.UserProfile)
	return p, args.Error(1)
}

func (m *MockUserRepository) ProfileByID(ctx context.Context, id int64) (model.UserProfile, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.UserProfile)
	return p, args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]model.User)
	return list, args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int64) (model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) Products(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]model.Product)
	return list, args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, in model.UserUpdate) (model.UserUpdateResult, error) {
	args := m.Called(ctx, in)
	r, _ := args.Get(0).(model.UserUpdateResult)
	return r, args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// =====================
// Mock: AuthRepository
// =====================

type MockAuthRepository struct {
	mock.Mock
}

func (m *MockAuthRepository) Login(ctx context.Context, in model.UserLogin) (model.AuthToken, error) {
	args := m.Called(ctx, in)
	t, _ := args.Get(0).(model.AuthToken)
	return t, args.Error(1)
}

func (m *MockAuthRepository) Register(ctx context.Context, in model.UserRegister) (model.AuthToken, error) {
	args := m.Called(ctx, in)
	t, _ := args.Get(0).(model.AuthToken)
	return t, args.Error(1)
}

// =====================
// Mock: AuthValidator
// =====================

type MockAuthValidator struct {
	mock.Mock
}

func (m *MockAuthValidator) ValidateRegister(ctx context.Context, in RegisterInput) error {
	args := m.Called(ctx, in)
	return args.Error(0)
}

func (m *MockAuthValidator) ValidateLogin(ctx context.Context, in LoginInput) error {
	args := m.Called(ctx, in)
	return args.Error(0)
}

func (m *MockAuthValidator) ValidateProfileUpdate(ctx context.Context, in model.UserUpdate) error {
	args := m.Called(ctx, in)
	return args.Error(0)
}

// =====================
// Mock: cache
// =====================

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Reset() {
	m.Called()
}
