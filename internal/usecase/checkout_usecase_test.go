package usecase

import (
	"context"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/domain/pricing"
	"storefront/internal/infra/api"

	"github.com/golang-jwt/jwt/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type checkoutDeps struct {
	cart     *CartUsecase
	bills    *MockBillRepository
	payments *MockPaymentRepository
	users    *MockUserRepository
	tokens   *MockTokenRepository
}

func newCheckout(t *testing.T, c model.Country, token string) (*CheckoutUsecase, checkoutDeps) {
	t.Helper()
	d := checkoutDeps{
		cart:     newCart(t, &jsonCartRepo{}),
		bills:    new(MockBillRepository),
		payments: new(MockPaymentRepository),
		users:    new(MockUserRepository),
		tokens:   new(MockTokenRepository),
	}
	d.tokens.On("Token", mock.Anything).Return(token, token != "")
	u := NewCheckoutUsecase(d.cart, fixedCurrency{c}, fixedLanguage("en"), d.bills, d.payments, d.users, d.tokens, testLogger())
	return u, d
}

func decEq(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s got %s", want, got)
}

// =====================
// Start
// =====================

func TestCheckout_Start_CreatesBillAndIntent(t *testing.T) {
	ctx := context.Background()
	uah := pricing.DefaultCountries()[0]
	u, d := newCheckout(t, uah, testToken(t, jwt.MapClaims{"Id": "12"}))

	d.cart.AddItem(ctx, game(1, "A", 100, pct(50)))
	d.cart.AddItem(ctx, game(1, "A", 100, pct(50)))
	d.cart.AddItem(ctx, game(2, "B", 35, nil))

	d.users.On("Profile", mock.Anything).Return(model.UserProfile{BonusPoints: 100}, nil)

	var sent model.BillCreate
	d.bills.On("Create", mock.Anything, mock.AnythingOfType("model.BillCreate")).
		Run(func(args mock.Arguments) { sent = args.Get(1).(model.BillCreate) }).
		Return(model.Bill{ID: 55}, nil)
	d.payments.On("CreateIntent", mock.Anything, int64(55)).
		Return(model.PaymentIntent{PaymentIntentID: "pi_1", ClientSecret: "secret"}, nil)

	out, err := u.Start(ctx, CheckoutInput{BonusPoints: 30})
	require.NoError(t, err)

	assert.Equal(t, int64(12), sent.UserID)
	assert.Equal(t, model.BillStatusPending, sent.Status)
	assert.Equal(t, "UAH", sent.Currency)
	assert.Equal(t, int64(30), sent.BonusPointsUsed)
	decEq(t, "105", sent.TotalAmount.Value)
	require.Len(t, sent.Items, 2)
	assert.Equal(t, 2, sent.Items[0].Quantity)
	decEq(t, "50", sent.Items[0].Price.Value)
	decEq(t, "35", sent.Items[1].Price.Value)

	assert.Equal(t, int64(55), out.BillID)
	assert.Equal(t, "pi_1", out.PaymentIntentID)
	assert.Equal(t, "secret", out.ClientSecret)
	assert.Equal(t, "105 ₴", out.Total)
	assert.Equal(t, "105.00", out.TotalValue)
	assert.Equal(t, int64(30), out.BonusPointsUsed)
	assert.Equal(t, int64(10), out.BonusEarned)
}

func TestCheckout_Start_SelectedCurrency(t *testing.T) {
	ctx := context.Background()
	usd, _ := pricing.FindCountry(pricing.DefaultCountries(), "usa")
	u, d := newCheckout(t, usd, testToken(t, jwt.MapClaims{"sub": "3"}))
	d.cart.AddItem(ctx, game(1, "A", 100, nil))

	var sent model.BillCreate
	d.bills.On("Create", mock.Anything, mock.AnythingOfType("model.BillCreate")).
		Run(func(args mock.Arguments) { sent = args.Get(1).(model.BillCreate) }).
		Return(model.Bill{ID: 1}, nil)
	d.payments.On("CreateIntent", mock.Anything, int64(1)).Return(model.PaymentIntent{PaymentIntentID: "pi"}, nil)

	out, err := u.Start(ctx, CheckoutInput{})
	require.NoError(t, err)
	assert.Equal(t, "USD", sent.Currency)
	decEq(t, "2.4", sent.TotalAmount.Value)
	decEq(t, "2.4", sent.Items[0].Price.Value)
	assert.Equal(t, "2.4 $", out.Total)

	// ボーナスを使わないならプロフィールは取らない
	d.users.AssertNotCalled(t, "Profile", mock.Anything)
}

func TestCheckout_Start_LoginRequired(t *testing.T) {
	u, d := newCheckout(t, pricing.DefaultCountries()[0], "")
	d.cart.AddItem(context.Background(), game(1, "A", 10, nil))

	_, err := u.Start(context.Background(), CheckoutInput{})
	assert.ErrorIs(t, err, ErrLoginRequired)
	d.bills.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCheckout_Start_EmptyCart(t *testing.T) {
	u, _ := newCheckout(t, pricing.DefaultCountries()[0], testToken(t, jwt.MapClaims{"Id": "1"}))

	_, err := u.Start(context.Background(), CheckoutInput{})
	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 400, he.Status)
}

func TestCheckout_Start_UnavailablePrice(t *testing.T) {
	ctx := context.Background()
	u, d := newCheckout(t, pricing.DefaultCountries()[0], testToken(t, jwt.MapClaims{"Id": "1"}))
	d.cart.AddItem(ctx, model.GameSnapshot{ID: 9, Title: "Unknown"})

	_, err := u.Start(ctx, CheckoutInput{})
	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 409, he.Status)
}

func TestCheckout_Start_NegativeBonus(t *testing.T) {
	ctx := context.Background()
	u, d := newCheckout(t, pricing.DefaultCountries()[0], testToken(t, jwt.MapClaims{"Id": "1"}))
	d.cart.AddItem(ctx, game(1, "A", 10, nil))

	_, err := u.Start(ctx, CheckoutInput{BonusPoints: -1})
	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 400, he.Status)
}

func TestCheckout_Start_BillFailureKeepsCart(t *testing.T) {
	ctx := context.Background()
	u, d := newCheckout(t, pricing.DefaultCountries()[0], testToken(t, jwt.MapClaims{"Id": "1"}))
	d.cart.AddItem(ctx, game(1, "A", 10, nil))
	d.bills.On("Create", mock.Anything, mock.Anything).Return(nil, &api.Error{Kind: api.KindServer, Status: 500})

	_, err := u.Start(ctx, CheckoutInput{})
	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 502, he.Status)
	assert.Len(t, d.cart.Items(), 1)
	d.payments.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything)
}

// =====================
// Complete
// =====================

func TestCheckout_Complete_ClearsCart(t *testing.T) {
	ctx := context.Background()
	u, d := newCheckout(t, pricing.DefaultCountries()[0], testToken(t, jwt.MapClaims{"Id": "1"}))
	d.cart.AddItem(ctx, game(1, "A", 10, nil))
	d.payments.On("Complete", mock.Anything, "pi_1").Return(nil)

	require.NoError(t, u.Complete(ctx, CompleteInput{PaymentIntentID: " pi_1 "}))
	assert.Empty(t, d.cart.Items())
}

func TestCheckout_Complete_FailureKeepsCart(t *testing.T) {
	ctx := context.Background()
	u, d := newCheckout(t, pricing.DefaultCountries()[0], testToken(t, jwt.MapClaims{"Id": "1"}))
	d.cart.AddItem(ctx, game(1, "A", 10, nil))
	d.payments.On("Complete", mock.Anything, "pi_1").Return(&api.Error{Kind: api.KindValidation, Status: 400, Message: "card declined"})

	err := u.Complete(ctx, CompleteInput{PaymentIntentID: "pi_1"})
	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, "card declined", he.Message)
	assert.Len(t, d.cart.Items(), 1)

	err = u.Complete(ctx, CompleteInput{})
	he, _ = AsHTTPError(err)
	assert.Equal(t, 400, he.Status)
}
