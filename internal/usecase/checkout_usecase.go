package usecase

import (
	"context"
	"net/http"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/domain/pricing"
	"storefront/internal/i18n"
	repo "storefront/internal/repository"

	"github.com/sirupsen/logrus"
)

type CheckoutUsecase struct {
	cart     *CartUsecase
	currency currencySelection
	lang     languageSource
	bills    repo.BillRepository
	payments repo.PaymentRepository
	users    repo.UserRepository
	tokens   repo.TokenRepository
	log      *logrus.Entry
}

// DI
func NewCheckoutUsecase(
	cart *CartUsecase,
	currency currencySelection,
	lang languageSource,
	bills repo.BillRepository,
	payments repo.PaymentRepository,
	users repo.UserRepository,
	tokens repo.TokenRepository,
	log *logrus.Entry,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		cart:     cart,
		currency: currency,
		lang:     lang,
		bills:    bills,
		payments: payments,
		users:    users,
		tokens:   tokens,
		log:      log.WithField("component", "checkout"),
	}
}

type CheckoutInput struct {
	BonusPoints int64 `json:"bonusPoints"`
}

// CheckoutOutput はカード確認（UI側）に必要な値。
type CheckoutOutput struct {
	BillID          int64  `json:"billId"`
	PaymentIntentID string `json:"paymentIntentId"`
	ClientSecret    string `json:"clientSecret,omitempty"`
	Currency        string `json:"currency"`
	Total           string `json:"total"`
	TotalValue      string `json:"totalValue"`
	BonusPointsUsed int64  `json:"bonusPointsUsed"`
	BonusEarned     int64  `json:"bonusEarned"`
}

// Start はカートから請求を作り、決済インテントを作る。
// 金額は選択中の通貨。ボーナスは基準通貨で1ポイント=1として差し引く。
func (u *CheckoutUsecase) Start(ctx context.Context, in CheckoutInput) (CheckoutOutput, error) {
	token, ok := u.tokens.Token(ctx)
	if !ok {
		return CheckoutOutput{}, ErrLoginRequired
	}
	session, err := ParseSession(token)
	if err != nil {
		return CheckoutOutput{}, err
	}
	if in.BonusPoints < 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "bonusPoints must be >= 0")
	}

	c := u.currency.Selected()
	tr := i18n.New(u.lang.Language())
	summary := u.cart.Summary(c, tr.Tag())
	if summary.ItemCount == 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "cart is empty")
	}
	if summary.HasUnavailable {
		return CheckoutOutput{}, NewHTTPError(http.StatusConflict, "cart contains items without a price")
	}

	//ボーナス残高（使うときだけ取得）
	var available int64
	if in.BonusPoints > 0 {
		profile, err := u.users.Profile(ctx)
		if err != nil {
			return CheckoutOutput{}, fromAPIError(err, "profile fetch failed")
		}
		available = profile.BonusPoints
	}
	used, payable := RedeemBonus(summary.SubtotalValue(), available, in.BonusPoints)
	total := pricing.Convert(payable, c.Rate)

	items := make([]model.BillCreateItem, 0, len(summary.Items))
	for _, line := range summary.Items {
		p := pricing.Resolve(line.Game.PriceValue, line.Game.DiscountPercent, c)
		items = append(items, model.BillCreateItem{
			ProductID: line.Game.ID,
			Quantity:  line.Quantity,
			Price:     model.NewAmount(p.Display),
		})
	}

	currency := c.Currency
	if currency == "" {
		currency = pricing.BaseCurrency
	}

	bill, err := u.bills.Create(ctx, model.BillCreate{
		UserID:          session.UserID,
		TotalAmount:     model.NewAmount(total),
		Status:          model.BillStatusPending,
		Currency:        currency,
		BonusPointsUsed: used,
		Items:           items,
	})
	if err != nil {
		return CheckoutOutput{}, fromAPIError(err, "create bill failed")
	}
	if bill.ID <= 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadGateway, "create bill failed")
	}

	intent, err := u.payments.CreateIntent(ctx, bill.ID)
	if err != nil {
		return CheckoutOutput{}, fromAPIError(err, "create payment intent failed")
	}
	if intent.PaymentIntentID == "" {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadGateway, "create payment intent failed")
	}

	u.log.WithFields(logrus.Fields{
		"bill_id":     bill.ID,
		"currency":    currency,
		"bonus_used":  used,
		"items_count": len(items),
	}).Info("checkout started")

	return CheckoutOutput{
		BillID:          bill.ID,
		PaymentIntentID: intent.PaymentIntentID,
		ClientSecret:    intent.ClientSecret,
		Currency:        currency,
		Total:           pricing.Format(total, c.Symbol, tr.Tag()),
		TotalValue:      total.StringFixed(2),
		BonusPointsUsed: used,
		BonusEarned:     BonusEarned(payable),
	}, nil
}

type CompleteInput struct {
	PaymentIntentID string `json:"paymentIntentId"`
}

// Complete はカード確認が済んだ決済を完了させ、カートを空にする。
func (u *CheckoutUsecase) Complete(ctx context.Context, in CompleteInput) error {
	if _, ok := u.tokens.Token(ctx); !ok {
		return ErrLoginRequired
	}
	id := strings.TrimSpace(in.PaymentIntentID)
	if id == "" {
		return NewHTTPError(http.StatusBadRequest, "paymentIntentId required")
	}

	if err := u.payments.Complete(ctx, id); err != nil {
		return fromAPIError(err, "complete payment failed")
	}
	u.cart.Clear(ctx)
	u.log.WithField("payment_intent_id", id).Info("checkout completed")
	return nil
}

// UpdateStatus は決済インテントの状態を更新する。
func (u *CheckoutUsecase) UpdateStatus(ctx context.Context, in model.UpdatePaymentRequest) (model.PaymentIntent, error) {
	if _, ok := u.tokens.Token(ctx); !ok {
		return model.PaymentIntent{}, ErrLoginRequired
	}
	if strings.TrimSpace(in.PaymentIntentID) == "" {
		return model.PaymentIntent{}, NewHTTPError(http.StatusBadRequest, "paymentIntentId required")
	}
	out, err := u.payments.UpdateStatus(ctx, in)
	if err != nil {
		return model.PaymentIntent{}, fromAPIError(err, "update payment failed")
	}
	return out, nil
}
