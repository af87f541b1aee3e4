package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/sirupsen/logrus"
)

// BillUsecase は注文（請求）履歴と管理者のステータス変更。
type BillUsecase struct {
	bills  repo.BillRepository
	tokens repo.TokenRepository
	log    *logrus.Entry
	now    func() time.Time
}

// DI
func NewBillUsecase(bills repo.BillRepository, tokens repo.TokenRepository, log *logrus.Entry) *BillUsecase {
	return &BillUsecase{
		bills:  bills,
		tokens: tokens,
		log:    log.WithField("component", "bills"),
		now:    time.Now,
	}
}

// Mine はログイン中ユーザーの請求一覧。
func (u *BillUsecase) Mine(ctx context.Context) ([]model.Bill, error) {
	if _, ok := u.tokens.Token(ctx); !ok {
		return nil, ErrLoginRequired
	}
	list, err := u.bills.ListMine(ctx)
	if err != nil {
		return nil, fromAPIError(err, "bills fetch failed")
	}
	return list, nil
}

func (u *BillUsecase) Get(ctx context.Context, id int64) (model.Bill, error) {
	if id <= 0 {
		return model.Bill{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	b, err := u.bills.FindByID(ctx, id)
	if err != nil {
		return model.Bill{}, fromAPIError(err, "bill fetch failed")
	}
	return b, nil
}

// 全件（管理者）
func (u *BillUsecase) AdminList(ctx context.Context) ([]model.Bill, error) {
	list, err := u.bills.List(ctx)
	if err != nil {
		return nil, fromAPIError(err, "bills fetch failed")
	}
	return list, nil
}

type AdminUpdateBillStatusInput struct {
	Status string `json:"status"`
}

// ステータス更新。同じなら何もしない。取消・返金済みは変更不可。
func (u *BillUsecase) AdminUpdateStatus(ctx context.Context, id int64, in AdminUpdateBillStatusInput) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	newStatus := model.BillStatus(strings.TrimSpace(in.Status))
	if !newStatus.Valid() {
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	b, err := u.bills.FindByID(ctx, id)
	if err != nil {
		return fromAPIError(err, "bill fetch failed")
	}
	if b.Status == newStatus {
		return nil
	}
	// 終端ガード
	if b.Status.Terminal() {
		return NewHTTPError(http.StatusBadRequest, "cannot change "+strings.ToLower(string(b.Status))+" bill")
	}

	err = u.bills.Update(ctx, id, model.BillUpdate{
		ID:          b.ID,
		UserID:      b.UserID,
		Currency:    b.Currency,
		TotalAmount: b.TotalAmount,
		Status:      newStatus,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   u.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fromAPIError(err, "bill update failed")
	}

	u.log.WithFields(logrus.Fields{
		"bill_id": id,
		"before":  b.Status,
		"after":   newStatus,
	}).Info("bill status changed")
	return nil
}

func (u *BillUsecase) AdminDelete(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := u.bills.Delete(ctx, id); err != nil {
		return fromAPIError(err, "bill delete failed")
	}
	return nil
}
