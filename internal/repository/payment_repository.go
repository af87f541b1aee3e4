package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 決済インテントの作成・更新・完了（カード確認はUI側）
type PaymentRepository interface {
	CreateIntent(ctx context.Context, billID int64) (model.PaymentIntent, error)
	UpdateStatus(ctx context.Context, in model.UpdatePaymentRequest) (model.PaymentIntent, error)
	Complete(ctx context.Context, paymentIntentID string) error
}
