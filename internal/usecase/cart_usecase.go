package usecase

import (
	"context"
	"net/http"
	"sync"

	"storefront/internal/domain/model"
	"storefront/internal/domain/pricing"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
)

// 購入額の10%をボーナスとして付与（小数切り捨て）
var bonusEarnRate = decimal.NewFromFloat(0.1)

// CartUsecase はローカルのカート。
// 変更は保存が終わってから返る。保存に失敗してもエラーにせずメモリの内容で続け、
// 次の変更でまとめて保存し直す。
type CartUsecase struct {
	mu       sync.Mutex
	items    []model.CartLineItem
	repo     repo.CartRepository
	products repo.ProductRepository
	log      *logrus.Entry
	degraded bool
}

// DI
// 保存データが無い・壊れている・読めないときは空のカートで始める。
func NewCartUsecase(ctx context.Context, cartRepo repo.CartRepository, productRepo repo.ProductRepository, log *logrus.Entry) *CartUsecase {
	u := &CartUsecase{
		repo:     cartRepo,
		products: productRepo,
		log:      log.WithField("component", "cart"),
		items:    []model.CartLineItem{},
	}

	items, err := cartRepo.Load(ctx)
	if err != nil {
		u.log.WithError(err).Warn("load cart failed, starting empty")
		return u
	}
	u.items = sanitize(items)
	return u
}

// 保存データの不正な明細（数量0以下・重複）を直す
func sanitize(items []model.CartLineItem) []model.CartLineItem {
	out := make([]model.CartLineItem, 0, len(items))
	seen := make(map[int64]int, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			it.Quantity = 1
		}
		if i, ok := seen[it.Game.ID]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		seen[it.Game.ID] = len(out)
		out = append(out, it)
	}
	return out
}

// Items はコピーを返す。
func (u *CartUsecase) Items() []model.CartLineItem {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.snapshotLocked()
}

// AddItem は同じ商品があれば数量+1、無ければ末尾に追加（数量1・自分用）。
func (u *CartUsecase) AddItem(ctx context.Context, game model.GameSnapshot) []model.CartLineItem {
	u.mu.Lock()
	defer u.mu.Unlock()

	if i := u.indexLocked(game.ID); i >= 0 {
		u.items[i].Quantity++
	} else {
		u.items = append(u.items, model.CartLineItem{Game: game, Quantity: 1, ForMyAccount: true})
	}
	u.persistLocked(ctx)
	return u.snapshotLocked()
}

// SetQuantity は1未満を1にする。明細が無ければ何もしない。
func (u *CartUsecase) SetQuantity(ctx context.Context, productID int64, quantity int) []model.CartLineItem {
	u.mu.Lock()
	defer u.mu.Unlock()

	i := u.indexLocked(productID)
	if i < 0 {
		return u.snapshotLocked()
	}
	if quantity < 1 {
		quantity = 1
	}
	u.items[i].Quantity = quantity
	u.persistLocked(ctx)
	return u.snapshotLocked()
}

func (u *CartUsecase) RemoveItem(ctx context.Context, productID int64) []model.CartLineItem {
	u.mu.Lock()
	defer u.mu.Unlock()

	i := u.indexLocked(productID)
	if i < 0 {
		return u.snapshotLocked()
	}
	u.items = append(u.items[:i], u.items[i+1:]...)
	u.persistLocked(ctx)
	return u.snapshotLocked()
}

// ToggleGiftFlag は自分用/ギフトを切り替える。
func (u *CartUsecase) ToggleGiftFlag(ctx context.Context, productID int64) []model.CartLineItem {
	u.mu.Lock()
	defer u.mu.Unlock()

	i := u.indexLocked(productID)
	if i < 0 {
		return u.snapshotLocked()
	}
	u.items[i].ForMyAccount = !u.items[i].ForMyAccount
	u.persistLocked(ctx)
	return u.snapshotLocked()
}

func (u *CartUsecase) Clear(ctx context.Context) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.items = []model.CartLineItem{}
	u.persistLocked(ctx)
}

// AddProduct は商品を取得してスナップショットを追加する。
func (u *CartUsecase) AddProduct(ctx context.Context, productID int64) ([]model.CartLineItem, error) {
	if productID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid productId")
	}
	p, err := u.products.FindByID(ctx, productID)
	if err != nil {
		return nil, fromAPIError(err, "product fetch failed")
	}
	return u.AddItem(ctx, model.SnapshotOf(p)), nil
}

func (u *CartUsecase) indexLocked(productID int64) int {
	for i := range u.items {
		if u.items[i].Game.ID == productID {
			return i
		}
	}
	return -1
}

func (u *CartUsecase) snapshotLocked() []model.CartLineItem {
	out := make([]model.CartLineItem, len(u.items))
	copy(out, u.items)
	return out
}

// ロックを持ったまま保存する（返る前に書き込みを終える）。
// 呼び出し元のリクエストが切れても保存は止めない。
func (u *CartUsecase) persistLocked(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), prefSaveTimeout)
	defer cancel()

	if err := u.repo.Save(ctx, u.snapshotLocked()); err != nil {
		if !u.degraded {
			u.log.WithError(err).Error("save cart failed, continuing in memory")
		}
		u.degraded = true
		return
	}
	if u.degraded {
		u.log.Info("cart storage recovered")
		u.degraded = false
	}
}

// =====================
// 合計
// =====================

type CartLineView struct {
	model.CartLineItem
	UnitPrice     string `json:"unitPrice"`
	OriginalPrice string `json:"originalPrice,omitempty"`
	LineTotal     string `json:"lineTotal"`
	PriceValid    bool   `json:"priceValid"`
}

type CartSummary struct {
	Items          []CartLineView `json:"items"`
	ItemCount      int            `json:"itemCount"`
	SubtotalBase   string         `json:"subtotalBase"`
	Subtotal       string         `json:"subtotal"`
	Currency       string         `json:"currency"`
	BonusEarned    int64          `json:"bonusEarned"`
	HasUnavailable bool           `json:"hasUnavailable"`

	subtotal decimal.Decimal
}

// SubtotalValue は基準通貨の小計。
func (s CartSummary) SubtotalValue() decimal.Decimal {
	return s.subtotal
}

// Summary は選択通貨での明細と合計。価格不明の明細は合計に入れない。
func (u *CartUsecase) Summary(c model.Country, tag language.Tag) CartSummary {
	items := u.Items()

	s := CartSummary{Items: make([]CartLineView, 0, len(items)), Currency: c.Currency}
	for _, it := range items {
		p := pricing.Resolve(it.Game.PriceValue, it.Game.DiscountPercent, c)
		v := CartLineView{CartLineItem: it, PriceValid: p.Valid}
		s.ItemCount += it.Quantity

		if !p.Valid {
			v.UnitPrice = pricing.Unavailable
			v.LineTotal = pricing.Unavailable
			s.HasUnavailable = true
			s.Items = append(s.Items, v)
			continue
		}

		qty := decimal.NewFromInt(int64(it.Quantity))
		v.UnitPrice = pricing.FormatPrice(p, c, tag)
		if it.Game.DiscountPercent != nil && !p.Effective.Equal(p.Base) {
			v.OriginalPrice = pricing.Format(pricing.Convert(p.Base, c.Rate), c.Symbol, tag)
		}
		v.LineTotal = pricing.Format(pricing.Convert(p.Effective.Mul(qty), c.Rate), c.Symbol, tag)
		s.subtotal = s.subtotal.Add(p.Effective.Mul(qty))
		s.Items = append(s.Items, v)
	}

	s.SubtotalBase = s.subtotal.String()
	s.Subtotal = pricing.Format(pricing.Convert(s.subtotal, c.Rate), c.Symbol, tag)
	s.BonusEarned = BonusEarned(s.subtotal)
	return s
}

// BonusEarned は floor(total × 10%)。
func BonusEarned(total decimal.Decimal) int64 {
	if total.IsNegative() {
		return 0
	}
	return total.Mul(bonusEarnRate).Floor().IntPart()
}

// RedeemBonus は1ポイント=基準通貨1として使えるだけ使う。
// 使うポイントは requested・available・合計（整数部）の最小。
func RedeemBonus(total decimal.Decimal, available, requested int64) (used int64, payable decimal.Decimal) {
	used = requested
	if available < used {
		used = available
	}
	if max := total.Floor().IntPart(); max < used {
		used = max
	}
	if used < 0 {
		used = 0
	}
	return used, total.Sub(decimal.NewFromInt(used))
}
