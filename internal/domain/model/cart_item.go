package model

// GameSnapshot はカート追加時点の商品の表示用コピー。
// 価格は必ず数値（PriceValue）で持つ。表示文字列は解析しない。
type GameSnapshot struct {
	ID              int64    `json:"id"`
	Title           string   `json:"title"`
	Image           string   `json:"image"`
	Price           string   `json:"price,omitempty"`
	PriceValue      Amount   `json:"priceValue"`
	Genre           string   `json:"genre,omitempty"`
	DiscountPercent *float64 `json:"discountPercent"`
}

// カートの明細
// 同じ商品IDの明細は1つだけ。Quantity は常に1以上。
type CartLineItem struct {
	Game         GameSnapshot `json:"game"`
	Quantity     int          `json:"quantity"`
	ForMyAccount bool         `json:"forMyAccount"`
}

// SnapshotOf は商品から明細用スナップショットを作る。
func SnapshotOf(p Product) GameSnapshot {
	return GameSnapshot{
		ID:              p.ID,
		Title:           p.Name,
		Image:           p.CoverURL,
		PriceValue:      p.Price,
		Genre:           p.Category,
		DiscountPercent: p.DiscountPercentage,
	}
}
