// Package pricing は基準通貨の価格から表示価格を求める純粋関数をまとめる。
package pricing

import (
	"strings"

	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Unavailable は価格不明の表示。0 とは区別する。
const Unavailable = "—"

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Price は1商品分の計算結果。
type Price struct {
	Base      decimal.Decimal // 割引前（基準通貨）
	Effective decimal.Decimal // 割引後（基準通貨、整数）
	Display   decimal.Decimal // 選択通貨に換算した値
	Valid     bool
}

// EffectivePrice は割引を適用して整数に丸めた基準通貨の価格を返す。
// 丸めは換算の前に1回だけ行う。
func EffectivePrice(base model.Amount, discountPercent *float64) (decimal.Decimal, bool) {
	if !base.Valid {
		return decimal.Zero, false
	}
	if discountPercent == nil {
		return base.Value, true
	}
	factor := one.Sub(clampPercent(*discountPercent).Div(hundred))
	return base.Value.Mul(factor).Round(0), true
}

// ComputeDisplayPrice は換算後の価格を返す。換算は小数2桁まで保持し、整数には丸め直さない。
func ComputeDisplayPrice(base model.Amount, discountPercent *float64, rate float64) (decimal.Decimal, bool) {
	eff, ok := EffectivePrice(base, discountPercent)
	if !ok {
		return decimal.Zero, false
	}
	return Convert(eff, rate), true
}

// Convert は基準通貨の金額を rate で換算する。
func Convert(v decimal.Decimal, rate float64) decimal.Decimal {
	return v.Mul(decimal.NewFromFloat(rate)).Round(2)
}

func Resolve(base model.Amount, discountPercent *float64, c model.Country) Price {
	eff, ok := EffectivePrice(base, discountPercent)
	if !ok {
		return Price{}
	}
	return Price{
		Base:      base.Value,
		Effective: eff,
		Display:   Convert(eff, c.Rate),
		Valid:     true,
	}
}

// Format は 0〜2桁の小数・ロケールの桁区切りで整形し、通貨記号を後ろに付ける。
func Format(v decimal.Decimal, symbol string, tag language.Tag) string {
	f, _ := v.Float64()
	p := message.NewPrinter(tag)
	s := p.Sprintf("%v", number.Decimal(f, number.MinFractionDigits(0), number.MaxFractionDigits(2)))
	if symbol == "" {
		return s
	}
	return s + " " + symbol
}

// FormatPrice は価格が不明なら Unavailable を返す。
func FormatPrice(p Price, c model.Country, tag language.Tag) string {
	if !p.Valid {
		return Unavailable
	}
	return Format(p.Display, c.Symbol, tag)
}

// DiscountPercent は nil を 0 として返す。
func DiscountPercent(d *float64) float64 {
	if d == nil {
		return 0
	}
	return clampPercent(*d).InexactFloat64()
}

func clampPercent(d float64) decimal.Decimal {
	v := decimal.NewFromFloat(d)
	if v.IsNegative() {
		return decimal.Zero
	}
	if v.GreaterThan(hundred) {
		return hundred
	}
	return v
}

// ParseLanguage は "en" / "uk" などを language.Tag にする。不正なら英語。
func ParseLanguage(s string) language.Tag {
	tag, err := language.Parse(strings.TrimSpace(s))
	if err != nil {
		return language.English
	}
	return tag
}
