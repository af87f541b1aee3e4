package pricing

import (
	"encoding/json"
	"testing"

	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func pct(v float64) *float64 { return &v }

func TestComputeDisplayPrice_DiscountThenConvert(t *testing.T) {
	got, ok := ComputeDisplayPrice(model.AmountFromInt(100), pct(50), 0.024)
	require.True(t, ok)
	assert.True(t, got.Equal(decimal.RequireFromString("1.2")), got.String())

	usd, _ := FindCountry(DefaultCountries(), "usa")
	assert.Equal(t, "1.2 $", Format(got, usd.Symbol, language.English))
}

func TestComputeDisplayPrice_NoDiscount(t *testing.T) {
	got, ok := ComputeDisplayPrice(model.AmountFromInt(100), nil, 1)
	require.True(t, ok)
	assert.True(t, got.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "100 ₴", Format(got, "₴", language.English))
}

func TestEffectivePrice_RoundsBeforeConversion(t *testing.T) {
	// 79 * 0.7 = 55.3 -> 55
	eff, ok := EffectivePrice(model.AmountFromInt(79), pct(30))
	require.True(t, ok)
	assert.True(t, eff.Equal(decimal.NewFromInt(55)))

	// 55 * 0.022 = 1.21（整数に丸め直さない）
	got, _ := ComputeDisplayPrice(model.AmountFromInt(79), pct(30), 0.022)
	assert.True(t, got.Equal(decimal.RequireFromString("1.21")), got.String())

	// 15 * 0.5 = 7.5 -> 8
	eff, _ = EffectivePrice(model.AmountFromInt(15), pct(50))
	assert.True(t, eff.Equal(decimal.NewFromInt(8)))
}

func TestEffectivePrice_ClampsDiscount(t *testing.T) {
	eff, _ := EffectivePrice(model.AmountFromInt(50), pct(150))
	assert.True(t, eff.IsZero())

	eff, _ = EffectivePrice(model.AmountFromInt(50), pct(-10))
	assert.True(t, eff.Equal(decimal.NewFromInt(50)))
}

func TestUnavailablePrice(t *testing.T) {
	var a model.Amount
	require.NoError(t, json.Unmarshal([]byte(`"abc"`), &a))
	assert.False(t, a.Valid)

	p := Resolve(a, nil, DefaultCountries()[0])
	assert.Equal(t, Unavailable, FormatPrice(p, DefaultCountries()[0], language.English))

	// 0 は有効な価格
	p = Resolve(model.AmountFromInt(0), nil, DefaultCountries()[0])
	assert.Equal(t, "0 ₴", FormatPrice(p, DefaultCountries()[0], language.English))
}

func TestFormat_Grouping(t *testing.T) {
	assert.Equal(t, "1,234.5 €", Format(decimal.RequireFromString("1234.5"), "€", language.English))
	assert.Equal(t, "3.33", Format(decimal.RequireFromString("3.333"), "", language.English))
}

func TestAmountJSON(t *testing.T) {
	var p model.Product
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"price":19.99}`), &p))
	assert.True(t, p.Price.Valid)
	assert.Equal(t, "19.99", p.Price.Value.String())

	require.NoError(t, json.Unmarshal([]byte(`{"id":2,"price":null}`), &p))
	assert.False(t, p.Price.Valid)

	b, err := json.Marshal(model.AmountFromInt(42))
	require.NoError(t, err)
	assert.Equal(t, "42", string(b))
}

func TestDefaultCountries(t *testing.T) {
	list := DefaultCountries()
	require.Len(t, list, 10)
	assert.Equal(t, BaseCurrency, list[0].Currency)
	assert.Equal(t, 1.0, list[0].Rate)

	_, ok := FindCountry(list, "atlantis")
	assert.False(t, ok)
}

func TestLoadCountries_RejectsBadRate(t *testing.T) {
	for _, rate := range []string{"0", "-1", ".nan", ".inf", "-.inf"} {
		_, err := parseCountries([]byte("- nameKey: x\n  currency: X\n  symbol: x\n  rate: " + rate + "\n"))
		assert.Error(t, err, rate)
	}
}
