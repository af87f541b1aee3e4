package model

import (
	"bytes"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount は基準通貨（UAH）の金額。
// null・欠落・解釈できない値は Valid=false として保持し、0 とは区別する。
type Amount struct {
	Value decimal.Decimal
	Valid bool
}

func NewAmount(v decimal.Decimal) Amount {
	return Amount{Value: v, Valid: true}
}

func AmountFromInt(v int64) Amount {
	return NewAmount(decimal.NewFromInt(v))
}

func AmountFromFloat(v float64) Amount {
	return NewAmount(decimal.NewFromFloat(v))
}

// UnmarshalJSON は数値・数値文字列を受け付ける。それ以外はエラーにせず無効値にする。
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := string(bytes.TrimSpace(b))
	if s == "" || s == "null" {
		*a = Amount{}
		return nil
	}
	s = strings.TrimSpace(strings.Trim(s, `"`))

	d, err := decimal.NewFromString(s)
	if err != nil {
		*a = Amount{}
		return nil
	}
	*a = NewAmount(d)
	return nil
}

// APIは数値で受け取るので引用符なしで出す
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return []byte(a.Value.String()), nil
}
