package model

// Country は通貨選択の1エントリ。Rate は基準通貨に対する倍率。
type Country struct {
	NameKey  string  `json:"nameKey" yaml:"nameKey"`
	Currency string  `json:"currency" yaml:"currency"`
	Symbol   string  `json:"symbol" yaml:"symbol"`
	Rate     float64 `json:"rate" yaml:"rate"`
}
