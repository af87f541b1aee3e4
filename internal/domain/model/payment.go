package model

// 決済プロバイダの PaymentIntent（カード確認はUI側SDKで行う）
type PaymentIntent struct {
	PaymentIntentID string `json:"paymentIntentId"`
	ClientSecret    string `json:"clientSecret,omitempty"`
	Status          string `json:"status,omitempty"`
}

type UpdatePaymentRequest struct {
	PaymentIntentID string `json:"paymentIntentId,omitempty"`
	PaymentMethod   string `json:"paymentMethod,omitempty"`
	Action          string `json:"action,omitempty"`
}
