package model

type BillStatus string

func (s BillStatus) Valid() bool {
	switch s {
	case BillStatusPending, BillStatusPaid, BillStatusCancelled, BillStatusRefunded, BillStatusProcessing, BillStatusCompleted:
		return true
	}
	return false
}

// Terminal は変更できない状態。
func (s BillStatus) Terminal() bool {
	return s == BillStatusCancelled || s == BillStatusRefunded
}

const (
	BillStatusPending    BillStatus = "Pending"
	BillStatusPaid       BillStatus = "Paid"
	BillStatusCancelled  BillStatus = "Cancelled"
	BillStatusRefunded   BillStatus = "Refunded"
	BillStatusProcessing BillStatus = "Processing"
	BillStatusCompleted  BillStatus = "Completed"
)

type Bill struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"userId,omitempty"`
	Currency    string     `json:"currency,omitempty"`
	CreatedAt   string     `json:"createdAt,omitempty"`
	UpdatedAt   string     `json:"updatedAt,omitempty"`
	TotalAmount Amount     `json:"totalAmount"`
	Status      BillStatus `json:"status,omitempty"`
	BillItems   []BillItem `json:"billItems,omitempty"`
}

type BillItem struct {
	ID       int64    `json:"id"`
	Quantity int      `json:"quantity"`
	Price    Amount   `json:"price"`
	Product  *Product `json:"product,omitempty"`
}

type BillCreateItem struct {
	ProductID int64  `json:"productId"`
	Quantity  int    `json:"quantity"`
	Price     Amount `json:"price"`
}

type BillCreate struct {
	UserID          int64            `json:"userId"`
	TotalAmount     Amount           `json:"totalAmount"`
	Status          BillStatus       `json:"status"`
	Currency        string           `json:"currency,omitempty"`
	BonusPointsUsed int64            `json:"bonusPointsUsed"`
	Items           []BillCreateItem `json:"items,omitempty"`
}

type BillUpdate struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"userId"`
	Currency    string     `json:"currency,omitempty"`
	TotalAmount Amount     `json:"totalAmount"`
	Status      BillStatus `json:"status"`
	CreatedAt   string     `json:"createdAt"`
	UpdatedAt   string     `json:"updatedAt,omitempty"`
}
