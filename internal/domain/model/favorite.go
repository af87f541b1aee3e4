package model

type Favorite struct {
	ID        int64    `json:"id"`
	UserID    int64    `json:"userId"`
	Product   *Product `json:"product,omitempty"`
	CreatedAt string   `json:"createdAt,omitempty"`
}
