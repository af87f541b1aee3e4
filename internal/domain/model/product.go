package model

// Product はストアAPIの ProductDto。
// 日時はサーバ側の書式に依存しないよう文字列のまま持つ。
type Product struct {
	ID                 int64         `json:"id"`
	Name               string        `json:"name"`
	Description        string        `json:"description,omitempty"`
	Price              Amount        `json:"price"`
	Stock              int64         `json:"stock"`
	RegionID           *int64        `json:"regionId,omitempty"`
	Region             *Region       `json:"region,omitempty"`
	CoverURL           string        `json:"coverUrl,omitempty"`
	Files              []ProductFile `json:"files,omitempty"`
	Licenses           []License     `json:"licenses,omitempty"`
	DiscountPercentage *float64      `json:"discountPercentage,omitempty"`
	Developer          string        `json:"developer,omitempty"`
	Publisher          string        `json:"publisher,omitempty"`
	Category           string        `json:"category,omitempty"`
	ReleaseDate        string        `json:"releaseDate,omitempty"`
	CreatedAt          string        `json:"createdAt,omitempty"`
	UpdatedAt          string        `json:"updatedAt,omitempty"`
}

type Region struct {
	ID        int64  `json:"id"`
	Name      string `json:"name,omitempty"`
	Code      string `json:"code,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

type License struct {
	ID         int64  `json:"id"`
	ProductID  int64  `json:"productId"`
	BillItemID int64  `json:"billItemId"`
	LicenseKey string `json:"licenseKey,omitempty"`
	Status     string `json:"status,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
	ExpiresAt  string `json:"expiresAt,omitempty"`
}

// POST /Product
type CreateProduct struct {
	Name               string   `json:"name"`
	Description        string   `json:"description,omitempty"`
	Price              Amount   `json:"price"`
	Stock              int64    `json:"stock"`
	RegionID           int64    `json:"regionId"`
	DiscountPercentage *float64 `json:"discountPercentage,omitempty"`
	Developer          string   `json:"developer,omitempty"`
	Publisher          string   `json:"publisher,omitempty"`
	Category           string   `json:"category,omitempty"`
	ReleaseDate        string   `json:"releaseDate,omitempty"`
}

// PUT /Product/{id}（nilは変更なし）
type UpdateProduct struct {
	Name               *string  `json:"name,omitempty"`
	Description        *string  `json:"description,omitempty"`
	Price              *Amount  `json:"price,omitempty"`
	Stock              *int64   `json:"stock,omitempty"`
	RegionID           *int64   `json:"regionId,omitempty"`
	DiscountPercentage *float64 `json:"discountPercentage,omitempty"`
	Developer          *string  `json:"developer,omitempty"`
	Publisher          *string  `json:"publisher,omitempty"`
	Category           *string  `json:"category,omitempty"`
	ReleaseDate        *string  `json:"releaseDate,omitempty"`
}
