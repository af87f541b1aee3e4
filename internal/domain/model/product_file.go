package model

type ProductFile struct {
	ID           int64  `json:"id"`
	Path         string `json:"path,omitempty"`
	FileName     string `json:"fileName,omitempty"`
	MimeType     string `json:"mimeType,omitempty"`
	Width        *int   `json:"width,omitempty"`
	Height       *int   `json:"height,omitempty"`
	UserID       *int64 `json:"userId,omitempty"`
	ProductID    *int64 `json:"productId,omitempty"`
	URL          string `json:"url,omitempty"`
	FileType     string `json:"fileType,omitempty"`
	DisplayOrder *int   `json:"displayOrder,omitempty"`
}

type PhotoFile struct {
	ID           int64  `json:"id"`
	Path         string `json:"path,omitempty"`
	FileName     string `json:"fileName,omitempty"`
	MimeType     string `json:"mimeType,omitempty"`
	Width        *int   `json:"width,omitempty"`
	Height       *int   `json:"height,omitempty"`
	UserID       *int64 `json:"userId,omitempty"`
	ProductID    *int64 `json:"productId,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
	FileCategory string `json:"fileCategory,omitempty"`
}
