package model

import (
	"bytes"
	"encoding/json"
)

type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username,omitempty"`
	Email       string `json:"email,omitempty"`
	Role        Role   `json:"role,omitempty"`
	BonusPoints int64  `json:"bonusPoints"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

type UserProfile struct {
	Username    string    `json:"username,omitempty"`
	Email       string    `json:"email,omitempty"`
	Role        Role      `json:"role,omitempty"`
	BonusPoints int64     `json:"bonusPoints"`
	CreatedAt   string    `json:"createdAt,omitempty"`
	UpdatedAt   string    `json:"updatedAt,omitempty"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	Bills       []Bill    `json:"bills,omitempty"`
	Products    []Product `json:"products,omitempty"`
}

// email/password か Google の IDトークンのどちらか
type UserLogin struct {
	Email          string `json:"email,omitempty"`
	Password       string `json:"password,omitempty"`
	GoogleJwtToken string `json:"googleJwtToken,omitempty"`
}

type UserRegister struct {
	Name           string `json:"name,omitempty"`
	Email          string `json:"email,omitempty"`
	Password       string `json:"password,omitempty"`
	GoogleJwtToken string `json:"googleJwtToken,omitempty"`
}

// ログイン/登録のレスポンス（エンベロープなしで返ってくることがある）
type AuthToken struct {
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
}

// data にトークン文字列だけが入っている場合も受け付ける
func (t *AuthToken) UnmarshalJSON(b []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(b), []byte(`"`)) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = AuthToken{Token: s}
		return nil
	}
	type alias AuthToken
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*t = AuthToken(a)
	return nil
}

// PUT /User/update（multipart）
type UserUpdate struct {
	Username string
	Email    string
	Avatar   *Upload
}

type UserUpdateResult struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// Upload は multipart で送るファイル。
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}
