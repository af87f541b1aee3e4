package model

// Settings はUIの表示設定（そのまま返すだけ）。
type Settings struct {
	Language string `json:"language"`
	DarkMode bool   `json:"darkMode"`
}
