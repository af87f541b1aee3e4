package repository

import "context"

// 認証トークンの保存先。remember=true なら永続、false ならセッション（プロセス内）。
// 読むときは永続 → セッションの順。
type TokenRepository interface {
	Token(ctx context.Context) (string, bool)
	Save(ctx context.Context, token string, remember bool) error
	ClearToken(ctx context.Context) error
}
