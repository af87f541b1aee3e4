package querycache

import "context"

// MutationDef は書き込み系エンドポイント1つ分の定義。
type MutationDef[A, R any] struct {
	Run func(ctx context.Context, a A) (R, error)
	// Invalidates は成功時に無効化するタグ。
	Invalidates func(a A, r R) []Tag
}

type Mutation[A, R any] struct {
	c   *Cache
	def MutationDef[A, R]
}

func NewMutation[A, R any](c *Cache, def MutationDef[A, R]) *Mutation[A, R] {
	if def.Run == nil {
		panic("querycache: MutationDef.Run is required")
	}
	return &Mutation[A, R]{c: c, def: def}
}

// Run は実行して、成功したらタグを無効化する。失敗時は何も無効化しない。
func (m *Mutation[A, R]) Run(ctx context.Context, a A) (R, error) {
	r, err := m.def.Run(ctx, a)
	if err != nil {
		return r, err
	}
	if m.def.Invalidates != nil {
		m.c.Invalidate(m.def.Invalidates(a, r)...)
	}
	return r, nil
}
