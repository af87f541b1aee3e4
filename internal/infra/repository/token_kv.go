package repository

import (
	"context"
	"strings"

	repo "storefront/internal/repository"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
)

// TokenKVRepository は認証トークンを persistent（remember-me）か
// session（プロセス内）に保存する。読むときは persistent が先。
type TokenKVRepository struct {
	persistent repo.KVStore
	session    repo.KVStore
	log        *logrus.Entry
}

// DI
func NewTokenKVRepository(persistent, session repo.KVStore, log *logrus.Entry) *TokenKVRepository {
	return &TokenKVRepository{persistent: persistent, session: session, log: log}
}

func (r *TokenKVRepository) Token(ctx context.Context) (string, bool) {
	for _, s := range []repo.KVStore{r.persistent, r.session} {
		b, ok, err := s.Get(ctx, repo.KeyAuthToken)
		if err != nil {
			r.log.WithError(err).Warn("read token failed")
			continue
		}
		if ok && strings.TrimSpace(string(b)) != "" {
			return string(b), true
		}
	}
	return "", false
}

// Save は片方にだけ保存する（もう片方は消す）。
func (r *TokenKVRepository) Save(ctx context.Context, token string, remember bool) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("token is empty")
	}
	target, other := r.session, r.persistent
	if remember {
		target, other = r.persistent, r.session
	}
	if err := other.Delete(ctx, repo.KeyAuthToken); err != nil {
		r.log.WithError(err).Warn("delete token failed")
	}
	if err := target.Set(ctx, repo.KeyAuthToken, []byte(token)); err != nil {
		return errors.Wrap(err, "save token")
	}
	return nil
}

// ClearToken は両方から消す。
func (r *TokenKVRepository) ClearToken(ctx context.Context) error {
	var errs []error
	for _, s := range []repo.KVStore{r.persistent, r.session} {
		if err := s.Delete(ctx, repo.KeyAuthToken); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Wrap(errs[0], "clear token")
	}
	return nil
}
