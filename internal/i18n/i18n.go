// Package i18n はUIに返す文言の辞書（en / uk）。
// キーはドット区切り（"genres.openWorld"）。見つからないときは英語、それも無ければキーを返す。
package i18n

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var locales embed.FS

const (
	English   = "en"
	Ukrainian = "uk"
)

var (
	supported = []language.Tag{language.English, language.Ukrainian}
	matcher   = language.NewMatcher(supported)

	loadOnce sync.Once
	bundles  map[string]map[string]string
	loadErr  error
)

// Translator は1言語分の辞書。
type Translator struct {
	lang     string
	tag      language.Tag
	messages map[string]string
	fallback map[string]string
}

// New は lang の Translator を返す。未対応の言語は英語。
func New(lang string) *Translator {
	b := mustLoad()
	code := Normalize(lang)
	tag := language.English
	if code == Ukrainian {
		tag = language.Ukrainian
	}
	return &Translator{
		lang:     code,
		tag:      tag,
		messages: b[code],
		fallback: b[English],
	}
}

func (t *Translator) Lang() string      { return t.lang }
func (t *Translator) Tag() language.Tag { return t.tag }

// T は key の文言。
func (t *Translator) T(key string) string {
	if s, ok := t.messages[key]; ok {
		return s
	}
	if s, ok := t.fallback[key]; ok {
		return s
	}
	return key
}

// Has は現在の言語か英語に key があるか。
func (t *Translator) Has(key string) bool {
	if _, ok := t.messages[key]; ok {
		return true
	}
	_, ok := t.fallback[key]
	return ok
}

// Supported は en / uk（地域付きも可）なら true。
func Supported(lang string) bool {
	tag, err := language.Parse(strings.TrimSpace(lang))
	if err != nil {
		return false
	}
	_, _, conf := matcher.Match(tag)
	return conf != language.No
}

// Normalize は "uk-UA" → "uk" のように対応言語コードにする。判定できなければ "en"。
func Normalize(lang string) string {
	tag, err := language.Parse(strings.TrimSpace(lang))
	if err != nil {
		return English
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return English
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// GenreKey はジャンル名を辞書キーにする（小文字・空白除去）。
// "Open World" → "genres.openWorld"、"Battle Royale" → "genres.battleroyale"。
func GenreKey(genre string) string {
	k := strings.Join(strings.Fields(strings.ToLower(genre)), "")
	if k == "openworld" {
		k = "openWorld"
	}
	return "genres." + k
}

// GenreLabel は辞書にあれば翻訳、無ければ元の名前。
func (t *Translator) GenreLabel(genre string) string {
	if strings.TrimSpace(genre) == "" {
		return ""
	}
	key := GenreKey(genre)
	if !t.Has(key) {
		return genre
	}
	return t.T(key)
}

func mustLoad() map[string]map[string]string {
	loadOnce.Do(func() {
		bundles, loadErr = load()
	})
	if loadErr != nil {
		panic(loadErr)
	}
	return bundles
}

func load() (map[string]map[string]string, error) {
	out := make(map[string]map[string]string, 2)
	for _, code := range []string{English, Ukrainian} {
		b, err := locales.ReadFile("locales/" + code + ".yaml")
		if err != nil {
			return nil, errors.Wrapf(err, "read locale %s", code)
		}
		var tree map[string]any
		if err := yaml.Unmarshal(b, &tree); err != nil {
			return nil, errors.Wrapf(err, "parse locale %s", code)
		}
		flat := make(map[string]string)
		flatten("", tree, flat)
		out[code] = flat
	}
	return out, nil
}

func flatten(prefix string, tree map[string]any, out map[string]string) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch vv := v.(type) {
		case map[string]any:
			flatten(key, vv, out)
		case string:
			out[key] = vv
		default:
			out[key] = fmt.Sprint(vv)
		}
	}
}
