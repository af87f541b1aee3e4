package usecase

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/domain/pricing"
	"storefront/internal/i18n"
	"storefront/internal/querycache"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SaleBucket はセールの絞り込み。
type SaleBucket string

const (
	SaleNone     SaleBucket = ""
	SaleAll      SaleBucket = "all"     // 割引あり
	Sale50Plus   SaleBucket = "50plus"  // 50%以上
	Sale30Plus   SaleBucket = "30plus"  // 30〜49%
	SaleUnder10  SaleBucket = "under10" // 0 < 割引後 < 10（基準通貨）
	SaleFreeOnly SaleBucket = "free"    // 割引後 == 0
)

type SortKey string

const (
	SortNone      SortKey = ""
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortNameAsc   SortKey = "name_asc"
	SortNameDesc  SortKey = "name_desc"
)

var under10 = decimal.NewFromInt(10)

// CatalogFilter は一覧の絞り込みと並び順。
type CatalogFilter struct {
	Search string
	Genre  string
	Sale   SaleBucket
	Sort   SortKey
}

// ParseCatalogFilter はクエリ文字列の値を検証する。
func ParseCatalogFilter(search, genre, sale, sortKey string) (CatalogFilter, error) {
	f := CatalogFilter{
		Search: strings.TrimSpace(search),
		Genre:  strings.TrimSpace(genre),
		Sale:   SaleBucket(strings.TrimSpace(sale)),
		Sort:   SortKey(strings.TrimSpace(sortKey)),
	}
	if len(f.Search) > 100 {
		return f, NewHTTPError(http.StatusBadRequest, "search too long")
	}
	switch f.Sale {
	case SaleNone, SaleAll, Sale50Plus, Sale30Plus, SaleUnder10, SaleFreeOnly:
	default:
		return f, NewHTTPError(http.StatusBadRequest, "invalid sale")
	}
	switch f.Sort {
	case SortNone, SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc:
	default:
		return f, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}
	return f, nil
}

// GameView は表示用の商品1件。
type GameView struct {
	ID              int64        `json:"id"`
	Title           string       `json:"title"`
	Image           string       `json:"image"`
	Price           string       `json:"price"`
	PriceValue      model.Amount `json:"priceValue"`
	DisplayPrice    *float64     `json:"displayPrice"`
	OriginalPrice   string       `json:"originalPrice,omitempty"`
	DiscountPercent *float64     `json:"discountPercent"`
	Genre           string       `json:"genre,omitempty"`
	GenreLabel      string       `json:"genreLabel,omitempty"`
	IsFavorite      bool         `json:"isFavorite"`
	Stock           int64        `json:"stock"`

	effective decimal.Decimal
	valid     bool
}

// Translator は表示言語。
type Translator interface {
	Tag() language.Tag
	GenreLabel(genre string) string
}

// AssembleCatalog は一覧・お気に入り・絞り込み・通貨・言語から表示用の一覧を作る。
// 同じ入力なら常に同じ結果になる。並び順の指定が無ければ元の順。
func AssembleCatalog(products []model.Product, favorites map[int64]bool, f CatalogFilter, c model.Country, tr Translator) []GameView {
	search := strings.ToLower(f.Search)

	out := make([]GameView, 0, len(products))
	for _, p := range products {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		if f.Genre != "" && p.Category != f.Genre {
			continue
		}
		v := buildGameView(p, favorites[p.ID], c, tr)
		if !inSale(v, f.Sale) {
			continue
		}
		out = append(out, v)
	}

	sortGames(out, f.Sort, tr.Tag())
	return out
}

func buildGameView(p model.Product, favorite bool, c model.Country, tr Translator) GameView {
	price := pricing.Resolve(p.Price, p.DiscountPercentage, c)
	tag := tr.Tag()

	v := GameView{
		ID:              p.ID,
		Title:           p.Name,
		Image:           p.CoverURL,
		Price:           pricing.FormatPrice(price, c, tag),
		PriceValue:      p.Price,
		DiscountPercent: p.DiscountPercentage,
		Genre:           p.Category,
		GenreLabel:      tr.GenreLabel(p.Category),
		IsFavorite:      favorite,
		Stock:           p.Stock,
		effective:       price.Effective,
		valid:           price.Valid,
	}
	if price.Valid {
		d := price.Display.InexactFloat64()
		v.DisplayPrice = &d
		if pricing.DiscountPercent(p.DiscountPercentage) > 0 {
			v.OriginalPrice = pricing.Format(pricing.Convert(price.Base, c.Rate), c.Symbol, tag)
		}
	}
	return v
}

// 割引率・割引後の基準通貨の価格で判定する（通貨を変えても結果は同じ）
func inSale(v GameView, b SaleBucket) bool {
	switch b {
	case SaleNone:
		return true
	case SaleAll:
		return v.DiscountPercent != nil
	case Sale50Plus:
		return v.DiscountPercent != nil && *v.DiscountPercent >= 50
	case Sale30Plus:
		return v.DiscountPercent != nil && *v.DiscountPercent >= 30 && *v.DiscountPercent < 50
	case SaleUnder10:
		return v.valid && v.effective.IsPositive() && v.effective.LessThan(under10)
	case SaleFreeOnly:
		return v.valid && v.effective.IsZero()
	default:
		return false
	}
}

// 価格は割引後の基準通貨の値で比べる。価格不明はどちらの向きでも末尾。
func sortGames(games []GameView, key SortKey, tag language.Tag) {
	switch key {
	case SortPriceAsc, SortPriceDesc:
		desc := key == SortPriceDesc
		sort.SliceStable(games, func(i, j int) bool {
			a, b := games[i], games[j]
			if a.valid != b.valid {
				return a.valid
			}
			if !a.valid {
				return false
			}
			if desc {
				return a.effective.GreaterThan(b.effective)
			}
			return a.effective.LessThan(b.effective)
		})
	case SortNameAsc, SortNameDesc:
		col := collate.New(tag, collate.IgnoreCase)
		desc := key == SortNameDesc
		sort.SliceStable(games, func(i, j int) bool {
			cmp := col.CompareString(games[i].Title, games[j].Title)
			if desc {
				return cmp > 0
			}
			return cmp < 0
		})
	}
}

// GenreOption はジャンル絞り込みの選択肢。
type GenreOption struct {
	Value string `json:"value"`
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Genres は一覧に出てくるジャンル（最初に出た順）。
func Genres(products []model.Product, tr Translator) []GenreOption {
	seen := make(map[string]bool)
	out := []GenreOption{}
	for _, p := range products {
		g := strings.TrimSpace(p.Category)
		if g == "" || seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, GenreOption{Value: g, Key: i18n.GenreKey(g), Label: tr.GenreLabel(g)})
	}
	return out
}

// =====================
// CatalogUsecase
// =====================

type favoriteSet interface {
	Set(ctx context.Context) map[int64]bool
}

type currencySelection interface {
	Selected() model.Country
}

type languageSource interface {
	Language() string
}

type CatalogUsecase struct {
	products  repo.ProductRepository
	favorites favoriteSet
	currency  currencySelection
	lang      languageSource
	log       *logrus.Entry
}

// DI
func NewCatalogUsecase(products repo.ProductRepository, favorites favoriteSet, currency currencySelection, lang languageSource, log *logrus.Entry) *CatalogUsecase {
	return &CatalogUsecase{
		products:  products,
		favorites: favorites,
		currency:  currency,
		lang:      lang,
		log:       log.WithField("component", "catalog"),
	}
}

func (u *CatalogUsecase) translator() *i18n.Translator {
	return i18n.New(u.lang.Language())
}

func (u *CatalogUsecase) List(ctx context.Context, f CatalogFilter) ([]GameView, error) {
	products, err := u.products.List(ctx)
	if err != nil {
		return nil, fromAPIError(err, "catalog fetch failed")
	}
	return AssembleCatalog(products, u.favorites.Set(ctx), f, u.currency.Selected(), u.translator()), nil
}

func (u *CatalogUsecase) Genres(ctx context.Context) ([]GenreOption, error) {
	products, err := u.products.List(ctx)
	if err != nil {
		return nil, fromAPIError(err, "catalog fetch failed")
	}
	return Genres(products, u.translator()), nil
}

// ProductDetailView は詳細画面用。
type ProductDetailView struct {
	GameView
	Description string              `json:"description,omitempty"`
	Developer   string              `json:"developer,omitempty"`
	Publisher   string              `json:"publisher,omitempty"`
	ReleaseDate string              `json:"releaseDate,omitempty"`
	Files       []model.ProductFile `json:"files,omitempty"`
}

func (u *CatalogUsecase) Product(ctx context.Context, id int64) (ProductDetailView, error) {
	if id <= 0 {
		return ProductDetailView{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	p, err := u.products.FindByID(ctx, id)
	if err != nil {
		return ProductDetailView{}, fromAPIError(err, "product fetch failed")
	}
	favs := u.favorites.Set(ctx)
	return ProductDetailView{
		GameView:    buildGameView(p, favs[p.ID], u.currency.Selected(), u.translator()),
		Description: p.Description,
		Developer:   p.Developer,
		Publisher:   p.Publisher,
		ReleaseDate: p.ReleaseDate,
		Files:       p.Files,
	}, nil
}

// Favorites はお気に入り商品だけを表示用にする（一覧の順）。
func (u *CatalogUsecase) Favorites(ctx context.Context) ([]GameView, error) {
	favs := u.favorites.Set(ctx)
	if len(favs) == 0 {
		return []GameView{}, nil
	}
	products, err := u.products.List(ctx)
	if err != nil {
		return nil, fromAPIError(err, "catalog fetch failed")
	}
	picked := make([]model.Product, 0, len(favs))
	for _, p := range products {
		if favs[p.ID] {
			picked = append(picked, p)
		}
	}
	return AssembleCatalog(picked, favs, CatalogFilter{}, u.currency.Selected(), u.translator()), nil
}

// changeSource は入力が変わったことを知らせる依存（お気に入り・通貨・言語）。
type changeSource interface {
	Changes() (<-chan struct{}, func())
}

func (u *CatalogUsecase) changes(dep any) (<-chan struct{}, func()) {
	if src, ok := dep.(changeSource); ok {
		return src.Changes()
	}
	// nil チャネルは選ばれない
	return nil, func() {}
}

// Watch は商品一覧・お気に入り・通貨・言語のどれかが変わるたびに
// 表示用の一覧を作り直して送る。ctx が終わると閉じる。
func (u *CatalogUsecase) Watch(ctx context.Context, f CatalogFilter) <-chan []GameView {
	out := make(chan []GameView, 1)
	sub := u.products.WatchList()
	favCh, stopFav := u.changes(u.favorites)
	curCh, stopCur := u.changes(u.currency)
	langCh, stopLang := u.changes(u.lang)

	go func() {
		defer close(out)
		defer sub.Close()
		defer stopFav()
		defer stopCur()
		defer stopLang()

		var products []model.Product
		loaded := false
		for {
			select {
			case <-ctx.Done():
				return
			case st := <-sub.Updates():
				if st.Status != querycache.StatusSuccess {
					if st.Err != nil {
						u.log.WithError(st.Err).Debug("catalog watch: fetch failed")
					}
					continue
				}
				products, loaded = st.Data, true
			case <-favCh:
			case <-curCh:
			case <-langCh:
			}
			if !loaded {
				continue
			}

			views := AssembleCatalog(products, u.favorites.Set(ctx), f, u.currency.Selected(), u.translator())
			// 読まれていない古い一覧は新しいものに置き換える
			select {
			case <-out:
			default:
			}
			select {
			case out <- views:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
