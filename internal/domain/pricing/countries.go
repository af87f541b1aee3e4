package pricing

import (
	_ "embed"
	"math"
	"os"

	"storefront/internal/domain/model"

	"github.com/go-faster/errors"
	"gopkg.in/yaml.v3"
)

//go:embed countries.yaml
var defaultCountriesYAML []byte

// BaseCurrency は商品価格が保存されている通貨。
const BaseCurrency = "UAH"

// DefaultCountries は組み込みの国・通貨テーブルを返す。先頭が基準通貨。
func DefaultCountries() []model.Country {
	list, err := parseCountries(defaultCountriesYAML)
	if err != nil {
		panic(err)
	}
	return list
}

// LoadCountries は path のYAMLを読む。path が空なら組み込みテーブル。
func LoadCountries(path string) ([]model.Country, error) {
	if path == "" {
		return DefaultCountries(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read countries")
	}
	return parseCountries(b)
}

func parseCountries(b []byte) ([]model.Country, error) {
	var list []model.Country
	if err := yaml.Unmarshal(b, &list); err != nil {
		return nil, errors.Wrap(err, "parse countries")
	}
	if len(list) == 0 {
		return nil, errors.New("countries: empty table")
	}
	for i, c := range list {
		if c.NameKey == "" || c.Symbol == "" {
			return nil, errors.Errorf("countries[%d]: nameKey and symbol are required", i)
		}
		if math.IsNaN(c.Rate) || math.IsInf(c.Rate, 0) || c.Rate <= 0 {
			return nil, errors.Errorf("countries[%d]: rate must be a finite number > 0", i)
		}
	}
	return list, nil
}

// FindCountry は nameKey で探す。
func FindCountry(list []model.Country, nameKey string) (model.Country, bool) {
	for _, c := range list {
		if c.NameKey == nameKey {
			return c, true
		}
	}
	return model.Country{}, false
}
