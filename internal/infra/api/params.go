package api

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"time"
)

const isoLayout = "2006-01-02T15:04:05.000Z"

// EncodeParams はクエリパラメータを組み立てる。
// スライスは同じキーを繰り返し、日時はISO-8601、map/構造体はJSON文字列にする。
func EncodeParams(params map[string]any) url.Values {
	values := url.Values{}
	if len(params) == 0 {
		return values
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := params[k]
		rv := reflect.ValueOf(v)
		if v != nil && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && !isBytes(rv) {
			for i := 0; i < rv.Len(); i++ {
				values.Add(k, SerializeParamValue(rv.Index(i).Interface()))
			}
			continue
		}
		values.Add(k, SerializeParamValue(v))
	}
	return values
}

// SerializeParamValue は1つの値を文字列にする。
func SerializeParamValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case time.Time:
		return x.UTC().Format(isoLayout)
	case *time.Time:
		if x == nil {
			return "null"
		}
		return x.UTC().Format(isoLayout)
	case fmt.Stringer:
		return x.String()
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "null"
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map, reflect.Struct:
		b, err := json.Marshal(rv.Interface())
		if err != nil {
			return fmt.Sprint(rv.Interface())
		}
		return string(b)
	default:
		return fmt.Sprint(rv.Interface())
	}
}

func isBytes(rv reflect.Value) bool {
	return rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8
}
