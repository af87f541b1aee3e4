package api

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// EmptyListMarker は空コレクションの代わりに返ってくる値。
const EmptyListMarker = "empty list"

// envelope は {success, message, data?, errors?, details?}。
type envelope struct {
	Success bool
	Message string
	Data    json.RawMessage
	Errors  []string
	Details []string
}

// parseEnvelope は success フィールドの有無でエンベロープかどうかを判定する。
// エンベロープでなければ false（呼び出し側で生JSONとして扱う）。
func parseEnvelope(body []byte) (envelope, bool) {
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return envelope{}, false
	}
	success := root.Get("success")
	if !success.Exists() {
		return envelope{}, false
	}

	env := envelope{
		Success: success.Bool(),
		Message: root.Get("message").String(),
		Errors:  toStrings(root.Get("errors")),
		Details: toStrings(root.Get("details")),
	}

	d := root.Get("data")
	switch {
	case !d.Exists():
		// 決済系は {success, paymentIntentId} のように data なしでフラットに返す
		env.Data = json.RawMessage(body)
	case d.Type == gjson.Null:
	case d.Type == gjson.String && d.Str == EmptyListMarker:
		env.Data = json.RawMessage("[]")
	default:
		env.Data = json.RawMessage(d.Raw)
	}
	return env, true
}

// errors / details は文字列でも配列でも来る
func toStrings(r gjson.Result) []string {
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	if r.IsArray() {
		out := make([]string, 0, len(r.Array()))
		r.ForEach(func(_, v gjson.Result) bool {
			out = append(out, v.String())
			return true
		})
		return out
	}
	if r.IsObject() {
		// ProblemDetails 形式 {"field": ["msg"]}
		var out []string
		r.ForEach(func(_, v gjson.Result) bool {
			out = append(out, toStrings(v)...)
			return true
		})
		return out
	}
	return []string{r.String()}
}

// エンベロープでないエラーJSONからメッセージを拾う
func rawErrorMessage(body []byte) (string, []string) {
	root := gjson.ParseBytes(body)
	msg := root.Get("message").String()
	if msg == "" {
		msg = root.Get("title").String()
	}
	if msg == "" {
		msg = root.Get("error").String()
	}
	return msg, toStrings(root.Get("errors"))
}
