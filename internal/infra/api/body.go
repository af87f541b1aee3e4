package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"sort"
	"strings"

	"storefront/internal/domain/model"

	"github.com/go-faster/errors"
)

const contentTypeJSON = "application/json"

// encodeBody は BodyType に従ってボディを作る。リトライのたびに読み直せるよう []byte で返す。
func encodeBody(body any, bt BodyType) ([]byte, string, error) {
	if body == nil {
		return nil, "", nil
	}

	switch bt {
	case BodyForm:
		return encodeForm(body)
	case BodyRaw:
		b, err := json.Marshal(body)
		if err != nil {
			return nil, "", errors.Wrap(err, "encode raw body")
		}
		return b, contentTypeJSON, nil
	default:
		switch x := body.(type) {
		case json.RawMessage:
			return x, contentTypeJSON, nil
		case []byte:
			return x, contentTypeJSON, nil
		}
		b, err := json.Marshal(body)
		if err != nil {
			return nil, "", errors.Wrap(err, "encode json body")
		}
		return b, contentTypeJSON, nil
	}
}

// ファイルはファイルパート、それ以外は文字列化。nil は送らない。
func encodeForm(body any) ([]byte, string, error) {
	fields, ok := body.(map[string]any)
	if !ok {
		return nil, "", errors.Errorf("form body must be map[string]any, got %T", body)
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, k := range keys {
		switch v := fields[k].(type) {
		case nil:
			continue
		case model.Upload:
			if err := writeFilePart(w, k, v); err != nil {
				return nil, "", err
			}
		case *model.Upload:
			if v == nil {
				continue
			}
			if err := writeFilePart(w, k, *v); err != nil {
				return nil, "", err
			}
		case []model.Upload:
			for _, u := range v {
				if err := writeFilePart(w, k, u); err != nil {
					return nil, "", err
				}
			}
		default:
			if err := w.WriteField(k, SerializeParamValue(v)); err != nil {
				return nil, "", errors.Wrap(err, "write form field")
			}
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "close multipart")
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeFilePart(w *multipart.Writer, field string, u model.Upload) error {
	ct := u.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(u.FileName)))
	h.Set("Content-Type", ct)

	part, err := w.CreatePart(h)
	if err != nil {
		return errors.Wrap(err, "create file part")
	}
	if _, err := part.Write(u.Data); err != nil {
		return errors.Wrap(err, "write file part")
	}
	return nil
}
