package usecase

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
)

// 署名の検証はストアAPI側。ここでは中身を読むだけ。
var claimsParser = jwt.NewParser()

// roleClaimKeys は role が入りうるクレーム名（ASP.NET の長い名前も含む）。
var roleClaimKeys = []string{
	"role",
	"Role",
	"http://schemas.microsoft.com/ws/2008/06/identity/claims/role",
}

// Session はトークンから読んだログイン情報。
type Session struct {
	UserID int64      `json:"userId"`
	Role   model.Role `json:"role,omitempty"`
}

func (s Session) IsAdmin() bool {
	return strings.EqualFold(string(s.Role), string(model.RoleAdmin))
}

// ParseSession はトークンのクレームから user id（Id / sub / id の順）と role を取り出す。
func ParseSession(token string) (Session, error) {
	claims := jwt.MapClaims{}
	if _, _, err := claimsParser.ParseUnverified(token, claims); err != nil {
		return Session{}, &HTTPError{Status: http.StatusUnauthorized, Message: "invalid token", Redirect: "/login"}
	}

	var s Session
	for _, k := range []string{"Id", "sub", "id"} {
		v, ok := claims[k]
		if !ok {
			continue
		}
		id, err := claimInt(v)
		if err != nil {
			continue
		}
		s.UserID = id
		break
	}
	if s.UserID <= 0 {
		return Session{}, &HTTPError{Status: http.StatusUnauthorized, Message: "invalid user id in token", Redirect: "/login"}
	}

	for _, k := range roleClaimKeys {
		if r, ok := claims[k].(string); ok && r != "" {
			s.Role = model.Role(r)
			break
		}
	}
	return s, nil
}

func claimInt(v any) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(t), 10, 64)
	default:
		return 0, fmt.Errorf("unexpected claim type %T", v)
	}
}
