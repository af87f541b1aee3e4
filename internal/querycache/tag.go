package querycache

import "fmt"

// TagType はキャッシュタグの種類（リソース名）。
type TagType string

const (
	TagUser     TagType = "User"
	TagProduct  TagType = "Product"
	TagBill     TagType = "Bill"
	TagFile     TagType = "File"
	TagPayment  TagType = "Payment"
	TagFavorite TagType = "Favorite"
)

// ListID はコレクション全体を表すタグID。
const ListID = "LIST"

// Tag は {type, id}。ID が空のタグで無効化すると同じ種類の全エントリが対象になる。
type Tag struct {
	Type TagType
	ID   string
}

func (t Tag) String() string {
	if t.ID == "" {
		return string(t.Type)
	}
	return string(t.Type) + "#" + t.ID
}

// ID は個別リソース用のタグ（ID(TagProduct, 5) → Product#5、
// ID(TagFile, "PHOTO-3") → File#PHOTO-3）。
func ID(t TagType, id any) Tag {
	return Tag{Type: t, ID: fmt.Sprint(id)}
}

func List(t TagType) Tag {
	return Tag{Type: t, ID: ListID}
}

// Type は種類だけのタグ。
func Type(t TagType) Tag {
	return Tag{Type: t}
}

// matches は無効化タグ inv がエントリのタグ provided に当たるか。
func (inv Tag) matches(provided Tag) bool {
	if inv.Type != provided.Type {
		return false
	}
	return inv.ID == "" || inv.ID == provided.ID
}
