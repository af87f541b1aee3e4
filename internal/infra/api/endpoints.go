package api

import "fmt"

// エンドポイント（BaseURL からの相対パス）
const (
	PathRegister = "/Authorization/register"
	PathLogin    = "/Authorization/login"

	PathBills    = "/Bill"
	PathUserBill = "/Bill/user"

	PathProducts = "/Product"

	PathUsers        = "/User"
	PathUserUpdate   = "/User/update"
	PathUserProfile  = "/User/profile"
	PathUserProducts = "/User/products"

	PathStripeCreate       = "/Payment/stripe/create"
	PathStripeUpdateStatus = "/Payment/stripe/update-status"
	PathStripeComplete     = "/Payment/stripe/complete"

	PathFavorites = "/Favorite"
)

func BillPath(id int64) string {
	return fmt.Sprintf("/Bill/%d", id)
}

func ProductPath(id int64) string {
	return fmt.Sprintf("/Product/%d", id)
}

func ProductCoverPath(id, coverFileID int64) string {
	return fmt.Sprintf("/Product/%d/cover/%d", id, coverFileID)
}

func UserPath(id int64) string {
	return fmt.Sprintf("/User/%d", id)
}

func UserProfilePath(id int64) string {
	return fmt.Sprintf("/User/profile/%d", id)
}

func ProductFilesPath(productID int64) string {
	return fmt.Sprintf("/File/product/%d", productID)
}

func ProductFilesBulkPath(productID int64) string {
	return fmt.Sprintf("/File/product/%d/bulk", productID)
}

func ProductFilePath(fileID int64) string {
	return fmt.Sprintf("/File/product/file/%d", fileID)
}

// DeleteProductFilePath は削除用（取得用とパスが違う）。
func DeleteProductFilePath(fileID int64) string {
	return fmt.Sprintf("/File/product/%d", fileID)
}

func PhotoFilePath(photoID int64) string {
	return fmt.Sprintf("/File/photo/%d", photoID)
}

func BlobPath(id int64) string {
	return fmt.Sprintf("/blob/%d", id)
}

func FavoriteCheckPath(productID int64) string {
	return fmt.Sprintf("/Favorite/check/%d", productID)
}

func FavoritePath(productID int64) string {
	return fmt.Sprintf("/Favorite/%d", productID)
}
