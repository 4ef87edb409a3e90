package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// 在庫が足りない（チェックアウト時の再確認用）
var ErrInsufficientStock = errors.New("insufficient stock")

// 一覧検索
type ProductListQuery struct {
	Page     int
	Limit    int
	Q        string
	MinPrice *int64
	MaxPrice *int64
	Sort     string
}

// 商品の永続化（保存・取得）だけを約束。
// total_stockは実装側がvariant在庫から再計算して保存する。
type ProductRepository interface {
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	// ダッシュボード集計用に全件（非公開含む）を返す
	ListAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	SoftDelete(ctx context.Context, id int64) error

	// 指定variantの在庫が足りれば減らす。足りなければErrInsufficientStock。
	DecrementVariantStock(ctx context.Context, productID int64, variantID string, qty int64) error
}
