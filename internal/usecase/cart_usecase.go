package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"app/internal/cart"
	repo "app/internal/repository"
)

// CartUsecase は /cart の業務ロジックです。
// カート本体はセッション単位のインメモリ状態（cart.Store）で、
// 在庫・公開チェックだけ商品リポジトリに聞きに行きます。
type CartUsecase struct {
	carts       *cart.Store
	productRepo repo.ProductRepository
}

func NewCartUsecase(carts *cart.Store, productRepo repo.ProductRepository) *CartUsecase {
	return &CartUsecase{
		carts:       carts,
		productRepo: productRepo,
	}
}

type CartItemResponse struct {
	ProductID int64  `json:"product_id"`
	VariantID string `json:"variant_id"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Total int64              `json:"total"`
}

type AddCartInput struct {
	ProductID int64
	VariantID string
	Quantity  int64
}

type UpdateCartItemInput struct {
	ProductID int64
	VariantID string
	Quantity  int64
}

// GetCart はカート取得（無ければ空を返す）。
func (u *CartUsecase) GetCart(ctx context.Context, sessionID string) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid session")
	}
	return buildCartResponse(u.carts.GetOrCreate(sessionID)), nil
}

// AddToCart はカートに追加（同一(商品, variant)は数量加算）。
// 追加後の数量がvariant在庫を超えるなら確定させず400を返す。
func (u *CartUsecase) AddToCart(ctx context.Context, sessionID string, in AddCartInput) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid session")
	}
	if in.ProductID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if strings.TrimSpace(in.VariantID) == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid variant_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	// 商品チェック（公開のみ）
	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}

	v, ok := p.FindVariant(in.VariantID)
	if !ok {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}

	c := u.carts.GetOrCreate(sessionID)

	var existingQty int64 = 0
	if it, ok := c.Find(in.ProductID, in.VariantID); ok {
		existingQty = it.Quantity
	}
	if existingQty+in.Quantity > v.Stock {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
	}

	image := ""
	if len(p.Images) > 0 {
		image = p.Images[0]
	}

	// 価格・名前・画像は追加時点のスナップショット（後から再取得しない）
	c.Add(cart.Item{
		ProductID:         in.ProductID,
		VariantID:         in.VariantID,
		Quantity:          in.Quantity,
		UnitPriceSnapshot: p.Price,
		NameSnapshot:      p.Name,
		ImageSnapshot:     image,
	})

	return buildCartResponse(c), nil
}

// 数量変更。0以下は削除、在庫超えは在庫値へ黙って矯正する。
// 数量の不正でエラーは返さない（コンテナの契約）。
func (u *CartUsecase) UpdateQuantity(ctx context.Context, sessionID string, in UpdateCartItemInput) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid session")
	}

	c := u.carts.GetOrCreate(sessionID)

	if in.Quantity <= 0 {
		c.SetQuantity(in.ProductID, in.VariantID, 0)
		return buildCartResponse(c), nil
	}

	if _, ok := c.Find(in.ProductID, in.VariantID); !ok {
		// 存在しない明細への更新は無視
		return buildCartResponse(c), nil
	}

	qty := in.Quantity

	// 現在庫に合わせて矯正。商品が取れないときは更新を無視する。
	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if err == nil && p.IsActive {
		if v, ok := p.FindVariant(in.VariantID); ok {
			if qty > v.Stock {
				qty = v.Stock
			}
			c.SetQuantity(in.ProductID, in.VariantID, qty)
		}
	}

	return buildCartResponse(c), nil
}

// 明細削除
func (u *CartUsecase) RemoveItem(ctx context.Context, sessionID string, productID int64, variantID string) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid session")
	}

	c := u.carts.GetOrCreate(sessionID)
	c.Remove(productID, variantID)
	return buildCartResponse(c), nil
}

// カートを空にして破棄する
func (u *CartUsecase) ClearCart(ctx context.Context, sessionID string) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid session")
	}

	u.carts.Discard(sessionID)
	return CartResponse{Items: []CartItemResponse{}, Total: 0}, nil
}

func buildCartResponse(c *cart.Cart) CartResponse {
	items := c.Items()
	respItems := make([]CartItemResponse, 0, len(items))

	for _, it := range items {
		respItems = append(respItems, CartItemResponse{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Name:      it.NameSnapshot,
			Image:     it.ImageSnapshot,
			Price:     it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
		})
	}

	return CartResponse{Items: respItems, Total: c.Total()}
}
