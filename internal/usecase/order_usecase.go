package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"app/internal/cart"
	"app/internal/domain/model"
	repo "app/internal/repository"
)

// CheckoutUsecase はセッションカートから注文を確定する。
type CheckoutUsecase struct {
	tx    repo.TransactionManager
	carts *cart.Store
}

func NewCheckoutUsecase(tx repo.TransactionManager, carts *cart.Store) *CheckoutUsecase {
	return &CheckoutUsecase{tx: tx, carts: carts}
}

type CheckoutInput struct {
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	CustomerAddress string
	DeliveryType    string
	ShippingAddress string
	Notes           string
	IdempotencyKey  string
}

type OrderItemOutput struct {
	ProductID int64  `json:"product_id"`
	VariantID string `json:"variant_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

type OrderOutput struct {
	ID           int64             `json:"id"`
	CustomerID   int64             `json:"customer_id"`
	Status       string            `json:"status"`
	DeliveryType string            `json:"delivery_type"`
	Total        int64             `json:"total"`
	Notes        string            `json:"notes,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	Items        []OrderItemOutput `json:"items"`
}

func (u *CheckoutUsecase) Checkout(ctx context.Context, sessionID string, in CheckoutInput) (OrderOutput, error) {
	if sessionID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid session")
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if strings.TrimSpace(in.CustomerPhone) == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "phone required")
	}

	deliveryType := model.DeliveryType(in.DeliveryType)
	switch deliveryType {
	case model.DeliveryTypePickup, model.DeliveryTypeDelivery:
	default:
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid delivery_type")
	}

	shippingAddress := strings.TrimSpace(in.ShippingAddress)
	if deliveryType == model.DeliveryTypeDelivery && shippingAddress == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "shipping_address required")
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" || len(key) > 255 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid idempotency_key")
	}

	c, ok := u.carts.Get(sessionID)
	if !ok || c.Len() == 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}
	cartItems := c.Items()

	var out OrderOutput

	//注文処理はトランザクション
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ結果
		existing, found, err := r.Orders().FindByIdempotencyKey(ctx, key)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if found {
			out = toOrderOutput(existing)
			return nil
		}

		//customerは電話番号でfind-or-create
		customer, err := r.Customers().FindByPhone(ctx, strings.TrimSpace(in.CustomerPhone))
		if errors.Is(err, repo.ErrNotFound) {
			customer, err = r.Customers().Create(ctx, model.Customer{
				Name:    strings.TrimSpace(in.CustomerName),
				Email:   strings.TrimSpace(in.CustomerEmail),
				Phone:   strings.TrimSpace(in.CustomerPhone),
				Address: strings.TrimSpace(in.CustomerAddress),
			})
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//在庫を確定時に再チェックして減らす。
		//価格は再取得せず、カート追加時点のスナップショットで確定する。
		orderItems := make(model.LineItemList, 0, len(cartItems))
		var total int64 = 0

		for _, ci := range cartItems {
			p, err := r.Products().FindByID(ctx, ci.ProductID)
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusBadRequest, "invalid")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !p.IsActive {
				return NewHTTPError(http.StatusBadRequest, "invalid")
			}

			//variant在庫の減算（足りなければ注文ごと失敗）
			err = r.Products().DecrementVariantStock(ctx, ci.ProductID, ci.VariantID, ci.Quantity)
			if errors.Is(err, repo.ErrInsufficientStock) {
				return NewHTTPError(http.StatusBadRequest, "out of stock")
			}
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusBadRequest, "invalid")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			orderItems = append(orderItems, model.LineItem{
				ProductID:         ci.ProductID,
				VariantID:         ci.VariantID,
				Quantity:          ci.Quantity,
				UnitPriceSnapshot: ci.UnitPriceSnapshot,
				NameSnapshot:      ci.NameSnapshot,
				ImageSnapshot:     ci.ImageSnapshot,
			})

			total += ci.UnitPriceSnapshot * ci.Quantity
		}

		// 注文作成。totalは明細から再計算した値だけを保存する。
		order := model.Order{
			CustomerID:      customer.ID,
			Items:           orderItems,
			Total:           total,
			Status:          model.OrderStatusProcessing,
			DeliveryType:    deliveryType,
			ShippingAddress: shippingAddress,
			Notes:           strings.TrimSpace(in.Notes),
			IdempotencyKey:  key,
		}

		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			//競合（同時で同じキーが入った等）はもう一回検索して同じ結果を返す
			ex2, found2, err2 := r.Orders().FindByIdempotencyKey(ctx, key)
			if err2 == nil && found2 {
				out = toOrderOutput(ex2)
				return nil
			}
			return NewHTTPError(http.StatusBadRequest, "idempotency conflict")
		}

		order.ID = orderID
		out = toOrderOutput(order)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}

	//確定できたのでセッションカートは破棄
	u.carts.Discard(sessionID)

	return out, nil
}

func toOrderOutput(o model.Order) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(o.Items))
	for _, it := range o.Items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Name:      it.NameSnapshot,
			Price:     it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
		})
	}

	return OrderOutput{
		ID:           o.ID,
		CustomerID:   o.CustomerID,
		Status:       string(o.Status),
		DeliveryType: string(o.DeliveryType),
		Total:        o.Total,
		Notes:        o.Notes,
		CreatedAt:    o.CreatedAt,
		Items:        outItems,
	}
}
