package model

import (
	"database/sql/driver"
	"time"
)

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusReady      OrderStatus = "ready"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusPickedUp   OrderStatus = "picked-up"
)

// 遷移可能なステータスかどうか
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusProcessing, OrderStatusReady, OrderStatusDelivered, OrderStatusPickedUp:
		return true
	}
	return false
}

type DeliveryType string

const (
	DeliveryTypePickup   DeliveryType = "pickup"
	DeliveryTypeDelivery DeliveryType = "delivery"
)

// 注文明細。カート追加時点のスナップショットを必ず保存する。
type LineItem struct {
	ProductID         int64  `json:"product_id"`
	VariantID         string `json:"variant_id"`
	Quantity          int64  `json:"quantity"`
	UnitPriceSnapshot int64  `json:"unit_price_snapshot"`
	NameSnapshot      string `json:"name_snapshot"`
	ImageSnapshot     string `json:"image_snapshot"`
}

type LineItemList []LineItem

func (v LineItemList) Value() (driver.Value, error) { return jsonbValue(v) }
func (v *LineItemList) Scan(src interface{}) error  { return jsonbScan(v, src) }

// Totalは明細から再計算した値のみ保存する（クライアント値は信用しない）。
type Order struct {
	ID              int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID      int64        `gorm:"not null;index" json:"customer_id"`
	Items           LineItemList `gorm:"type:jsonb;not null;default:'[]'" json:"items"`
	Total           int64        `gorm:"not null" json:"total"`
	Status          OrderStatus  `gorm:"type:varchar(20);not null;index" json:"status"`
	DeliveryType    DeliveryType `gorm:"type:varchar(20);not null" json:"delivery_type"`
	ShippingAddress string       `gorm:"type:text" json:"shipping_address"`
	Notes           string       `gorm:"type:text" json:"notes"`
	IdempotencyKey  string       `gorm:"type:varchar(255);not null;uniqueIndex" json:"-"`
	CreatedAt       time.Time    `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
