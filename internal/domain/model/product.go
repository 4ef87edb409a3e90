package model

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

// 商品の購入オプション（色など）。在庫はvariant単位で持つ。
type Variant struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Stock int64  `json:"stock"`
}

type VariantList []Variant

func (v VariantList) Value() (driver.Value, error) { return jsonbValue(v) }
func (v *VariantList) Scan(src interface{}) error  { return jsonbScan(v, src) }

type ImageList []string

func (v ImageList) Value() (driver.Value, error) { return jsonbValue(v) }
func (v *ImageList) Scan(src interface{}) error  { return jsonbScan(v, src) }

// TotalStockはvariant在庫の合計。書き込み時に必ず再計算する。
type Product struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Price       int64          `gorm:"not null" json:"price"`
	Images      ImageList      `gorm:"type:jsonb;not null;default:'[]'" json:"images"`
	Variants    VariantList    `gorm:"type:jsonb;not null;default:'[]'" json:"variants"`
	TotalStock  int64          `gorm:"not null" json:"total_stock"`
	IsActive    bool           `gorm:"not null;default:false" json:"is_active"`
	CreatedAt   time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// variant在庫の合計
func (p Product) SumVariantStock() int64 {
	var sum int64
	for _, v := range p.Variants {
		sum += v.Stock
	}
	return sum
}

// idのvariantを返す
func (p Product) FindVariant(variantID string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == variantID {
			return v, true
		}
	}
	return Variant{}, false
}
