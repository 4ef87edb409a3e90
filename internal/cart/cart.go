package cart

import "sync"

// カート1件分のインメモリ状態。
// (ProductID, VariantID) をキーに、追加順を保った明細リストを持つ。
// 在庫上限のチェックは呼び出し側（usecase）の仕事で、
// このコンテナ自体は数量の矯正だけを行い、エラーは返さない。
// 同一セッションの同時リクエストが同じカートを触るため、明細はmutexで守る。

// カート明細。価格・名前・画像は追加時点のスナップショット。
type Item struct {
	ProductID         int64  `json:"product_id"`
	VariantID         string `json:"variant_id"`
	Quantity          int64  `json:"quantity"`
	UnitPriceSnapshot int64  `json:"unit_price_snapshot"`
	NameSnapshot      string `json:"name_snapshot"`
	ImageSnapshot     string `json:"image_snapshot"`
}

type Cart struct {
	mu    sync.Mutex
	items []Item
}

func New() *Cart {
	return &Cart{items: []Item{}}
}

// 同一(product, variant)は数量加算、無ければ末尾に追加。
// Quantityが1未満の追加は無視する。
func (c *Cart) Add(item Item) {
	if item.Quantity < 1 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ProductID == item.ProductID && c.items[i].VariantID == item.VariantID {
			c.items[i].Quantity += item.Quantity
			return
		}
	}
	c.items = append(c.items, item)
}

// 数量を設定する。0以下は削除扱い。存在しないキーは何もしない。
func (c *Cart) SetQuantity(productID int64, variantID string, qty int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if qty <= 0 {
		c.remove(productID, variantID)
		return
	}
	for i := range c.items {
		if c.items[i].ProductID == productID && c.items[i].VariantID == variantID {
			c.items[i].Quantity = qty
			return
		}
	}
}

// 明細を削除する。無ければ何もしない。
func (c *Cart) Remove(productID int64, variantID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.remove(productID, variantID)
}

func (c *Cart) remove(productID int64, variantID string) {
	for i := range c.items {
		if c.items[i].ProductID == productID && c.items[i].VariantID == variantID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// 全明細を破棄する
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = []Item{}
}

// スナップショット価格×数量の合計
func (c *Cart) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total int64
	for _, it := range c.items {
		total += it.UnitPriceSnapshot * it.Quantity
	}
	return total
}

// 明細のコピーを追加順で返す（内部スライスは渡さない）
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// (product, variant)の明細を返す
func (c *Cart) Find(productID int64, variantID string) (Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, it := range c.items {
		if it.ProductID == productID && it.VariantID == variantID {
			return it, true
		}
	}
	return Item{}, false
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.items)
}
