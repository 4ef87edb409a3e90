package analytics

import (
	"testing"
	"time"

	"app/internal/domain/model"

	"github.com/stretchr/testify/assert"
)

// 2026-03-15 12:00 UTC固定
var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func day(offset int) time.Time {
	return testNow.AddDate(0, 0, offset)
}

// =====================
// 空入力
// =====================

func TestCompute_EmptyInputs(t *testing.T) {
	r := Compute(nil, nil, nil, 7, testNow, nil)

	assert.Equal(t, 7, r.RangeDays)
	assert.Equal(t, int64(0), r.Visitors)
	assert.Equal(t, int64(0), r.PageViews)
	assert.Equal(t, int64(0), r.NewCustomers)
	assert.Equal(t, int64(0), r.ReturningCustomers)

	// トレンドは必ずrangeDays本（全部ゼロ）
	assert.Equal(t, 7, len(r.Trend))
	for _, p := range r.Trend {
		assert.Equal(t, int64(0), p.Orders)
	}

	// 固定2ページだけ、商品が無いので商品ページは出ない
	assert.Equal(t, 2, len(r.TopPages))
	assert.Equal(t, "/", r.TopPages[0].Path)
	assert.Equal(t, "/products", r.TopPages[1].Path)
}

func TestCompute_InvalidRange(t *testing.T) {
	r := Compute(nil, nil, nil, 0, testNow, nil)
	assert.Empty(t, r.Trend)
	assert.Empty(t, r.TopPages)
}

// =====================
// 期間フィルタ
// =====================

// 境界は含む：createdAt == now - rangeDays*24h はrecent扱い
func TestCompute_CutoffIsInclusive(t *testing.T) {
	cutoff := testNow.Add(-7 * 24 * time.Hour)

	orders := []model.Order{
		{ID: 1, CustomerID: 1, CreatedAt: cutoff},
		{ID: 2, CustomerID: 2, CreatedAt: cutoff.Add(-time.Second)}, // 期間外
	}

	r := Compute(orders, nil, nil, 7, testNow, nil)
	assert.Equal(t, int64(1), r.Visitors)
	assert.Equal(t, int64(3), r.PageViews) // 3*1 + 12*0
}

// 作成日時ゼロのレコードは黙って除外する（エラーにしない）
func TestCompute_ZeroCreatedAtExcluded(t *testing.T) {
	orders := []model.Order{
		{ID: 1, CustomerID: 1}, // CreatedAtゼロ
		{ID: 2, CustomerID: 2, CreatedAt: day(-1)},
	}

	r := Compute(orders, nil, nil, 7, testNow, nil)
	assert.Equal(t, int64(1), r.Visitors)
}

// =====================
// 訪問者
// =====================

func TestCompute_VisitorsAreDistinctCustomers(t *testing.T) {
	orders := []model.Order{
		{ID: 1, CustomerID: 1, CreatedAt: day(-1)},
		{ID: 2, CustomerID: 1, CreatedAt: day(-2)},
		{ID: 3, CustomerID: 2, CreatedAt: day(-3)},
	}

	r := Compute(orders, nil, nil, 7, testNow, nil)
	assert.Equal(t, int64(2), r.Visitors)
}

// 期間を広げても訪問者数は減らない（7日→30日）
func TestCompute_WiderRangeNeverDecreasesVisitors(t *testing.T) {
	orders := []model.Order{
		{ID: 1, CustomerID: 1, CreatedAt: day(-1)},
		{ID: 2, CustomerID: 2, CreatedAt: day(-5)},
		{ID: 3, CustomerID: 3, CreatedAt: day(-10)}, // 7日だと期間外
		{ID: 4, CustomerID: 4, CreatedAt: day(-25)},
		{ID: 5, CreatedAt: day(-20)}, // customer無し
	}

	week := Compute(orders, nil, nil, 7, testNow, nil)
	month := Compute(orders, nil, nil, 30, testNow, nil)

	assert.Equal(t, int64(2), week.Visitors)
	assert.Equal(t, int64(4), month.Visitors)
	assert.GreaterOrEqual(t, month.Visitors, week.Visitors)
}

// customerが紐づかない注文しか無いときは注文数で代用
func TestCompute_VisitorsFallbackToOrderCount(t *testing.T) {
	orders := []model.Order{
		{ID: 1, CreatedAt: day(-1)},
		{ID: 2, CreatedAt: day(-2)},
	}

	r := Compute(orders, nil, nil, 7, testNow, nil)
	assert.Equal(t, int64(2), r.Visitors)
}

// =====================
// 新規・リピート
// =====================

// 新規は1人1回、リピートは期間内の注文単位で数える（非対称）
func TestCompute_NewOncePerCustomer_ReturningPerOrder(t *testing.T) {
	customers := []model.Customer{
		{ID: 1, CreatedAt: day(-2)},  // 期間内 → 新規
		{ID: 2, CreatedAt: day(-60)}, // 期間前 → リピート候補
	}
	orders := []model.Order{
		{ID: 1, CustomerID: 1, CreatedAt: day(-1)},
		{ID: 2, CustomerID: 1, CreatedAt: day(-1)},
		{ID: 3, CustomerID: 2, CreatedAt: day(-1)},
		{ID: 4, CustomerID: 2, CreatedAt: day(-2)},
		{ID: 5, CustomerID: 2, CreatedAt: day(-3)},
	}

	r := Compute(orders, customers, nil, 7, testNow, nil)
	assert.Equal(t, int64(1), r.NewCustomers)       // customer 1 だけ、注文2件でも1
	assert.Equal(t, int64(3), r.ReturningCustomers) // customer 2 の注文3件ぶん
}

// =====================
// 合成メトリクス（ゼロ乱数で決定的）
// =====================

func TestCompute_SyntheticBasesWithZeroJitter(t *testing.T) {
	orders := []model.Order{
		{ID: 1, CustomerID: 1, CreatedAt: day(-1)},
		{ID: 2, CustomerID: 2, CreatedAt: day(-1)},
	}
	products := []model.Product{{ID: 1}, {ID: 2}, {ID: 3}}

	r := Compute(orders, nil, products, 30, testNow, nil)

	assert.Equal(t, int64(3*2+12*3), r.PageViews)
	assert.Equal(t, int64(95), r.AvgSessionSeconds)
	assert.Equal(t, int64(32), r.BounceRatePct)
}

func TestCompute_DeterministicWithNilRand(t *testing.T) {
	orders := []model.Order{{ID: 1, CustomerID: 1, CreatedAt: day(-1)}}

	a := Compute(orders, nil, nil, 7, testNow, nil)
	b := Compute(orders, nil, nil, 7, testNow, nil)
	assert.Equal(t, a, b)
}

// =====================
// トレンド
// =====================

func TestCompute_TrendBucketsPerCalendarDay(t *testing.T) {
	orders := []model.Order{
		{ID: 1, CustomerID: 1, CreatedAt: testNow.Add(-1 * time.Hour)}, // 今日
		{ID: 2, CustomerID: 1, CreatedAt: day(-1)},
		{ID: 3, CustomerID: 2, CreatedAt: day(-1)},
	}

	r := Compute(orders, nil, nil, 7, testNow, nil)
	assert.Equal(t, 7, len(r.Trend))

	// 古い日付が先頭、末尾が今日
	last := r.Trend[6]
	assert.Equal(t, testNow.Format("2006-01-02"), last.Date)
	assert.Equal(t, int64(1), last.Orders)

	prev := r.Trend[5]
	assert.Equal(t, day(-1).Format("2006-01-02"), prev.Date)
	assert.Equal(t, int64(2), prev.Orders)

	// ゼロ乱数ならvisitors=orders、page_views=3*orders
	for _, p := range r.Trend {
		assert.Equal(t, p.Orders, p.Visitors)
		assert.Equal(t, 3*p.Orders, p.PageViews)
	}
}

// =====================
// トップページ
// =====================

func TestCompute_TopPagesSharesAreFloored(t *testing.T) {
	orders := []model.Order{
		{ID: 1, CustomerID: 1, CreatedAt: day(-1)},
	}
	products := []model.Product{{ID: 10}, {ID: 20}, {ID: 30}, {ID: 40}}

	r := Compute(orders, nil, products, 7, testNow, nil)

	// pageViews = 3*1 + 12*4 = 51
	assert.Equal(t, int64(51), r.PageViews)

	// 固定2ページ＋先頭3商品まで（4個目は出ない）
	assert.Equal(t, 5, len(r.TopPages))
	assert.Equal(t, PageStat{Path: "/", Views: 20}, r.TopPages[0])          // 51*40/100
	assert.Equal(t, PageStat{Path: "/products", Views: 15}, r.TopPages[1])  // 51*30/100
	assert.Equal(t, PageStat{Path: "/products/10", Views: 6}, r.TopPages[2]) // 51*12/100
	assert.Equal(t, PageStat{Path: "/products/20", Views: 4}, r.TopPages[3]) // 51*8/100
	assert.Equal(t, PageStat{Path: "/products/30", Views: 2}, r.TopPages[4]) // 51*4/100
}

// 乱数ありでもトレンドの注文数と日付は変わらない
func TestCompute_JitterDoesNotChangeOrders(t *testing.T) {
	orders := []model.Order{
		{ID: 1, CustomerID: 1, CreatedAt: day(-1)},
		{ID: 2, CustomerID: 2, CreatedAt: day(-1)},
	}

	seeded := Compute(orders, nil, nil, 7, testNow, NewRand(1))
	plain := Compute(orders, nil, nil, 7, testNow, nil)

	assert.Equal(t, len(plain.Trend), len(seeded.Trend))
	for i := range plain.Trend {
		assert.Equal(t, plain.Trend[i].Date, seeded.Trend[i].Date)
		assert.Equal(t, plain.Trend[i].Orders, seeded.Trend[i].Orders)
		assert.GreaterOrEqual(t, seeded.Trend[i].Visitors, seeded.Trend[i].Orders)
	}
}
