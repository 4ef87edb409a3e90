package analytics

import (
	"fmt"
	"math/rand"
	"time"

	"app/internal/domain/model"
)

// ダッシュボード集計の純粋関数。
// 入力コレクションは読むだけで変更しない。途中でエラーにもしない：
// 作成日時が欠けたレコードは「期間外」として黙って除外する。
//
// visitors / page_views / bounce などは計測値ではなく注文数からの推定値。
// 乱数で散らす部分はRand経由に隔離してあり、テストはゼロ乱数で
// 決定的な成分だけを検証できる。

// 合成メトリクスに使う乱数源
type Rand interface {
	Intn(n int) int
}

// math/randベースのRand
func NewRand(seed int64) Rand {
	return rand.New(rand.NewSource(seed))
}

type TrendPoint struct {
	Date      string `json:"date"`
	Orders    int64  `json:"orders"`
	Visitors  int64  `json:"visitors"`
	PageViews int64  `json:"page_views"`
}

type PageStat struct {
	Path  string `json:"path"`
	Views int64  `json:"views"`
}

type Report struct {
	RangeDays          int          `json:"range_days"`
	Visitors           int64        `json:"visitors"`
	PageViews          int64        `json:"page_views"`
	AvgSessionSeconds  int64        `json:"avg_session_seconds"`
	BounceRatePct      int64        `json:"bounce_rate_pct"`
	NewCustomers       int64        `json:"new_customers"`
	ReturningCustomers int64        `json:"returning_customers"`
	Trend              []TrendPoint `json:"trend"`
	TopPages           []PageStat   `json:"top_pages"`
}

// 合成値のベース。ゼロ乱数のときの決定的成分。
const (
	avgSessionBase       = 95
	avgSessionJitter     = 90
	bounceBase           = 32
	bounceJitter         = 25
	trendVisitorsJitter  = 4
	trendPageViewsJitter = 10
)

type noJitter struct{}

func (noJitter) Intn(n int) int { return 0 }

// Compute は直近rangeDays日の集計レポートを作る。
// 期間はcutoff = now - rangeDays*24h、境界は含む（createdAt >= cutoff）。
func Compute(
	orders []model.Order,
	customers []model.Customer,
	products []model.Product,
	rangeDays int,
	now time.Time,
	rng Rand,
) Report {
	if rng == nil {
		rng = noJitter{}
	}
	if rangeDays < 1 {
		return Report{Trend: []TrendPoint{}, TopPages: []PageStat{}}
	}

	cutoff := now.Add(-time.Duration(rangeDays) * 24 * time.Hour)

	// 期間内の注文だけ残す
	recent := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		if isRecent(o.CreatedAt, cutoff) {
			recent = append(recent, o)
		}
	}

	// 訪問者 = 期間内注文のdistinct customer数。
	// customerが1件も紐づかないのに注文があるときは注文数で代用する
	// （注文があるのに訪問者0と出さないための仕様）。
	seen := map[int64]struct{}{}
	for _, o := range recent {
		if o.CustomerID > 0 {
			seen[o.CustomerID] = struct{}{}
		}
	}
	visitors := int64(len(seen))
	if visitors == 0 {
		visitors = int64(len(recent))
	}

	// ページビューは実測が無いので注文数と商品数からの推定
	pageViews := 3*int64(len(recent)) + 12*int64(len(products))

	// 新規 = 作成日時が期間内のcustomer（1人1回）。
	// リピート = customer作成が期間より前の、期間内「注文」の件数（注文単位）。
	// 非対称だが元のダッシュボードと同じ数え方を維持している。
	createdAtByCustomer := make(map[int64]time.Time, len(customers))
	var newCustomers int64
	for _, c := range customers {
		createdAtByCustomer[c.ID] = c.CreatedAt
		if isRecent(c.CreatedAt, cutoff) {
			newCustomers++
		}
	}

	var returning int64
	for _, o := range recent {
		created, ok := createdAtByCustomer[o.CustomerID]
		if !ok || created.IsZero() {
			continue
		}
		if created.Before(cutoff) {
			returning++
		}
	}

	return Report{
		RangeDays:          rangeDays,
		Visitors:           visitors,
		PageViews:          pageViews,
		AvgSessionSeconds:  int64(avgSessionBase + rng.Intn(avgSessionJitter+1)),
		BounceRatePct:      int64(bounceBase + rng.Intn(bounceJitter+1)),
		NewCustomers:       newCustomers,
		ReturningCustomers: returning,
		Trend:              buildTrend(recent, rangeDays, now, rng),
		TopPages:           buildTopPages(products, pageViews),
	}
}

func isRecent(createdAt time.Time, cutoff time.Time) bool {
	if createdAt.IsZero() {
		return false
	}
	return !createdAt.Before(cutoff)
}

// 1日1バケット、古い日付が先頭。長さは必ずrangeDays。
// バケットの値は「その日の注文数＋ジッター」で、ゼロ乱数なら注文数そのもの。
func buildTrend(recent []model.Order, rangeDays int, now time.Time, rng Rand) []TrendPoint {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	countByDay := make(map[string]int64, rangeDays)
	for _, o := range recent {
		t := o.CreatedAt.In(loc)
		countByDay[t.Format("2006-01-02")]++
	}

	trend := make([]TrendPoint, 0, rangeDays)
	for i := rangeDays - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		key := day.Format("2006-01-02")
		n := countByDay[key]

		trend = append(trend, TrendPoint{
			Date:      key,
			Orders:    n,
			Visitors:  n + int64(rng.Intn(trendVisitorsJitter+1)),
			PageViews: 3*n + int64(rng.Intn(trendPageViewsJitter+1)),
		})
	}
	return trend
}

// 固定の2ページ（トップ・一覧）＋先頭3商品。
// 値は総ページビューの割合推定で、整数へ切り捨て。
func buildTopPages(products []model.Product, pageViews int64) []PageStat {
	pages := []PageStat{
		{Path: "/", Views: pageViews * 40 / 100},
		{Path: "/products", Views: pageViews * 30 / 100},
	}

	shares := []int64{12, 8, 4}
	for i, p := range products {
		if i >= len(shares) {
			break
		}
		pages = append(pages, PageStat{
			Path:  fmt.Sprintf("/products/%d", p.ID),
			Views: pageViews * shares[i] / 100,
		})
	}
	return pages
}
