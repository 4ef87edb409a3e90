package usecase

import (
	"context"
	"net/http"
	"time"

	"app/internal/analytics"
	repo "app/internal/repository"
)

// 現在時刻の注入口（テストで固定する）
type Clock interface {
	Now() time.Time
}

// レポートキャッシュの約束。実装はredis。
type ReportCache interface {
	Get(ctx context.Context, rangeDays int) (analytics.Report, error)
	Set(ctx context.Context, rangeDays int, report analytics.Report) error
}

// AnalyticsUsecase はダッシュボードの集計レポートを返す。
// 3コレクションをまとめて読み込み、純粋関数analytics.Computeに渡すだけ。
type AnalyticsUsecase struct {
	orderRepo    repo.OrderRepository
	customerRepo repo.CustomerRepository
	productRepo  repo.ProductRepository
	cache        ReportCache
	clock        Clock
	rng          analytics.Rand
}

func NewAnalyticsUsecase(
	orderRepo repo.OrderRepository,
	customerRepo repo.CustomerRepository,
	productRepo repo.ProductRepository,
	cache ReportCache,
	clock Clock,
	rng analytics.Rand,
) *AnalyticsUsecase {
	return &AnalyticsUsecase{
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		cache:        cache,
		clock:        clock,
		rng:          rng,
	}
}

// GetReport は直近rangeDays日の集計を返す。期間は7/30/90のみ。
func (u *AnalyticsUsecase) GetReport(ctx context.Context, rangeDays int) (analytics.Report, error) {
	switch rangeDays {
	case 7, 30, 90:
	default:
		return analytics.Report{}, NewHTTPError(http.StatusBadRequest, "invalid range")
	}

	//キャッシュヒットならそれを返す。失敗は計算へフォールバック。
	if u.cache != nil {
		if report, err := u.cache.Get(ctx, rangeDays); err == nil {
			return report, nil
		}
	}

	orders, err := u.orderRepo.ListAll(ctx)
	if err != nil {
		return analytics.Report{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	customers, err := u.customerRepo.ListAll(ctx)
	if err != nil {
		return analytics.Report{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	products, err := u.productRepo.ListAll(ctx)
	if err != nil {
		return analytics.Report{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	report := analytics.Compute(orders, customers, products, rangeDays, u.clock.Now(), u.rng)

	//書き込みはベストエフォート
	if u.cache != nil {
		_ = u.cache.Set(ctx, rangeDays, report)
	}

	return report, nil
}
