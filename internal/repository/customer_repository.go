package repository

import (
	"context"

	"app/internal/domain/model"
)

type CustomerListQuery struct {
	Page  int
	Limit int
	Q     string
}

// 注文者の永続化を約束。削除は注文もまとめて消す（cascade）。
type CustomerRepository interface {
	List(ctx context.Context, q CustomerListQuery) ([]model.Customer, int64, error)
	// ダッシュボード集計用に全件を返す
	ListAll(ctx context.Context) ([]model.Customer, error)
	FindByID(ctx context.Context, id int64) (model.Customer, error)
	// チェックアウト時のfind-or-create用
	FindByPhone(ctx context.Context, phone string) (model.Customer, error)

	Create(ctx context.Context, c model.Customer) (model.Customer, error)
	Update(ctx context.Context, c model.Customer) error
	Delete(ctx context.Context, id int64) error
}
