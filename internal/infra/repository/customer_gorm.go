package repository

import (
	"context"
	"errors"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type CustomerGormRepository struct {
	db *gorm.DB
}

// DI
func NewCustomerGormRepository(db *gorm.DB) *CustomerGormRepository {
	return &CustomerGormRepository{db: db}
}

// 名前・電話の部分一致検索＋ページングで一覧を返す。
func (r *CustomerGormRepository) List(ctx context.Context, q repo.CustomerListQuery) ([]model.Customer, int64, error) {
	var customers []model.Customer
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Customer{})

	if strings.TrimSpace(q.Q) != "" {
		like := "%" + strings.TrimSpace(q.Q) + "%"
		tx = tx.Where("name ILIKE ? OR phone ILIKE ?", like, like)
	}

	if err := tx.Count(&total).Error; err != nil {
		return []model.Customer{}, 0, err
	}

	offset := (q.Page - 1) * q.Limit
	err := tx.Order("created_at desc").Order("id desc").
		Offset(offset).Limit(q.Limit).
		Find(&customers).Error
	if err != nil {
		return []model.Customer{}, 0, err
	}

	return customers, total, nil
}

// 集計用。全件返す。
func (r *CustomerGormRepository) ListAll(ctx context.Context) ([]model.Customer, error) {
	var customers []model.Customer
	if err := r.db.WithContext(ctx).Order("id asc").Find(&customers).Error; err != nil {
		return []model.Customer{}, err
	}
	return customers, nil
}

// IDで1件取得
func (r *CustomerGormRepository) FindByID(ctx context.Context, id int64) (model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Customer{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Customer{}, err
	}
	return c, nil
}

// 電話番号で1件取得（チェックアウトのfind-or-create用）
func (r *CustomerGormRepository) FindByPhone(ctx context.Context, phone string) (model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).
		Where("phone = ?", phone).
		Order("id asc").
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Customer{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Customer{}, err
	}
	return c, nil
}

// 作成
func (r *CustomerGormRepository) Create(ctx context.Context, c model.Customer) (model.Customer, error) {
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return model.Customer{}, err
	}
	return c, nil
}

// 更新（idは不変、created_atも触らない）
func (r *CustomerGormRepository) Update(ctx context.Context, c model.Customer) error {
	res := r.db.WithContext(ctx).Model(&model.Customer{}).Where("id = ?", c.ID).Updates(map[string]interface{}{
		"name":    c.Name,
		"email":   c.Email,
		"phone":   c.Phone,
		"address": c.Address,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 削除。紐づく注文もまとめて消す（FKのcascadeに合わせてアプリ側でも消す）。
func (r *CustomerGormRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", id).Delete(&model.Order{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&model.Customer{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}
