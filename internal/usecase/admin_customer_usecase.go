package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type AdminCustomerUsecase struct {
	customerRepo repo.CustomerRepository
	orderRepo    repo.OrderRepository
}

func NewAdminCustomerUsecase(customerRepo repo.CustomerRepository, orderRepo repo.OrderRepository) *AdminCustomerUsecase {
	return &AdminCustomerUsecase{
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
	}
}

type ListCustomersInput struct {
	Page  int
	Limit int
	Q     string
}

type CustomerListOutput struct {
	Items []model.Customer `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

// 顧客詳細は注文履歴つきで返す
type CustomerDetailOutput struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone"`
	Address   string        `json:"address"`
	CreatedAt time.Time     `json:"created_at"`
	Orders    []OrderOutput `json:"orders"`
}

func (u *AdminCustomerUsecase) List(ctx context.Context, in ListCustomersInput) (CustomerListOutput, error) {
	if in.Page < 1 {
		return CustomerListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return CustomerListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return CustomerListOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}

	items, total, err := u.customerRepo.List(ctx, repo.CustomerListQuery{
		Page:  in.Page,
		Limit: in.Limit,
		Q:     strings.TrimSpace(in.Q),
	})
	if err != nil {
		return CustomerListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return CustomerListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *AdminCustomerUsecase) Detail(ctx context.Context, customerID int64) (CustomerDetailOutput, error) {
	if customerID <= 0 {
		return CustomerDetailOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	c, err := u.customerRepo.FindByID(ctx, customerID)
	if errors.Is(err, repo.ErrNotFound) {
		return CustomerDetailOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CustomerDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//履歴はまず直近50件固定で取る
	orders, _, err := u.orderRepo.ListByCustomerID(ctx, customerID, 1, 50)
	if err != nil {
		return CustomerDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		outs = append(outs, toOrderOutput(o))
	}

	return CustomerDetailOutput{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
		Orders:    outs,
	}, nil
}

type AdminUpdateCustomerInput struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

func (u *AdminCustomerUsecase) Update(ctx context.Context, customerID int64, in AdminUpdateCustomerInput) error {
	if customerID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	if strings.TrimSpace(in.Phone) == "" {
		return NewHTTPError(http.StatusBadRequest, "phone required")
	}

	err := u.customerRepo.Update(ctx, model.Customer{
		ID:      customerID,
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Phone:   strings.TrimSpace(in.Phone),
		Address: strings.TrimSpace(in.Address),
	})
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 削除。注文もまとめて消える（cascade）。
func (u *AdminCustomerUsecase) Delete(ctx context.Context, customerID int64) error {
	if customerID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	err := u.customerRepo.Delete(ctx, customerID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
