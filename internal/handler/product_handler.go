package handler

import (
	"net/http"
	"strconv"

	"app/internal/domain/model"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// 公開APIに出す商品。作成日時やis_activeなど管理用の属性は含めない。
// variantの在庫数はカート追加前のクランプ判定にフロントが使うので残す。
type PublicVariant struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Stock int64  `json:"stock"`
}

type PublicProduct struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       int64           `json:"price"`
	Images      []string        `json:"images"`
	Variants    []PublicVariant `json:"variants"`
	TotalStock  int64           `json:"total_stock"`
}

type PublicProductList struct {
	Items []PublicProduct `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func toPublicProduct(p model.Product) PublicProduct {
	variants := make([]PublicVariant, 0, len(p.Variants))
	for _, v := range p.Variants {
		variants = append(variants, PublicVariant{ID: v.ID, Name: v.Name, Stock: v.Stock})
	}
	return PublicProduct{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Images:      []string(p.Images),
		Variants:    variants,
		TotalStock:  p.TotalStock,
	}
}

// /products の公開API
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// 公開商品のルートを登録
func (h *ProductHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/products", h.list)
	e.GET("/products/:id", h.detail)
}

// クエリを読んでintへ。空ならdefのまま。
func intQuery(c echo.Context, key string, def int) (int, bool) {
	v := c.QueryParam(key)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func int64Query(c echo.Context, key string) (*int64, bool) {
	v := c.QueryParam(key)
	if v == "" {
		return nil, true
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, false
	}
	return &n, true
}

func (h *ProductHandler) list(c echo.Context) error {
	page, ok := intQuery(c, "page", 1)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
	}
	limit, ok := intQuery(c, "limit", 20)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}
	minPrice, ok := int64Query(c, "min_price")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid min_price"})
	}
	maxPrice, ok := int64Query(c, "max_price")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid max_price"})
	}

	out, err := h.uc.ListPublicProducts(c.Request().Context(), usecase.ListProductsInput{
		Page:     page,
		Limit:    limit,
		Q:        c.QueryParam("q"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Sort:     c.QueryParam("sort"),
	})
	if err != nil {
		return writeError(c, err)
	}

	items := make([]PublicProduct, 0, len(out.Items))
	for _, p := range out.Items {
		items = append(items, toPublicProduct(p))
	}

	return c.JSON(http.StatusOK, PublicProductList{
		Items: items,
		Total: out.Total,
		Page:  out.Page,
		Limit: out.Limit,
	})
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	p, err := h.uc.GetProductDetail(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, toPublicProduct(p))
}
