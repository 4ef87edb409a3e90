package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin/analyticsのHTTP
type AdminAnalyticsHandler struct {
	uc *usecase.AnalyticsUsecase
}

func NewAdminAnalyticsHandler(uc *usecase.AnalyticsUsecase) *AdminAnalyticsHandler {
	return &AdminAnalyticsHandler{uc: uc}
}

func (h *AdminAnalyticsHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	admin := e.Group("/admin")
	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.StaffRoleGuard())

	admin.GET("/analytics", h.report)
}

func (h *AdminAnalyticsHandler) report(c echo.Context) error {
	// range（default 30日）
	rangeDays := 30
	if v := c.QueryParam("range"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid range"})
		}
		rangeDays = d
	}

	out, err := h.uc.GetReport(c.Request().Context(), rangeDays)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
