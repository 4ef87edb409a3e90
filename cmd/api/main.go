package main

import (
	"context"
	"log"
	"time"

	"app/internal/analytics"
	"app/internal/cart"
	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/cache"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/server"
	"app/internal/usecase"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
)

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func (i *jwtIssuer) Issue(userID int64, role model.Role, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func main() {
	// .envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}
	if err := gormDB.AutoMigrate(
		&model.Customer{},
		&model.Product{},
		&model.Order{},
		&model.User{},
	); err != nil {
		log.Fatal(err)
	}

	//Repository（GORM実装）生成
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	customerRepo := infraRepo.NewCustomerGormRepository(gormDB)
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	clock := &realClock{}
	carts := cart.NewStore()
	hasher := usecase.NewBcryptPasswordHasher(12)
	verifier := usecase.NewBcryptPasswordVerifier()
	issuer := &jwtIssuer{
		secret:    []byte(cfg.JWTSecret),
		accessTTL: 12 * time.Hour,
	}
	rng := analytics.NewRand(time.Now().UnixNano())

	//レポートキャッシュ（REDIS_ADDRが空ならキャッシュなしで動く）
	var reportCache usecase.ReportCache
	if cfg.RedisAddr != "" {
		client := cache.NewRedisClient(cfg.RedisAddr, "", 0)
		reportCache = cache.NewReportCacheRedis(client, 60*time.Second)
	}

	//Usecase生成
	productUC := usecase.NewProductUsecase(productRepo)
	cartUC := usecase.NewCartUsecase(carts, productRepo)
	checkoutUC := usecase.NewCheckoutUsecase(txManager, carts)
	authUC := usecase.NewAuthUsecase(userRepo, verifier, hasher, issuer, clock)
	adminOrderUC := usecase.NewAdminOrderUsecase(orderRepo)
	adminCustomerUC := usecase.NewAdminCustomerUsecase(customerRepo, orderRepo)
	analyticsUC := usecase.NewAnalyticsUsecase(orderRepo, customerRepo, productRepo, reportCache, clock, rng)

	//初回起動時に管理者を用意する
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := authUC.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatal(err)
		}
	}

	//Server起動
	e := server.New(cfg, server.Handlers{
		Product:        handler.NewProductHandler(productUC),
		Cart:           handler.NewCartHandler(cartUC),
		Order:          handler.NewOrderHandler(checkoutUC),
		Auth:           handler.NewAuthHandler(authUC),
		AdminProduct:   handler.NewAdminProductHandler(productUC),
		AdminOrder:     handler.NewAdminOrderHandler(adminOrderUC),
		AdminCustomer:  handler.NewAdminCustomerHandler(adminCustomerUC),
		AdminAnalytics: handler.NewAdminAnalyticsHandler(analyticsUC),
	})

	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
