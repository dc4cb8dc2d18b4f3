package main

import (
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/cyclebazaar/cycle-bazaar-go/internal/auth"
	cartapi "github.com/cyclebazaar/cycle-bazaar-go/internal/cart/api"
	cartservice "github.com/cyclebazaar/cycle-bazaar-go/internal/cart/service"
	couponapi "github.com/cyclebazaar/cycle-bazaar-go/internal/coupon/api"
	couponrepo "github.com/cyclebazaar/cycle-bazaar-go/internal/coupon/repository"
	couponservice "github.com/cyclebazaar/cycle-bazaar-go/internal/coupon/service"
	orderapi "github.com/cyclebazaar/cycle-bazaar-go/internal/order/api"
	orderrepo "github.com/cyclebazaar/cycle-bazaar-go/internal/order/repository"
	orderservice "github.com/cyclebazaar/cycle-bazaar-go/internal/order/service"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/platform/config"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/platform/database"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/platform/logger"
	productapi "github.com/cyclebazaar/cycle-bazaar-go/internal/product/api"
	productrepo "github.com/cyclebazaar/cycle-bazaar-go/internal/product/repository"
	productservice "github.com/cyclebazaar/cycle-bazaar-go/internal/product/service"
	returnsapi "github.com/cyclebazaar/cycle-bazaar-go/internal/returns/api"
	returnsrepo "github.com/cyclebazaar/cycle-bazaar-go/internal/returns/repository"
	returnsservice "github.com/cyclebazaar/cycle-bazaar-go/internal/returns/service"
	userapi "github.com/cyclebazaar/cycle-bazaar-go/internal/user/api"
	userrepo "github.com/cyclebazaar/cycle-bazaar-go/internal/user/repository"
	userservice "github.com/cyclebazaar/cycle-bazaar-go/internal/user/service"
)

func main() {
	// .env opsional, env asli menang
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, relying on environment variables")
	}

	dbCfg := config.LoadDBConfig()
	serverCfg := config.LoadServerConfig("8080")
	authCfg := config.LoadAuthConfig()
	paymentCfg := config.LoadPaymentConfig()
	mailCfg := config.LoadMailConfig()
	returnWindowDays := config.GetEnvAsInt("RETURN_WINDOW_DAYS", 7)

	logger.Info("Starting Cycle Bazaar API...")

	if authCfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET_KEY not set, tokens will not survive restarts securely")
	}

	db, err := database.Connect(dbCfg.DSN)
	if err != nil {
		logger.Error("Failed to connect to database", err)
		return
	}
	defer db.Close()

	tokens := auth.NewTokenManager(authCfg.JWTSecret)

	// Repositories
	userRepository := userrepo.NewPostgresUserRepository(db)
	productRepository := productrepo.NewPostgresProductRepository(db)
	couponRepository := couponrepo.NewPostgresCouponRepository(db)
	orderRepository := orderrepo.NewPostgresOrderRepository(db)
	returnRepository := returnsrepo.NewPostgresReturnRepository(db)

	// Services
	userService := userservice.NewUserService(userRepository, tokens)
	productService := productservice.NewProductService(productRepository)
	couponService := couponservice.NewCouponService(couponRepository)
	paymentClient := orderservice.NewHTTPPaymentClient(paymentCfg.GatewayURL, paymentCfg.APIKey)
	mailer := orderservice.NewSMTPMailer(mailCfg)
	orderService := orderservice.NewOrderService(orderRepository, productService, couponService,
		paymentClient, mailer, userService, returnWindowDays)
	returnService := returnsservice.NewReturnService(returnRepository, orderRepository)
	cartService := cartservice.NewCartService(productService, couponService)

	couponService.StartExpirySweep()

	// Handlers
	userHandler := userapi.NewUserHandler(userService)
	productHandler := productapi.NewProductHandler(productService)
	couponHandler := couponapi.NewCouponHandler(couponService)
	orderHandler := orderapi.NewOrderHandler(orderService)
	returnHandler := returnsapi.NewReturnHandler(returnService)
	cartHandler := cartapi.NewCartHandler(cartService)

	router := gin.Default()
	apiV1 := router.Group("/api/v1")
	authed := apiV1.Group("")
	authed.Use(auth.RequireAuth(tokens))
	admin := apiV1.Group("")
	admin.Use(auth.RequireAuth(tokens), auth.RequireAdmin())

	userHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1, admin)
	couponHandler.RegisterRoutes(authed, admin)
	orderHandler.RegisterRoutes(authed, admin)
	returnHandler.RegisterRoutes(authed, admin)
	cartHandler.RegisterRoutes(authed)

	logger.Info("Cycle Bazaar API running on port " + serverCfg.Port)
	if errSrv := router.Run(serverCfg.Port); errSrv != nil {
		logger.Error("Failed to run API server", errSrv)
	}
}
