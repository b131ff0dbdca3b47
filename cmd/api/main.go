package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/lib/pq"

	"github.com/koshishthapa517-crypto/shop-nexus/internal/auth"
	"github.com/koshishthapa517-crypto/shop-nexus/internal/config"
	"github.com/koshishthapa517-crypto/shop-nexus/internal/gateway"
	"github.com/koshishthapa517-crypto/shop-nexus/internal/handlers"
	"github.com/koshishthapa517-crypto/shop-nexus/internal/httpx"
	"github.com/koshishthapa517-crypto/shop-nexus/internal/messaging"
	"github.com/koshishthapa517-crypto/shop-nexus/internal/repository"
	"github.com/koshishthapa517-crypto/shop-nexus/internal/service"
	"github.com/koshishthapa517-crypto/shop-nexus/internal/storage"
	"github.com/koshishthapa517-crypto/shop-nexus/internal/validation"
)

func main() {
	log.Println("ShopNexus API starting...")

	cfg := config.Load()

	db, err := initDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}
	defer db.Close()

	// RabbitMQ is optional: without a broker the API runs, it just stops
	// emitting notification events.
	var publisher service.EventPublisher
	rabbitClient := messaging.NewRabbitMQClient(cfg.RabbitMQ)
	if err := rabbitClient.Connect(); err != nil {
		log.Printf("RabbitMQ unavailable, events disabled: %v", err)
	} else {
		defer rabbitClient.Close()
		publisher = messaging.NewPublisher(rabbitClient)
	}

	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	paymentGateway, stripeGateway := initPaymentGateway(cfg)

	catalogService := service.NewCatalogService(productRepo)
	cartService := service.NewCartService(cartRepo, productRepo)
	orderService := service.NewOrderService(orderRepo, publisher)
	paymentService := service.NewPaymentService(orderRepo, paymentGateway, publisher, cfg.PaymentCurrency)

	imageStore := initImageStore(cfg)

	validate := validation.New()
	verifier := auth.NewVerifier(cfg.JWTSecret)

	productHandler := handlers.NewProductHandler(catalogService, validate)
	cartHandler := handlers.NewCartHandler(cartService, validate)
	orderHandler := handlers.NewOrderHandler(orderService, validate)
	paymentHandler := handlers.NewPaymentHandler(paymentService, stripeGateway, validate)
	uploadHandler := handlers.NewUploadHandler(imageStore)

	app := setupFiberApp()
	setupRoutes(app, verifier, productHandler, cartHandler, orderHandler, paymentHandler, uploadHandler)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("ShopNexus API closing...")
		if err := app.Shutdown(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("ShopNexus API listening on :%s (payment mode: %s)", cfg.Port, cfg.PaymentMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server start error: %v", err)
	}
}

func initDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	log.Printf("Database connected: %s", cfg.Name)
	return db, nil
}

func initPaymentGateway(cfg config.Config) (gateway.PaymentGateway, *gateway.StripeGateway) {
	if cfg.PaymentMode == config.PaymentModeMock {
		log.Println("Payment gateway: mock")
		return gateway.NewMockPaymentGateway(), nil
	}

	if cfg.StripeSecretKey == "" {
		log.Fatal("PAYMENT_MODE=stripe requires STRIPE_SECRET_KEY")
	}
	log.Println("Payment gateway: stripe")
	stripeGateway := gateway.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	return stripeGateway, stripeGateway
}

func initImageStore(cfg config.Config) *storage.ImageStore {
	if cfg.GCSBucket == "" {
		log.Println("Image storage: disabled (no GCS_BUCKET)")
		return nil
	}
	store, err := storage.NewImageStore(context.Background(), cfg.GCSBucket)
	if err != nil {
		log.Fatalf("Image storage init error: %v", err)
	}
	return store
}

func setupFiberApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "ShopNexus API v1.0",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} - ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Request-ID",
	}))

	return app
}

func setupRoutes(
	app *fiber.App,
	verifier *auth.Verifier,
	productHandler *handlers.ProductHandler,
	cartHandler *handlers.CartHandler,
	orderHandler *handlers.OrderHandler,
	paymentHandler *handlers.PaymentHandler,
	uploadHandler *handlers.UploadHandler,
) {
	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Provider webhook authenticates by signature, not session.
	api.Post("/payment/webhook", paymentHandler.Webhook)

	// Public catalog reads.
	products := api.Group("/products")
	products.Get("/", productHandler.ListProducts)
	products.Get("/:id", productHandler.GetProduct)
	products.Get("/:id/stock", productHandler.CheckStock)

	// Admin catalog mutations.
	products.Post("/", verifier.RequireAuth(), auth.RequireAdmin(), productHandler.CreateProduct)
	products.Put("/:id", verifier.RequireAuth(), auth.RequireAdmin(), productHandler.UpdateProduct)
	products.Delete("/:id", verifier.RequireAuth(), auth.RequireAdmin(), productHandler.DeleteProduct)

	api.Post("/upload", verifier.RequireAuth(), auth.RequireAdmin(), uploadHandler.UploadImage)

	cart := api.Group("/cart", verifier.RequireAuth())
	cart.Get("/", cartHandler.GetCart)
	cart.Post("/", cartHandler.AddToCart)
	cart.Post("/merge", cartHandler.MergeGuestCart)
	cart.Put("/:id", cartHandler.UpdateCartItem)
	cart.Delete("/:id", cartHandler.RemoveFromCart)

	orders := api.Group("/orders", verifier.RequireAuth())
	orders.Get("/", orderHandler.ListOrders)
	orders.Post("/", orderHandler.CreateOrder)
	orders.Get("/:id", orderHandler.GetOrderByID)
	orders.Patch("/:id", auth.RequireAdmin(), orderHandler.UpdateOrderStatus)

	payment := api.Group("/payment", verifier.RequireAuth())
	payment.Post("/create-intent", paymentHandler.CreatePaymentIntent)
	payment.Post("/confirm", paymentHandler.ConfirmPayment)

	app.Use("*", func(c *fiber.Ctx) error {
		return httpx.NotFoundResponse(c, "Route not found")
	})
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	log.Printf("Error: %v", err)

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
