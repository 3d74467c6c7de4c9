package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-jewelry-pos/internal/handler"
	"go-jewelry-pos/internal/middleware"
	"go-jewelry-pos/internal/model"
	"go-jewelry-pos/internal/repository"
	"go-jewelry-pos/internal/service"
	"go-jewelry-pos/internal/ws"
	"go-jewelry-pos/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	db.AutoMigrate(
		&model.Product{},
		&model.Variant{},
		&model.SetComponent{},
		&model.StockMovement{},
		&model.ProductImage{},
		&model.User{},
	)

	// 3. Seed default admin user
	seedAdmin(db)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	componentRepo := repository.NewComponentRepo(db)
	variantRepo := repository.NewVariantRepo(db)
	movementRepo := repository.NewMovementRepo(db)
	imageRepo := repository.NewImageRepo(db)
	userRepo := repository.NewUserRepo(db)

	stockService := service.NewStockService(productRepo, componentRepo, db)
	productService := service.NewProductService(productRepo, wsHub)
	variantService := service.NewVariantService(productRepo, variantRepo, db)
	salesService := service.NewSalesService(productRepo, componentRepo, movementRepo, db, wsHub)
	catalogService := service.NewCatalogService(productRepo, variantRepo, imageRepo, stockService)
	reportService := service.NewReportService(movementRepo)
	authService := service.NewAuthService(userRepo)

	productHandler := handler.NewProductHandler(productService, stockService)
	compositionHandler := handler.NewCompositionHandler(stockService)
	variantHandler := handler.NewVariantHandler(variantService)
	salesHandler := handler.NewSalesHandler(salesService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	reportHandler := handler.NewReportHandler(reportService)
	authHandler := handler.NewAuthHandler(authService)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Jewelry Back Office v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)

	// Public storefront catalog
	store := api.Group("/store")
	store.Get("/products", catalogHandler.GetProducts)
	store.Get("/products/:id", catalogHandler.GetProductDetail)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Reports
	protected.Get("/reports/stats", reportHandler.GetInventoryStats)
	protected.Get("/reports/stock-flow", reportHandler.GetDailyFlow)

	// Product Routes
	protected.Get("/products", productHandler.GetProducts)
	protected.Get("/products/low-stock", productHandler.GetLowStockProducts)
	protected.Get("/products/:id", productHandler.GetProduct)
	protected.Post("/products", productHandler.CreateProduct)
	protected.Put("/products/:id", productHandler.UpdateProduct)

	// Composition Routes (sets)
	protected.Get("/products/:id/components", compositionHandler.GetComponents)
	protected.Post("/products/:id/components", compositionHandler.AddComponent)
	protected.Delete("/components/:id", compositionHandler.RemoveComponent)
	protected.Get("/products/:id/availability", compositionHandler.GetAvailability)

	// Variant Routes
	protected.Get("/products/:id/variants", variantHandler.GetVariants)
	protected.Post("/products/:id/variants", variantHandler.CreateVariant)
	protected.Put("/variants/:id", variantHandler.UpdateVariant)
	protected.Delete("/variants/:id", variantHandler.RemoveVariant)

	// Sales / Returns / Adjustments
	protected.Post("/sales", salesHandler.ApplySale)
	protected.Post("/returns", salesHandler.ApplyReturn)
	protected.Post("/products/:id/adjust-stock", middleware.RequireRole(model.RoleAdmin), salesHandler.AdjustStock)
	protected.Get("/products/:id/movements", salesHandler.GetMovements)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// seedAdmin creates the default admin user if it doesn't exist
func seedAdmin(db *gorm.DB) {
	userRepo := repository.NewUserRepo(db)

	if _, err := userRepo.FindByEmail("admin@example.com"); err == nil {
		return
	}

	admin := &model.User{
		Email:    "admin@example.com",
		FullName: "Master Administrator",
		Role:     model.RoleAdmin,
		IsActive: true,
	}
	if err := admin.SetPassword("admin123"); err != nil {
		log.Printf("Warning: Failed to hash admin password: %v", err)
		return
	}
	if err := userRepo.Create(admin); err != nil {
		log.Printf("Warning: Failed to create admin user: %v", err)
	} else {
		log.Println("Admin user created: admin@example.com / admin123")
	}
}
