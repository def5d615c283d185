package main

import (
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jacquesmit/myriad-green/config"
	"github.com/jacquesmit/myriad-green/controllers"
	"github.com/jacquesmit/myriad-green/database"
	"github.com/jacquesmit/myriad-green/events"
	"github.com/jacquesmit/myriad-green/logger"
	"github.com/jacquesmit/myriad-green/middleware"
	"github.com/jacquesmit/myriad-green/models"
	"github.com/jacquesmit/myriad-green/payments"
	"github.com/jacquesmit/myriad-green/repository"
	"github.com/jacquesmit/myriad-green/routes"
	"github.com/jacquesmit/myriad-green/sender"
	"github.com/jacquesmit/myriad-green/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	zlog := logger.Initialize(cfg.Environment)
	defer zlog.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := db.AutoMigrate(
		&models.Customer{},
		&models.Payment{},
		&models.Order{},
		&models.Booking{},
		&models.LifecycleEvent{},
	); err != nil {
		zlog.Fatal("failed to migrate models", zap.Error(err))
	}

	var cache *redis.Client
	if cfg.RedisURL != "" {
		cache, err = database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			zlog.Warn("redis unavailable, weather cache disabled", zap.Error(err))
			cache = nil
		}
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.KafkaBrokers != "" {
		producer := events.NewOrderEventProducer(strings.Split(cfg.KafkaBrokers, ","), cfg.OrderEventTopic, zlog)
		defer producer.Close()
		publisher = producer
	}

	provider := payments.NewStripeProvider(cfg.StripeSecretKey, cfg.StripeWebhookKey, cfg.Currency)

	var primary sender.EmailSender
	if s, err := sender.NewEmailJSSender(cfg.EmailJSServiceID, cfg.EmailJSUserID, cfg.EmailJSOrigin); err != nil {
		zlog.Warn("EmailJS sender disabled", zap.Error(err))
	} else {
		primary = s
	}
	var fallback sender.EmailSender
	if s, err := sender.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.CompanyEmail); err != nil {
		zlog.Warn("SMTP fallback sender disabled", zap.Error(err))
	} else {
		fallback = s
	}
	notifier := services.NewNotifier(primary, fallback, services.NotifierConfig{
		CompanyName:          cfg.CompanyName,
		CompanyEmail:         cfg.CompanyEmail,
		CompanyPhone:         cfg.CompanyPhone,
		Currency:             cfg.Currency,
		OrderNotifyEmail:     cfg.OrderNotifyEmail,
		TemplateOrder:        cfg.EmailJSTemplateOrder,
		TemplateOrderAdmin:   cfg.EmailJSTemplateOrderAdmin,
		TemplateBooking:      cfg.EmailJSTemplateBooking,
		TemplateBookingAdmin: cfg.EmailJSTemplateBookingAdmin,
	}, zlog)

	paymentRepo := repository.NewGormPaymentRepository(db)
	orderRepo := repository.NewGormOrderRepository(db)
	customerRepo := repository.NewGormCustomerRepository(db)
	bookingRepo := repository.NewGormBookingRepository(db)
	eventRepo := repository.NewGormEventRepository(db)

	checkoutSvc := services.NewCheckoutService(
		provider, paymentRepo, orderRepo, customerRepo, eventRepo,
		publisher, notifier, cfg.Currency, zlog,
	)
	webhookSvc := services.NewWebhookService(
		provider, paymentRepo, orderRepo, bookingRepo, eventRepo,
		publisher, cfg.StripeWebhookKey != "", cfg.AllowUnverifiedWebhooks, zlog,
	)
	reconcileSvc := services.NewReconcileService(provider, orderRepo, zlog)
	weatherSvc := services.NewWeatherService(cache, zlog)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(zlog))

	routes.RegisterRoutes(r,
		&controllers.CheckoutController{Checkout: checkoutSvc, BaseURL: cfg.BaseURL, Logger: zlog},
		&controllers.WebhookController{Webhook: webhookSvc, Logger: zlog},
		&controllers.OrderController{Orders: orderRepo, Provider: provider, Reconciler: reconcileSvc, Logger: zlog},
		&controllers.WeatherController{Weather: weatherSvc, Logger: zlog},
	)

	zlog.Info("server starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		zlog.Fatal("server failed", zap.Error(err))
	}
}
