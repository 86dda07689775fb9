package router

import (
	"net/http"
	"time"

	adminsvc "aurum-backend/internal/application/admin"
	authsvc "aurum-backend/internal/application/auth"
	chatsvc "aurum-backend/internal/application/chat"
	emailsvc "aurum-backend/internal/application/emails"
	holdsvc "aurum-backend/internal/application/holdings"
	investsvc "aurum-backend/internal/application/investments"
	notifsvc "aurum-backend/internal/application/notifications"
	pricesvc "aurum-backend/internal/application/prices"
	settlesvc "aurum-backend/internal/application/settlement"
	tradesvc "aurum-backend/internal/application/trading"
	uploadsvc "aurum-backend/internal/application/uploads"
	usersvc "aurum-backend/internal/application/user"
	walletsvc "aurum-backend/internal/application/wallet"
	"aurum-backend/internal/config"
	"aurum-backend/internal/infrastructure/database"
	adminhandler "aurum-backend/internal/interfaces/handlers/admin"
	authhandler "aurum-backend/internal/interfaces/handlers/auth"
	chathandler "aurum-backend/internal/interfaces/handlers/chat"
	healthhandler "aurum-backend/internal/interfaces/handlers/health"
	holdhandler "aurum-backend/internal/interfaces/handlers/holdings"
	investhandler "aurum-backend/internal/interfaces/handlers/investments"
	notifhandler "aurum-backend/internal/interfaces/handlers/notifications"
	payhandler "aurum-backend/internal/interfaces/handlers/payments"
	pricehandler "aurum-backend/internal/interfaces/handlers/prices"
	settlehandler "aurum-backend/internal/interfaces/handlers/settlement"
	tradehandler "aurum-backend/internal/interfaces/handlers/trading"
	uploadhandler "aurum-backend/internal/interfaces/handlers/uploads"
	userhandler "aurum-backend/internal/interfaces/handlers/users"
	wallethandler "aurum-backend/internal/interfaces/handlers/wallet"
	"aurum-backend/internal/middleware"
	"aurum-backend/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	// Webhook mounts before the session middleware so nothing touches the raw body
	stripeWebhook := &payhandler.WebhookHandler{WebhookSecret: cfg.StripeWebhookSecret}
	app.Post("/api/v1/stripe/webhook", func(c *fiber.Ctx) error {
		return stripeWebhook.HandleWebhook(c)
	})

	sessionHandler, redisClient, err := middleware.Session(middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	})
	if err != nil {
		return nil, nil, nil, err
	}
	rdb := redisClient
	app.Use(sessionHandler)
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.ResponseFormatter())
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	app.Use(func(c *fiber.Ctx) error {
		user := c.Locals("user")
		if user == nil {
			c.Locals("user", nil)
		}
		return c.Next()
	})

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		DB:             nil,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/", hh.Dashboard)
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var errDB error
		db, errDB = database.Open(cfg.DatabaseURL)
		if errDB != nil {
			return nil, nil, nil, errDB
		}
		hh.DB = &gormDBPinger{db: db}
	}

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}

	var userFinder authsvc.UserFinder
	if db != nil {
		userFinder = &authsvc.GormUserFinder{DB: db}
	}
	ah := &authhandler.Handlers{
		UserFinder: userFinder,
		Rdb:        rdb,
		Config:     sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)

	// Prices are public and DB-free: scrape + Redis cache only
	priceService := &pricesvc.Service{
		Fetcher: &pricesvc.HTTPFetcher{BaseURL: cfg.GoldPriceSourceURL},
		Rdb:     rdb,
	}
	ph := &pricehandler.Handlers{Service: priceService}
	pg := app.Group("/api/v1/prices")
	pg.Get("/regional", ph.Regional)
	pg.Get("/buying", ph.Buying)

	if db != nil {
		stripeWebhook.DB = db
	}

	if db != nil && rdb != nil {
		notifService := &notifsvc.Service{DB: db}
		chatService := &chatsvc.Service{DB: db}
		stripeWebhook.Notifications = notifService

		var emailSender emailsvc.Sender
		if cfg.SendinblueAPIKey != "" {
			emailSender = &emailsvc.BrevoClient{APIKey: cfg.SendinblueAPIKey, MailFrom: cfg.MailFrom}
		}

		// Users — register is public, profile routes need a session
		us := &usersvc.Service{DB: db, Rdb: rdb, EmailSender: emailSender}
		uh := &userhandler.Handlers{Service: us, Config: sessionCfg}
		app.Post("/api/v1/users/register", uh.Register)
		ug := app.Group("/api/v1/users", middleware.RequireAuth())
		ug.Get("/me", uh.ViewProfile)
		ug.Put("/me", uh.UpdateProfile)

		// Wallet
		ws := &walletsvc.Service{DB: db}
		wh := &wallethandler.Handlers{
			Service:       ws,
			StripeCreator: &wallethandler.RealStripeCreator{SecretKey: cfg.StripeSecretKey},
		}
		wg := app.Group("/api/v1/wallet", middleware.RequireAuth())
		wg.Get("/", wh.Balance)
		wg.Get("/transactions", wh.History)
		wg.Post("/top-up", middleware.AuthorizePermission(constants.TopupWallet), wh.TopUp)

		// Trading — buys and sells priced off the scraped buying price
		ts := &tradesvc.Service{DB: db}
		th := &tradehandler.Handlers{
			Service: ts,
			Quoter:  &tradehandler.LivePriceQuoter{Prices: priceService},
		}
		tg := app.Group("/api/v1/trading", middleware.RequireAuth())
		tg.Post("/buy", middleware.AuthorizePermission(constants.BuyGold), th.BuyGold)
		tg.Post("/sell", middleware.AuthorizePermission(constants.SellGold), th.SellGold)

		// Holdings
		hs := &holdsvc.Service{DB: db}
		holdh := &holdhandler.Handlers{Service: hs}
		hg := app.Group("/api/v1/holdings", middleware.RequireAuth())
		hg.Get("/", holdh.List)
		hg.Get("/:id", holdh.View)

		// Investments
		ivs := &investsvc.Service{DB: db}
		ivh := &investhandler.Handlers{Service: ivs}
		ivg := app.Group("/api/v1/investments", middleware.RequireAuth())
		ivg.Get("/plans", ivh.ListPlans)
		ivg.Post("/plans", middleware.AuthorizePermission(constants.ManagePlans), ivh.CreatePlan)
		ivg.Delete("/plans/:id", middleware.AuthorizePermission(constants.ManagePlans), ivh.RetirePlan)
		ivg.Get("/", ivh.List)
		ivg.Post("/", middleware.AuthorizePermission(constants.Invest), ivh.Subscribe)

		// Notifications
		nh := &notifhandler.Handlers{Service: notifService}
		ng := app.Group("/api/v1/notifications", middleware.RequireAuth())
		ng.Get("/", nh.List)
		ng.Get("/unread-count", nh.UnreadCount)
		ng.Patch("/read-all", nh.MarkAllRead)
		ng.Patch("/:id/read", nh.MarkRead)

		// Support chat
		ch := &chathandler.Handlers{Service: chatService}
		cg := app.Group("/api/v1/chat", middleware.RequireAuth())
		cg.Post("/conversations", ch.Open)
		cg.Get("/conversations", ch.List)
		cg.Get("/conversations/:id/messages", ch.Messages)
		cg.Post("/conversations/:id/messages", ch.Send)
		cg.Patch("/conversations/:id/close", middleware.AuthorizePermission(constants.ReplySupport), ch.Close)

		// Uploads — sign URL uses SUPABASE_URL
		sc := &uploadsvc.HTTPClient{BaseURL: cfg.SupabaseURL, SecretKey: cfg.SupabaseSecretKey}
		upsvc := &uploadsvc.Service{Client: sc, SupabaseURL: cfg.SupabaseURL}
		uph := &uploadhandler.Handlers{Service: upsvc}
		upg := app.Group("/api/v1/uploads", middleware.RequireAuth())
		upg.Post("/chat-attachment", uph.ChatAttachment)

		// Admin
		as := &adminsvc.Service{DB: db, Notifications: notifService}
		adh := &adminhandler.Handlers{Service: as}
		app.Get("/api/v1/payment-methods", middleware.RequireAuth(), adh.ListActivePaymentMethods)
		ag := app.Group("/api/v1/admin", middleware.RequireAuth())
		ag.Get("/customers", middleware.AuthorizePermission(constants.ManageCustomers), adh.ListCustomers)
		ag.Patch("/customers/:id/status", middleware.AuthorizePermission(constants.ManageCustomers), adh.SetCustomerStatus)
		ag.Get("/payment-methods", middleware.AuthorizePermission(constants.ManagePaymentMethods), adh.ListAllPaymentMethods)
		ag.Post("/payment-methods", middleware.AuthorizePermission(constants.ManagePaymentMethods), adh.CreatePaymentMethod)
		ag.Put("/payment-methods/:id", middleware.AuthorizePermission(constants.ManagePaymentMethods), adh.UpdatePaymentMethod)
		ag.Delete("/payment-methods/:id", middleware.AuthorizePermission(constants.ManagePaymentMethods), adh.DeletePaymentMethod)

		// Settlement sweep — hit by the external scheduler, all methods
		settleService := &settlesvc.Service{
			DB:            db,
			Notifications: notifService,
			Chat:          chatService,
			Emails:        emailSender,
			Now:           time.Now,
		}
		sh := &settlehandler.Handlers{Service: settleService, TriggerKey: cfg.SweepTriggerKey}
		app.All("/api/v1/settlement/sweep", sh.Sweep)
	}

	return app, db, rdb, nil
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
