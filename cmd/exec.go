package cmd

import (
	"log"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	pubnub "github.com/pubnub/go"

	"eventtix/config"
	"eventtix/internal/handlers"
	"eventtix/internal/notify"
	"eventtix/internal/services"
	"eventtix/internal/store/pbstore"
	_ "eventtix/migrations"
	"eventtix/monitoring"
	"eventtix/security"
	"eventtix/utils"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL)
	defer redisClient.Close()

	// Persistence + core services
	st := pbstore.New(app)
	gate := services.NewAccessGate(st)

	sinks := []notify.Sink{
		notify.NewMailSink(app, cfg.MailFromAddress, cfg.MailFromName),
	}
	if cfg.PubNubPublishKey != "" && cfg.PubNubSubscribeKey != "" {
		pnConfig := pubnub.NewConfig()
		pnConfig.PublishKey = cfg.PubNubPublishKey
		pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
		pnConfig.SecretKey = cfg.PubNubSecretKey
		sinks = append(sinks, notify.NewPubNubSink(pubnub.NewPubNub(pnConfig)))
	}

	issuer := services.NewTicketIssuer(st, sinks...)
	intake := services.NewOrderIntake(st, gate, issuer)
	validator := services.NewTicketValidator(st)

	// Initialize handlers
	orderHandler := handlers.NewOrderHandler(app, intake, issuer, st)
	validatorHandler := handlers.NewValidatorHandler(app, validator)
	gateHandler := handlers.NewGateHandler(app, gate)
	eventHandler := handlers.NewEventHandler(app, st)

	limiter := security.NewRateLimiter(redisClient)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	if cfg.EnableMetrics {
		go monitoring.Serve(cfg.MetricsPort)
	}

	setupTicketTypeHooks(app)

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		// Order intake
		e.Router.POST("/api/v1/orders", orderHandler.Submit).
			BindFunc(limiter.AntiBotMiddleware()).
			BindFunc(limiter.Limit("orders", cfg.OrderRateLimit, cfg.RateLimitWindow))
		e.Router.GET("/api/v1/orders/{orderId}", orderHandler.Get)
		e.Router.GET("/api/v1/orders/{orderId}/tickets", orderHandler.ListTickets)
		e.Router.POST("/api/v1/orders/{orderId}/issue", orderHandler.Reissue)

		// Access gate pre-check for the purchase UI
		e.Router.POST("/api/v1/ticket-types/{ticketTypeId}/access", gateHandler.VerifyAccess).
			BindFunc(limiter.Limit("gate", cfg.OrderRateLimit, cfg.RateLimitWindow))

		// Public event availability
		e.Router.GET("/api/v1/events/{eventId}/availability", eventHandler.Availability)

		// Venue-facing scan endpoint
		e.Router.POST("/api/v1/tickets/validate", validatorHandler.Validate).
			BindFunc(limiter.Limit("validate", cfg.ValidateRateLimit, cfg.RateLimitWindow))

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		return e.Next()
	})

	// Start server
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
	return nil
}

// setupTicketTypeHooks keeps plaintext gate passwords out of storage: any
// non-bcrypt value arriving in password_hash is hashed before save, and a
// gated type without a credential falls back to ungated.
func setupTicketTypeHooks(app *pocketbase.PocketBase) {
	hashIncoming := func(e *core.RecordRequestEvent) error {
		raw := e.Record.GetString("password_hash")
		if raw != "" && !strings.HasPrefix(raw, "$2") {
			hash, err := services.HashAccessCode(raw)
			if err != nil {
				return err
			}
			e.Record.Set("password_hash", hash)
		}
		if e.Record.GetString("password_hash") == "" {
			e.Record.Set("is_gated", false)
		}
		return e.Next()
	}

	app.OnRecordCreateRequest("ticket_types").BindFunc(hashIncoming)
	app.OnRecordUpdateRequest("ticket_types").BindFunc(hashIncoming)
}
