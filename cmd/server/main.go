package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/Saurabhrajput1234/BookMySeat/internal/auth"
	"github.com/Saurabhrajput1234/BookMySeat/internal/booking"
	"github.com/Saurabhrajput1234/BookMySeat/internal/booking/booking_api"
	booking_db "github.com/Saurabhrajput1234/BookMySeat/internal/booking/db"
	"github.com/Saurabhrajput1234/BookMySeat/internal/config"
	"github.com/Saurabhrajput1234/BookMySeat/internal/email"
	"github.com/Saurabhrajput1234/BookMySeat/internal/events"
	events_db "github.com/Saurabhrajput1234/BookMySeat/internal/events/db"
	"github.com/Saurabhrajput1234/BookMySeat/internal/events/event_api"
	"github.com/Saurabhrajput1234/BookMySeat/internal/kafka"
	"github.com/Saurabhrajput1234/BookMySeat/internal/logger"
	"github.com/Saurabhrajput1234/BookMySeat/internal/models"
	"github.com/Saurabhrajput1234/BookMySeat/internal/notify"
	"github.com/Saurabhrajput1234/BookMySeat/internal/seats"
	seats_db "github.com/Saurabhrajput1234/BookMySeat/internal/seats/db"
	"github.com/Saurabhrajput1234/BookMySeat/internal/seats/seat_api"
	"github.com/Saurabhrajput1234/BookMySeat/internal/users"
	users_db "github.com/Saurabhrajput1234/BookMySeat/internal/users/db"
	"github.com/Saurabhrajput1234/BookMySeat/internal/users/user_api"
	"github.com/Saurabhrajput1234/BookMySeat/internal/utils"
)

var startTime = time.Now()

func connectPostgres(cfg config.DatabaseConfig, log *logger.Logger) *bun.DB {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Connecting to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.DSN)
		if err == nil {
			err = sqldb.Ping()
			if err == nil {
				break
			}
		}
		log.Error("DATABASE", fmt.Sprintf("PostgreSQL connection failed: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	log.Info("DATABASE", "PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New())
}

func connectRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	log.Info("DATABASE", fmt.Sprintf("Redis connection successful to %s", cfg.Addr))
	return client
}

func healthHandler(bunDB *bun.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		code := http.StatusOK
		if err := bunDB.PingContext(r.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    status,
			"timestamp": time.Now().UTC(),
			"uptime":    time.Since(startTime).String(),
		})
	}
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting BookMySeat server")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	}
	cfg := config.Load()

	if cfg.JWT.Secret == "" {
		log.Fatal("CONFIG", "JWT_SECRET not set")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bunDB := connectPostgres(cfg.Database, log)
	defer bunDB.Close()

	redisClient := connectRedis(ctx, cfg.Redis, log)
	defer redisClient.Close()

	booking.InitStripe(cfg.Stripe.SecretKey)

	// Each instance gets a unique origin ID so it can ignore its own
	// seat-status messages coming back off the topic.
	origin := uuid.NewString()
	hub := notify.NewHub()

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()

		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, []string{cfg.Kafka.SeatStatusTopic}); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		}
	} else {
		log.Warn("KAFKA", "Kafka disabled, seat status updates stay instance-local")
	}

	broadcaster := notify.NewBroadcaster(hub, producer, cfg.Kafka.SeatStatusTopic, origin)

	if cfg.Kafka.Enabled {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.SeatStatusTopic, cfg.Kafka.GroupID+"-"+origin, log)
		defer consumer.Close()
		go consumer.Start(ctx, broadcaster.HandleRemote)
	}

	mailer := email.NewSender(cfg.Email, log)
	issuer := auth.NewTokenIssuer(cfg.JWT)
	codeCache := auth.NewVerificationCache(redisClient)
	qrGen := booking.NewQRGenerator(cfg.QR.Secret)

	bookingService := booking.NewService(&booking_db.DB{Bun: bunDB}, broadcaster, mailer, log)
	eventService := events.NewService(events_db.New(bunDB), log)
	seatService := seats.NewService(seats_db.New(bunDB), events_db.New(bunDB), log)
	userService := users.NewService(users_db.New(bunDB), issuer, codeCache, mailer, utils.GenerateVerificationCode, log)

	bookingHandler := booking_api.NewHandler(bookingService, hub, qrGen, log)
	eventHandler := event_api.NewHandler(eventService, log)
	seatHandler := seat_api.NewHandler(seatService, log)
	userHandler := user_api.NewHandler(userService, log)

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Frontend.Origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- Public routes ---
	r.Get("/health", healthHandler(bunDB))

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", userHandler.Register)
		r.Post("/verify-email", userHandler.VerifyEmail)
		r.Post("/resend-code", userHandler.ResendCode)
		r.Post("/login", userHandler.Login)
	})

	r.Get("/api/events", eventHandler.ListEvents)
	r.Get("/api/events/{eventId}", eventHandler.GetEvent)
	r.Get("/api/events/{eventId}/seats/stream", bookingHandler.StreamSeatStatus)
	r.Get("/api/seats/event/{eventId}", seatHandler.ListEventSeats)

	// --- Authenticated routes ---
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(issuer))

		r.Get("/api/users/me", userHandler.Me)

		r.Route("/api/bookings", func(r chi.Router) {
			r.Post("/book", bookingHandler.BookSeat)
			r.Get("/my", bookingHandler.MyBookings)
			r.Post("/payment-intent", bookingHandler.CreatePaymentIntent)
			r.Post("/confirm-payment", bookingHandler.ConfirmPayment)
			r.Get("/{bookingId}/qr", bookingHandler.BookingQR)

			// Admin-only booking management.
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(models.RoleAdmin))
				r.Get("/", bookingHandler.AllBookings)
				r.Get("/event/{eventId}", bookingHandler.EventBookings)
				r.Delete("/{bookingId}", bookingHandler.CancelBooking)
			})
		})

		// --- Admin routes ---
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(models.RoleAdmin))

			r.Post("/api/events", eventHandler.CreateEvent)
			r.Put("/api/events/{eventId}", eventHandler.UpdateEvent)
			r.Delete("/api/events/{eventId}", eventHandler.DeleteEvent)

			r.Post("/api/seats", seatHandler.CreateSeat)
			r.Post("/api/seats/batch", seatHandler.CreateSeatBatch)
			r.Put("/api/seats/{seatId}", seatHandler.UpdateSeat)
			r.Delete("/api/seats/{seatId}", seatHandler.DeleteSeat)

			r.Get("/api/users", userHandler.ListUsers)
			r.Get("/api/users/{userId}", userHandler.GetUser)
			r.Put("/api/users/{userId}/role", userHandler.UpdateUserRole)
			r.Put("/api/users/{userId}/active", userHandler.ToggleUserActive)
		})
	})

	server := &http.Server{
		Addr:        cfg.Server.Port,
		Handler:     r,
		ReadTimeout: cfg.Server.ReadTimeout,
		IdleTimeout: cfg.Server.IdleTimeout,
		// No WriteTimeout: SSE streams stay open indefinitely.
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("BookMySeat server running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Server started, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	}
	log.Info("APP", "Server stopped")
}
