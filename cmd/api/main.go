package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shravan4507/ise-elevators-website/internal/auth"
	"github.com/Shravan4507/ise-elevators-website/internal/cache"
	"github.com/Shravan4507/ise-elevators-website/internal/config"
	"github.com/Shravan4507/ise-elevators-website/internal/db"
	"github.com/Shravan4507/ise-elevators-website/internal/events"
	"github.com/Shravan4507/ise-elevators-website/internal/identity"
	"github.com/Shravan4507/ise-elevators-website/internal/leads"
	"github.com/Shravan4507/ise-elevators-website/internal/middleware"
	"github.com/Shravan4507/ise-elevators-website/internal/notifications"
	"github.com/Shravan4507/ise-elevators-website/internal/site"
	"github.com/Shravan4507/ise-elevators-website/internal/transport"
	"github.com/Shravan4507/ise-elevators-website/internal/validation"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Error("mongo connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("mongo connected", slog.String("db", cfg.MongoDB))
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		logger.Error("index creation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var cacheStore cache.Cache = cache.NewMemory()
	if cfg.RedisURL != "" || cfg.RedisAddr != "" {
		var redisCache *cache.RedisCache
		var err error
		if cfg.RedisURL != "" {
			redisCache, err = cache.NewRedisFromURL(cfg.RedisURL)
		} else {
			redisCache = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		}
		if err == nil {
			err = redisCache.Ping(ctx)
		}
		if err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisCache.Close()
		logger.Info("redis connected")
		cacheStore = redisCache
	} else {
		logger.Info("redis disabled, using in-process cache")
	}

	secret := cfg.JWTSecret
	if secret == "" {
		secret = randomSecret()
		logger.Warn("JWT_SECRET not set, admin sessions end on restart")
	}
	jwtManager := &auth.Manager{
		Secret:     []byte(secret),
		AccessTTL:  time.Duration(cfg.AccessTTLMinutes) * time.Minute,
		RefreshTTL: time.Duration(cfg.RefreshTTLMinutes) * time.Minute,
		Issuer:     "ise-elevators",
	}

	var tracker events.Tracker = events.NewLogTracker(logger)
	if cfg.AMQPURL != "" {
		rabbit, err := events.DialRabbit(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Error("rabbitmq unavailable, tracking to log", slog.String("error", err.Error()))
		} else {
			defer rabbit.Close()
			logger.Info("rabbitmq connected", slog.String("exchange", cfg.AMQPExchange))
			tracker = rabbit
		}
	}

	notifier, notifierName := notifications.FromConfig(cfg)
	logger.Info("lead notifications", slog.String("via", notifierName), slog.String("inbox", cfg.NotifyEmail))

	val := validation.New()

	registry := leads.NewRegistry(
		leads.NewService(leads.NewRepository(cols.Quotes, leads.KindQuote), leads.KindQuote, notifier, tracker, logger),
		leads.NewService(leads.NewRepository(cols.Enquiries, leads.KindEnquiry), leads.KindEnquiry, notifier, tracker, logger),
	)
	leadsHandler := leads.NewHandler(registry, val, logger)

	identityService := identity.NewService(identity.NewMongoAccounts(cols.Admins), jwtManager, cacheStore, identity.Options{
		MaxAttempts: cfg.LoginMaxAttempts,
		Lockout:     time.Duration(cfg.LoginLockoutSec) * time.Second,
		RecentLogin: time.Duration(cfg.RecentLoginMinutes) * time.Minute,
	}, logger)
	identityHandler := identity.NewHandler(identityService, jwtManager, val, logger, cfg.CookieSecure)

	window := time.Duration(cfg.RateLimitWindowSec) * time.Second
	leadsLimiter := middleware.NewRateLimiter(cfg.RateLimitLeads, window)
	loginLimiter := middleware.NewRateLimiter(cfg.RateLimitLogin, window)

	web, err := site.New(site.Options{
		Store:        registry,
		Sessions:     identityService,
		Validator:    val,
		Tracker:      tracker,
		Log:          logger,
		CSRFKey:      cfg.CSRFAuthKey(),
		CookieSecure: cfg.CookieSecure,
		Timezone:     cfg.Timezone,
		LeadLimiter:  leadsLimiter,
		LoginLimiter: loginLimiter,
	})
	if err != nil {
		logger.Error("site setup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	if cfg.MetricsEnabled {
		r.Use(middleware.Metrics)
	}
	r.Use(middleware.CORS(cfg.FrontendOrigins))
	r.Use(chiMiddleware.Timeout(30 * time.Second))

	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		pingCtx, pingCancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer pingCancel()
		if err := client.Ping(pingCtx, nil); err != nil {
			transport.WriteError(w, http.StatusServiceUnavailable, "database unavailable", nil)
			return
		}
		transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.With(leadsLimiter.Middleware).Post("/quotes", leadsHandler.CreateQuote)
		api.With(leadsLimiter.Middleware).Post("/enquiries", leadsHandler.CreateEnquiry)

		api.Route("/admin", func(admin chi.Router) {
			admin.With(loginLimiter.Middleware).Post("/login", identityHandler.Login)
			admin.Post("/refresh", identityHandler.Refresh)
			admin.Post("/logout", identityHandler.Logout)
			admin.Get("/session", identityHandler.Session)

			// chi: middlewares must be attached before defining routes.
			admin.Group(func(protected chi.Router) {
				protected.Use(middleware.AdminAuth(jwtManager, identityService))
				protected.Post("/password", identityHandler.ChangePassword)
				protected.Get("/dashboard", leadsHandler.AdminDashboard)
				protected.Get("/{kind}", leadsHandler.AdminList)
				protected.Get("/{kind}/{id}", leadsHandler.AdminGetByID)
				protected.Patch("/{kind}/{id}/status", leadsHandler.AdminUpdateStatus)
				protected.Delete("/{kind}/{id}", leadsHandler.AdminDelete)
			})
		})
	})

	r.Mount("/", web.Routes())

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", slog.String("addr", cfg.ServerAddr), slog.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	registry.Wait()
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatal(err)
	}
	return hex.EncodeToString(b)
}
