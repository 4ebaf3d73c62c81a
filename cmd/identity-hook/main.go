package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"identity-hook/config"
	"identity-hook/internal/adapter/gateway"
	adapterhandler "identity-hook/internal/adapter/handler"
	"identity-hook/internal/domain"
	infracache "identity-hook/internal/infrastructure/cache"
	infratoken "identity-hook/internal/infrastructure/token"
	"identity-hook/internal/usecase"
	appmiddleware "identity-hook/middleware"
	"identity-hook/utils/logger"
	"identity-hook/utils/otel"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Handle healthcheck subcommand (for Docker healthcheck in distroless image)
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		if err := runHealthcheck(); err != nil {
			fmt.Fprintf(os.Stderr, "Healthcheck failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Local development convenience; absent .env files are not an error.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Initialize OpenTelemetry
	otelCfg := otel.ConfigFromEnv()
	otelShutdown, err := otel.InitProvider(ctx, otelCfg)
	if err != nil {
		slog.Warn("failed to initialize OpenTelemetry, continuing without tracing", "error", err)
		otelCfg.Enabled = false
	}

	// Initialize structured logger
	logger.Init(otelCfg.Enabled)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.InfoContext(ctx, "configuration loaded",
		"user_management_base_url", cfg.UserManagementBaseURL,
		"identity_provider", cfg.IdentityProvider,
		"port", cfg.Port,
		"token_cache_ttl", cfg.TokenCacheTTL)

	// Infrastructure
	tokenCache := infracache.NewTokenCache(cfg.TokenCacheTTL)
	keyResolver := gateway.NewSecretManagerGateway(
		cfg.JWTSigningPrivateKey,
		cfg.JWTSigningPrivateKeySecret,
		cfg.SecretManagerBaseURL,
		gateway.DefaultMetadataBaseURL,
		5*time.Second,
		slog.Default(),
	)
	tokenIssuer := infratoken.NewIssuer(infratoken.IssuerConfig{
		Issuer: cfg.JWTIssuer,
		TTL:    cfg.ServiceTokenTTL,
	}, keyResolver, tokenCache, slog.Default())
	userGateway := gateway.NewUserManagementGateway(
		cfg.UserManagementBaseURL,
		cfg.IdentityProvider,
		tokenIssuer,
		10*time.Second,
		slog.Default(),
	)

	// Usecases
	registerUC := usecase.NewRegisterAccount(
		domain.Classifier{AgencyTenantID: cfg.AgencyTenantID},
		userGateway,
		slog.Default(),
	)

	// Handlers
	registerHandler := adapterhandler.NewRegisterHandler(registerUC)
	healthHandler := adapterhandler.NewHealthHandler()

	// Setup Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Security middleware
	e.Use(appmiddleware.SecurityHeaders())

	// OpenTelemetry tracing
	if otelCfg.Enabled {
		e.Use(otelecho.Middleware(otelCfg.ServiceName))
		e.Use(appmiddleware.OTelStatusMiddleware())
	}

	// Request logging
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			rctx := c.Request().Context()
			if v.Error == nil {
				slog.InfoContext(rctx, "request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				slog.ErrorContext(rctx, "request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))

	e.Use(middleware.Recover())

	// One hook fires per account creation; 60 req/min absorbs sign-up bursts.
	hookRL := appmiddleware.NewRateLimiter(60.0/60.0, 10)

	hookGroup := e.Group("/hooks/v1", hookRL.Middleware())
	if cfg.HookSharedSecret != "" {
		hookGroup.Use(appmiddleware.HookAuth(cfg.HookSharedSecret))
	}
	hookGroup.POST("/user-created", registerHandler.Handle)

	e.GET("/health", healthHandler.Handle)

	// Start server with errgroup for graceful shutdown
	address := fmt.Sprintf(":%s", cfg.Port)
	slog.InfoContext(ctx, "starting identity-hook server", "address", address)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return otelShutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited properly")
}

// runHealthcheck performs a health check against the local server.
func runHealthcheck() error {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8888"
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%s/health", port))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint returned status: %d", resp.StatusCode)
	}
	return nil
}
