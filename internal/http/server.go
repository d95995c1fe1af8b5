package http

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	gommonLog "github.com/labstack/gommon/log"
	"github.com/nexcrm/outreach-gateway/internal/config"
	"github.com/nexcrm/outreach-gateway/internal/dispatcher"
	"github.com/nexcrm/outreach-gateway/internal/http/middleware"
	"github.com/nexcrm/outreach-gateway/internal/metrics"
	"github.com/nexcrm/outreach-gateway/internal/repository"
	"github.com/nexcrm/outreach-gateway/internal/telephony"
	"github.com/nexcrm/outreach-gateway/internal/token"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type Server struct{ e *echo.Echo }

// Deps carries the dispatch/tracking core wired by the serve command.
type Deps struct {
	Signer     *token.Signer
	Dispatcher *dispatcher.Dispatcher
	Telephony  telephony.Provider
}

func NewServer(cfg config.Config, mysqlDB, clickhouseDB *sqlx.DB, rds *redis.Client, deps Deps) *Server {
	// repos (MySQL)
	tenantsRepo := repository.NewTenantsRepository(mysqlDB)
	messagesRepo := repository.NewMessagesRepository(mysqlDB)
	callsRepo := repository.NewCallsRepository(mysqlDB)
	leadsRepo := repository.NewLeadsRepository(mysqlDB)

	// repos (ClickHouse)
	eventsRepo := repository.NewEventsRepository(clickhouseDB)

	// echo
	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(gommonLog.WARN)
	e.Use(echoMid.Recover(), echoMid.Logger())

	metrics.MustRegister(prometheus.DefaultRegisterer)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// public surface: authorization comes exclusively from token verification
	e.GET("/track/open/:token", trackOpenHandler(deps.Signer, messagesRepo, eventsRepo))
	e.GET("/track/click/:token", trackClickHandler(deps.Signer, messagesRepo, eventsRepo))
	e.GET("/unsubscribe/:token", unsubscribeFormHandler(deps.Signer, leadsRepo))
	e.POST("/unsubscribe/:token", unsubscribeHandler(deps.Signer, leadsRepo))
	e.POST("/webhooks/voice", voiceWebhookHandler(deps.Telephony, callsRepo))

	// middlewares
	authMW := middleware.APIKeyMiddleware(tenantsRepo)
	rlMW := middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Redis:          rds,
		DefaultRPS:     cfg.RateLimit.RPS,
		KeyPrefix:      "rl:tenant:",
		Window:         time.Second,
		RetryAfterHint: true,
	})

	// private routes
	v1 := e.Group("/v1", authMW, rlMW)
	v1.POST("/messages/dispatch", dispatchMessageHandler(deps.Dispatcher, messagesRepo, eventsRepo))
	v1.POST("/calls", startCallHandler(deps.Telephony, callsRepo, leadsRepo))
	v1.GET("/reports/events", listEventsHandler(eventsRepo))

	return &Server{e: e}
}

func (s *Server) Start(addr string) error {
	log.Printf("http: listening on %s", addr)
	return s.e.Start(addr)
}
func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }
