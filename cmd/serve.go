package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nexcrm/outreach-gateway/internal/config"
	"github.com/nexcrm/outreach-gateway/internal/db"
	"github.com/nexcrm/outreach-gateway/internal/dispatcher"
	httpSrv "github.com/nexcrm/outreach-gateway/internal/http"
	"github.com/nexcrm/outreach-gateway/internal/logger"
	"github.com/nexcrm/outreach-gateway/internal/provider"
	"github.com/nexcrm/outreach-gateway/internal/secrets"
	"github.com/nexcrm/outreach-gateway/internal/telephony"
	"github.com/nexcrm/outreach-gateway/internal/token"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger.Init(cfg.Log.Level)
		defer logger.Sync()

		mysqlDB, err := db.NewMySQLConnection(cfg.MySQL.DSN, db.MySQLOpts{
			MaxOpenConns:    cfg.MySQL.MaxOpenConns,
			MaxIdleConns:    cfg.MySQL.MaxIdleConns,
			ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.MySQL.ConnMaxIdleTime,
			PingTimeout:     cfg.MySQL.PingTimeout,
		})
		if err != nil {
			return fmt.Errorf("mysql connect: %w", err)
		}
		defer mysqlDB.Close()

		redisClient, err := db.NewRedisClient(db.RedisOpts{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: cfg.Redis.DialTimeout,
		})
		if err != nil {
			return fmt.Errorf("redis connect: %w", err)
		}
		defer func() { _ = redisClient.Close() }()

		chDB, err := db.NewClickHouseConnection(db.ClickHouseOpts{
			DSN:             cfg.ClickHouse.DSN,
			MaxOpenConns:    cfg.ClickHouse.MaxOpenConns,
			MaxIdleConns:    cfg.ClickHouse.MaxIdleConns,
			ConnMaxLifetime: cfg.ClickHouse.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.ClickHouse.ConnMaxIdleTime,
			PingTimeout:     cfg.ClickHouse.PingTimeout,
		})
		if err != nil {
			return fmt.Errorf("clickhouse connect: %w", err)
		}
		defer func() {
			_ = chDB.Close()
		}()

		// dispatch/tracking core; config errors fail startup, not first use
		sp, err := secrets.NewStatic(cfg.Tracking.Secret)
		if err != nil {
			return err
		}
		signer := token.NewSigner(sp,
			token.WithTrackingTTL(cfg.Tracking.TrackingTTL),
			token.WithPortalTTL(cfg.Tracking.PortalTTL),
		)
		registry, err := provider.NewRegistry(cfg.Channels)
		if err != nil {
			return err
		}
		tel, err := telephony.New(cfg.Telephony)
		if err != nil {
			return err
		}
		disp := dispatcher.New(registry, dispatcher.NewDecorator(signer, cfg.Tracking.PublicBaseURL))

		server := httpSrv.NewServer(cfg, mysqlDB, chDB, redisClient, httpSrv.Deps{
			Signer:     signer,
			Dispatcher: disp,
			Telephony:  tel,
		})

		errCh := make(chan error, 1)
		go func() {
			logger.Log.Info("starting http", zap.String("addr", cfg.HTTP.Addr))
			errCh <- server.Start(cfg.HTTP.Addr)
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			logger.Log.Info("signal received, shutting down", zap.String("signal", sig.String()))
		case err := <-errCh:
			if err != nil {
				logger.Log.Error("http server exited", zap.Error(err))
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)

		return nil
	},
}
