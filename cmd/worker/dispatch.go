package worker

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nexcrm/outreach-gateway/internal/config"
	"github.com/nexcrm/outreach-gateway/internal/db"
	"github.com/nexcrm/outreach-gateway/internal/dispatcher"
	"github.com/nexcrm/outreach-gateway/internal/kafka"
	"github.com/nexcrm/outreach-gateway/internal/logger"
	"github.com/nexcrm/outreach-gateway/internal/metrics"
	"github.com/nexcrm/outreach-gateway/internal/provider"
	"github.com/nexcrm/outreach-gateway/internal/repository"
	"github.com/nexcrm/outreach-gateway/internal/secrets"
	"github.com/nexcrm/outreach-gateway/internal/token"
	"github.com/nexcrm/outreach-gateway/internal/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Run the dispatch worker (consumes queued delivery attempts)",
	RunE:  runDispatch,
}

func runDispatch(cmd *cobra.Command, args []string) error {
	cfgPath, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.Log.Level)
	defer logger.Sync()

	metrics.MustRegister(prometheus.DefaultRegisterer)

	dbx, err := db.NewMySQLConnection(cfg.MySQL.DSN, db.MySQLOpts{
		MaxOpenConns:    cfg.MySQL.MaxOpenConns,
		MaxIdleConns:    cfg.MySQL.MaxIdleConns,
		ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.MySQL.ConnMaxIdleTime,
		PingTimeout:     cfg.MySQL.PingTimeout,
	})
	if err != nil {
		return fmt.Errorf("mysql connect: %w", err)
	}
	defer dbx.Close()

	messagesRepo := repository.NewMessagesRepository(dbx)

	// providers -> dispatcher; configuration problems abort startup
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
	disp := dispatcher.New(registry, dispatcher.NewDecorator(signer, cfg.Tracking.PublicBaseURL))

	topic := cfg.Kafka.Topic
	if topic == "" {
		topic = "outreach.dispatch"
	}
	groupID := cfg.Kafka.GroupID
	if groupID == "" {
		groupID = "outreach-dispatcher"
	}

	consumer := kafka.NewConsumerFromConfig(kafka.Config{
		Brokers:        cfg.Kafka.Brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       cfg.Kafka.MinBytes,
		MaxBytes:       cfg.Kafka.MaxBytes,
		CommitInterval: time.Duration(cfg.Kafka.CommitInterval) * time.Millisecond,
	})
	defer consumer.Close()

	w := worker.NewDispatchWorker(dbx, consumer, messagesRepo, disp)

	// tune knobs
	if cfg.Dispatcher.WorkerCount > 0 {
		w.Workers = cfg.Dispatcher.WorkerCount
	}
	if cfg.Dispatcher.BatchSize > 0 {
		w.BatchSize = cfg.Dispatcher.BatchSize
	}
	if cfg.Dispatcher.BatchWait > 0 {
		w.BatchWait = cfg.Dispatcher.BatchWait
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf(">> dispatch worker started topic=%s group=%s workers=%d batchSize=%d batchWait=%s",
		topic, groupID, w.Workers, w.BatchSize, w.BatchWait)

	return w.Run(ctx)
}
