package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"policyvault/internal/cache"
	"policyvault/internal/config"
	"policyvault/internal/db"
	"policyvault/internal/documents"
	policygrpc "policyvault/internal/grpc"
	internalhttp "policyvault/internal/http"
	"policyvault/internal/jobs"
	"policyvault/internal/repository"
	"policyvault/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the gRPC health endpoint and the reminder job",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
		return serve(cfg, logger)
	},
}

func serve(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db connection failed: %w", err)
	}
	defer pool.Close()
	store := repository.NewStore(pool)

	c, closeCache, err := newCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	awsCfg, err := storage.Load(ctx, cfg.AWSRegion, cfg.AWSEndpointURL)
	if err != nil {
		return fmt.Errorf("aws config: %w", err)
	}
	objects := storage.NewS3(storage.NewClient(awsCfg, cfg.AWSEndpointURL))
	uploader := documents.NewUploader(objects, store, cfg.PolicyDocumentsBucket, cfg.ClaimDocumentsBucket, cfg.MaxUploadBytes, logger)

	server := internalhttp.NewServer(cfg, store, c, uploader, logger)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	jobDone := jobs.StartReminderJob(ctx, cfg, store, logger)

	errs := make(chan error, 2)
	go func() {
		logger.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("http server: %w", err)
		}
	}()

	var stopGRPC func()
	if cfg.ServiceAuthToken != "" {
		grpcServer, hs, err := policygrpc.NewServer(cfg.ServiceAuthToken)
		if err != nil {
			return fmt.Errorf("grpc service auth init failed: %w", err)
		}
		listener, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		watchDone := policygrpc.WatchDependencies(ctx, hs, pool.Ping, 15*time.Second, logger)
		go func() {
			logger.Info("grpc listening", zap.String("addr", cfg.GRPCAddr))
			if err := grpcServer.Serve(listener); err != nil {
				errs <- fmt.Errorf("grpc server: %w", err)
			}
		}()
		stopGRPC = func() {
			grpcServer.GracefulStop()
			<-watchDone
		}
	} else {
		logger.Info("grpc disabled, SERVICE_AUTH_TOKEN not set")
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errs:
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if stopGRPC != nil {
		stopGRPC()
	}
	<-jobDone
	return runErr
}

// newCache prefers Redis when configured so replicas share invalidations.
func newCache(ctx context.Context, cfg config.Config, logger *zap.Logger) (cache.Cache, func(), error) {
	if cfg.RedisAddr == "" {
		logger.Info("using in-process cache")
		return cache.NewMemory(cfg.CacheTTL), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis ping failed: %w", err)
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Warn("redis close", zap.Error(err))
		}
	}
	return cache.NewRedis(client, cfg.CacheTTL), closeFn, nil
}
