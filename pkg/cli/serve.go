package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/chatops-lab/chatrelay/pkg/cli/config"
	httpctrl "github.com/chatops-lab/chatrelay/pkg/controller/http"
	"github.com/chatops-lab/chatrelay/pkg/service/worker"
	"github.com/chatops-lab/chatrelay/pkg/usecase"
	"github.com/chatops-lab/chatrelay/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var refreshInterval time.Duration
	var repoCfg config.Repository
	var slackCfg config.Slack
	var queueCfg config.Queue
	var policyCfg config.Policy

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("CHATRELAY_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "profile-refresh-interval",
			Usage:       "Interval for refreshing cached user profiles (0 disables the worker)",
			Value:       0,
			Sources:     cli.EnvVars("CHATRELAY_PROFILE_REFRESH_INTERVAL"),
			Destination: &refreshInterval,
		},
	}

	// Add shared config flags
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, queueCfg.Flags()...)
	flags = append(flags, policyCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			// Initialize repository based on backend type
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			// Initialize job queue
			queue, err := queueCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize job queue")
			}
			defer func() {
				if err := queue.Close(); err != nil {
					logging.Default().Error("failed to close job queue", "error", err.Error())
				}
			}()

			// Initialize Slack service (directory API, ephemeral notices)
			slackSvc, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize slack service")
			}
			if slackCfg.Offline() {
				logging.Default().Warn("Running with offline bot identity (test mode)")
			}

			// Load thread-reply policy
			policy, err := policyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load thread policy")
			}

			allowList := slackCfg.AllowChannelIDs()
			if len(allowList) > 0 {
				logging.Default().Info("Channel allow-list enabled", "channels", allowList)
			}

			uc := usecase.New(repo, queue, slackSvc,
				usecase.WithThreadPolicy(policy),
				usecase.WithAllowedChannels(allowList),
			)

			// Start profile refresh worker if enabled
			var refreshWorker *worker.ProfileRefreshWorker
			if refreshInterval > 0 {
				refreshWorker = worker.NewProfileRefreshWorker(repo, slackSvc, refreshInterval)
				if err := refreshWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start profile refresh worker")
				}
			}

			// Create HTTP server
			webhookHandler := httpctrl.NewSlackWebhookHandler(uc)
			httpHandler := httpctrl.New(
				httpctrl.WithSlackWebhook(webhookHandler, slackCfg.SigningSecret()),
			)
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			// Wait for shutdown signal or server error
			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				if refreshWorker != nil {
					refreshWorker.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
