package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/taller-iot/marcaje/pkg/cli/config"
	httpctrl "github.com/taller-iot/marcaje/pkg/controller/http"
	"github.com/taller-iot/marcaje/pkg/domain/interfaces"
	"github.com/taller-iot/marcaje/pkg/domain/model"
	"github.com/taller-iot/marcaje/pkg/domain/types"
	"github.com/taller-iot/marcaje/pkg/service/poller"
	"github.com/taller-iot/marcaje/pkg/usecase"
	"github.com/taller-iot/marcaje/pkg/utils/logging"
)

func cmdServe(version string) *cli.Command {
	var addr string
	var repoCfg config.Repository
	var mailboxCfg config.Mailbox
	var pollerCfg config.Poller
	var shiftCfg config.Shift
	var sentryCfg config.Sentry

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("MARCAJE_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, mailboxCfg.Flags()...)
	flags = append(flags, pollerCfg.Flags()...)
	flags = append(flags, shiftCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the ingestion pollers and HTTP API server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			sentryCloser, err := sentryCfg.Configure(version)
			if err != nil {
				return goerr.Wrap(err, "failed to configure error reporting")
			}
			defer sentryCloser()

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			mb := mailboxCfg.Configure()

			ucOpts := []usecase.Option{}
			if mb != nil {
				ucOpts = append(ucOpts, usecase.WithMailbox(mb))
			} else {
				logging.Default().Warn("mailbox URL not configured, ingestion and enrollment are disabled")
			}

			uc := usecase.New(repo, ucOpts...)

			// Apply the TOML shift seed without overwriting operator changes
			if seed, err := shiftCfg.Load(); err != nil {
				return err
			} else if seed != nil {
				if err := uc.Config.Seed(ctx, seed); err != nil {
					return goerr.Wrap(err, "failed to seed shift config")
				}
			}

			var pollers []*poller.ChannelPoller
			if mb != nil {
				for channel, handler := range channelHandlers(uc) {
					p := poller.New(mb, channel, handler, pollerCfg.Options()...)
					if err := p.Start(ctx); err != nil {
						return goerr.Wrap(err, "failed to start poller", goerr.V("channel", channel))
					}
					pollers = append(pollers, p)
				}
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(sigCtx)

			g.Go(func() error {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return goerr.Wrap(err, "failed to start server")
				}
				return nil
			})

			g.Go(func() error {
				<-gctx.Done()
				logging.Default().Info("Shutting down")

				for _, p := range pollers {
					p.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				return nil
			})

			if err := g.Wait(); err != nil {
				return err
			}

			logging.Default().Info("Server shutdown completed")
			return nil
		},
	}
}

// channelHandlers binds each mailbox log channel to its ingestion logic.
// Unparsable payloads are skipped without error: the firmware emits fixed
// phrases and anything else on the channel is noise, not a fault.
func channelHandlers(uc *usecase.UseCases) map[types.Channel]poller.Handler {
	return map[types.Channel]poller.Handler{
		types.ChannelAttendance: func(ctx context.Context, entry interfaces.MailboxEntry) error {
			badgeID, err := model.ParseBadgeScan(entry.Message)
			if err != nil {
				logging.From(ctx).Debug("skipping non-scan attendance message",
					"key", entry.Key, "message", entry.Message)
				return nil
			}

			action, err := uc.Resolver.Resolve(ctx, badgeID, uc.Config.Get(ctx).Now())
			if err != nil {
				return err
			}

			logging.From(ctx).Info("badge scan resolved", "badge", badgeID, "action", action)
			return nil
		},

		types.ChannelAccess: func(ctx context.Context, entry interfaces.MailboxEntry) error {
			sensorID, err := model.ParseAccessGranted(entry.Message)
			if err != nil {
				logging.From(ctx).Debug("skipping non-access message",
					"key", entry.Key, "message", entry.Message)
				return nil
			}

			_, err = uc.Audit.RecordGranted(ctx, sensorID, uc.Config.Get(ctx).Now())
			return err
		},

		types.ChannelSecurity: func(ctx context.Context, entry interfaces.MailboxEntry) error {
			if !model.IsAccessDenied(entry.Message) {
				logging.From(ctx).Debug("skipping non-denial security message",
					"key", entry.Key, "message", entry.Message)
				return nil
			}

			_, err := uc.Audit.RecordDenied(ctx, entry.Message, uc.Config.Get(ctx).Now())
			return err
		},
	}
}
