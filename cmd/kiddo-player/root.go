package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kiddolearn/kiddo-player/internal/config"
	"github.com/kiddolearn/kiddo-player/internal/log"
	"github.com/kiddolearn/kiddo-player/internal/media"
	"github.com/kiddolearn/kiddo-player/internal/metrics"
	"github.com/kiddolearn/kiddo-player/internal/playback"
	"github.com/kiddolearn/kiddo-player/internal/player"
	"github.com/kiddolearn/kiddo-player/internal/status"
	"github.com/kiddolearn/kiddo-player/internal/ui/tui"
	"github.com/kiddolearn/kiddo-player/internal/ui/tui/models"
	"github.com/kiddolearn/kiddo-player/internal/version"
)

func init() {
	rootCmd.Flags().StringSliceP("title", "t", nil, "Title for each source, in order")
	rootCmd.Flags().StringSliceP("poster", "p", nil, "Poster image for each source, in order")
	rootCmd.Flags().String("status-addr", "", "Serve health, metrics and playback state on this address (overrides status.listen)")
	rootCmd.Flags().Bool("autoplay", false, "Start playing as soon as the player is ready (overrides player.autoplay)")
}

var rootCmd = &cobra.Command{
	Use:           "kiddo-player [flags] SOURCE...",
	Short:         "Terminal video lesson player",
	Long:          "Play a queue of video lessons through mpv, with loading, error and retry handling in the terminal.",
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			// It is unrecoverable if we cannot produce an application config
			return fmt.Errorf("failed to load config: %w", err)
		}

		if cmd.Flags().Changed("status-addr") {
			cfg.Status.Listen = lo.Must(cmd.Flags().GetString("status-addr"))
		}
		if cmd.Flags().Changed("autoplay") {
			cfg.Player.Autoplay = lo.Must(cmd.Flags().GetBool("autoplay"))
		}

		lessons := buildLessons(args,
			lo.Must(cmd.Flags().GetStringSlice("title")),
			lo.Must(cmd.Flags().GetStringSlice("poster")))

		return run(cmd.Context(), cfg, lessons)
	},
}

func run(ctx context.Context, cfg *config.Config, lessons []models.Lesson) error {
	logger, err := log.New(log.Config{
		Level:    cfg.Logging.Level,
		FilePath: cfg.Logging.FilePath,
	})
	if err != nil {
		return fmt.Errorf("failed to initialise logger: %w", err)
	}
	defer logger.Close()
	log.SetDefaultLogger(logger)

	log.Info("Starting up kiddo-player", "version", version.GetVersion(), "build_time", version.GetBuildTime(),
		"lessons", len(lessons))

	factory, err := player.NewEngineFactory(cfg.Player)
	if err != nil {
		return err
	}

	met := metrics.New()
	element := media.NewElement(
		media.WithUserAgent(lo.Ternary(cfg.Media.UserAgent != "", cfg.Media.UserAgent, version.UserAgent())),
		media.WithProbe(!cfg.Media.SkipProbe),
	)
	controller := playback.NewController(factory,
		playback.WithRecorder(met),
		playback.WithAutoplay(cfg.Player.Autoplay),
	)
	defer func() {
		controller.Unmount()
		element.Close()
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	uiCtx, uiDone := context.WithCancel(ctx)
	defer uiDone()

	g.Go(func() error {
		// The status server lives as long as the TUI
		defer uiDone()
		return tui.Run(uiCtx, controller, element, lessons)
	})
	if cfg.Status.Listen != "" {
		srv := status.New(cfg.Status.Listen, controller, met, log.Slog())
		g.Go(func() error {
			return srv.Run(uiCtx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Unhandled error while running kiddo-player", "error", err)
		return err
	}

	log.Info("kiddo-player shutting down.  Goodbye!")
	return nil
}

// buildLessons pairs each source with the title and poster at the same position, if any
func buildLessons(sources, titles, posters []string) []models.Lesson {
	return lo.Map(sources, func(src string, i int) models.Lesson {
		return models.Lesson{
			Source: src,
			Title:  nth(titles, i),
			Poster: nth(posters, i),
		}
	})
}

func nth(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}
