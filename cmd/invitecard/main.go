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

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/youruser/invitecard/internal/api"
	"github.com/youruser/invitecard/internal/config"
	imagepkg "github.com/youruser/invitecard/internal/image"
	"github.com/youruser/invitecard/internal/invitation"
	"github.com/youruser/invitecard/internal/util"
)

var version = "v0.1.0"

func main() {
	var configPath string
	root := &cobra.Command{
		Use:          "invitecard",
		Short:        "Party invitation cards with an RSVP QR code",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to config file")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve the invitation form over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	})

	var card cardFlags
	var out string
	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Render a single invitation card to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), configPath, card, out)
		},
	}
	card.register(renderCmd, true)
	renderCmd.Flags().StringVarP(&out, "out", "o", invitation.CardFileName, "Output PNG path")
	root.AddCommand(renderCmd)

	var batch cardFlags
	var guestsPath, outDir string
	batchCmd := &cobra.Command{
		Use:   "batch",
		Short: "Render one invitation per guest in a CSV guest list",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd.Context(), configPath, batch, guestsPath, outDir)
		},
	}
	batch.register(batchCmd, false)
	batchCmd.Flags().StringVar(&guestsPath, "guests", "guests.csv", "CSV guest list")
	batchCmd.Flags().StringVar(&outDir, "out-dir", "invitations", "Directory for the rendered cards")
	root.AddCommand(batchCmd)

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("invitecard %s\n", version)
		},
	})

	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger and font resolver shared
// by every command.
func setup(configPath string) (*config.Config, *slog.Logger, *imagepkg.FontResolver, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	log := config.NewLogger(cfg, os.Stderr)
	slog.SetDefault(log)

	fonts := imagepkg.NewFontResolver(cfg.FontPath)
	if reason := fonts.FallbackReason(); reason != nil {
		log.Warn("card font unavailable, using fallback", "font_path", cfg.FontPath, "source", fonts.Source().String(), "reason", reason)
	} else {
		log.Info("card font loaded", "font_path", cfg.FontPath)
	}
	return cfg, log, fonts, nil
}

func newGenerator(cfg *config.Config, log *slog.Logger, fonts *imagepkg.FontResolver, uploadDir, outputDir string) *invitation.Generator {
	return invitation.NewGenerator(invitation.Options{
		UploadDir:     uploadDir,
		OutputDir:     outputDir,
		QRSize:        cfg.QRSize,
		QRLevel:       imagepkg.ParseRecoveryLevel(cfg.QRRecoveryLevel),
		TitleFontSize: cfg.TitleFontSize,
		BodyFontSize:  cfg.BodyFontSize,
	}, fonts, log)
}

func runServe(configPath string) error {
	cfg, log, fonts, err := setup(configPath)
	if err != nil {
		return err
	}
	for _, dir := range []string{cfg.UploadDir, cfg.OutputDir} {
		if err := util.EnsureDir(dir); err != nil {
			return err
		}
	}

	gin.SetMode(gin.ReleaseMode)
	gen := newGenerator(cfg, log, fonts, cfg.UploadDir, cfg.OutputDir)
	router := api.NewRouter(api.NewHandler(gen, log, cfg.MaxUploadBytes, cfg.KeepArtifacts))
	router.MaxMultipartMemory = cfg.MaxUploadBytes

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("starting server", "version", version, "addr", srv.Addr, "upload_dir", cfg.UploadDir, "output_dir", cfg.OutputDir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	case <-quit:
	}

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout.Duration)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
