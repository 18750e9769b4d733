package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/medview/labreport/internal/common"
	"github.com/medview/labreport/internal/extract"
	"github.com/medview/labreport/internal/llm/gemini"
	"github.com/medview/labreport/internal/ocr"
	"github.com/medview/labreport/internal/pipeline"
	"github.com/medview/labreport/internal/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "labreportd",
		Short: "Medical lab report analyzer",
	}
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(analyzeCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	return logger
}

// buildOrchestrator constructs the full stage graph from config. All
// collaborators are explicit; nothing is process-global.
func buildOrchestrator(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*pipeline.Orchestrator, error) {
	gen, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Timeout: cfg.LLMTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init generative backend: %w", err)
	}

	extractor := ocr.NewExtractor(ocr.Config{
		Tesseract:     cfg.Tesseract,
		Pdftotext:     cfg.Pdftotext,
		TesseractLang: cfg.TesseractLang,
		TessdataDir:   cfg.TessdataDir,
	}, logger)
	source := extract.NewSourceAdapter(extract.NewOCRAdapter(extractor, logger), logger)

	mode, err := pipeline.ParseMode(cfg.PipelineMode)
	if err != nil {
		return nil, err
	}

	return pipeline.NewOrchestrator(
		logger,
		source,
		pipeline.NewRepairStage(gen, logger),
		pipeline.NewCombinedStage(gen, logger, cfg.AITemperature),
		pipeline.NewNormalizeStage(gen, logger),
		pipeline.NewValidateStage(gen, logger, cfg.AITemperature),
		pipeline.NewSummaryStage(gen, logger, cfg.AITemperature),
		cfg.ValidationConfidenceThreshold,
		mode,
	), nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			cfg, err := common.Load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			orch, err := buildOrchestrator(ctx, cfg, logger)
			if err != nil {
				return err
			}

			e := echo.New()
			e.HideBanner = true
			e.Use(echomw.Recover())
			e.Use(echomw.RequestID())
			server.New(logger, cfg, orch).Register(e)

			go func() {
				logger.Info("server.listening", "port", cfg.Port, "mode", cfg.PipelineMode)
				if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
					logger.Error("server.failed", "error", err)
					stop()
				}
			}()

			<-ctx.Done()
			logger.Info("server.shutting_down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return e.Shutdown(shutdownCtx)
		},
	}
}

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [text]",
		Short: "Run the pipeline once over report text (reads stdin without an argument)",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			cfg, err := common.Load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			orch, err := buildOrchestrator(ctx, cfg, logger)
			if err != nil {
				return err
			}

			var text string
			if len(args) > 0 {
				text = strings.Join(args, " ")
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(data)
			}

			outcome := orch.ProcessText(ctx, text)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(outcome)
		},
	}
}
