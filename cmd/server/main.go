package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"card-backend/config"
	"card-backend/internal/client/gemini"
	"card-backend/internal/client/llm"
	"card-backend/internal/client/sheets"
	"card-backend/internal/handler"
	"card-backend/internal/logger"
	"card-backend/internal/service"
)

var (
	configDir string
	env       string
	port      int
)

var rootCmd = &cobra.Command{
	Use:          "card-backend",
	Short:        "Business card scanner backend",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVar(&configDir, "config-dir", "config", "directory holding <env>.yaml")
	rootCmd.Flags().StringVar(&env, "env", "", "config environment (local|dev|prod), defaults to APP_ENV")
	rootCmd.Flags().IntVar(&port, "port", 0, "listen port, overrides config")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("card-backend: %v", err)
	}
}

func run(ctx context.Context) error {
	// 按环境加载配置（APP_ENV=local|dev|prod）
	cfg, err := config.Load(configDir, env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if port > 0 {
		cfg.Server.Port = port
	}

	lg, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = lg.Sync() }()

	gin.SetMode(cfg.Server.Mode)

	// 构建视觉模型客户端，配置错误直接启动失败
	vision, err := newVisionModel(ctx, cfg.LLM)
	if err != nil {
		return fmt.Errorf("init vision client: %w", err)
	}

	// 表格为可选能力：凭证文件不存在时降级
	sheet, err := openSpreadsheet(ctx, cfg.Sheets, lg)
	if err != nil {
		return fmt.Errorf("init google sheets: %w", err)
	}

	// 服务层
	scanSvc := service.NewScanService(vision, lg)
	contactSvc := service.NewContactService(sheet, lg)

	// 路由
	r := handler.Router(scanSvc, contactSvc, lg, handler.Options{
		AllowOrigins: cfg.CORS.AllowOrigins,
		MaxUploadMB:  cfg.Server.MaxUploadMB,
		SheetName:    cfg.Sheets.SheetName,
	})
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.String("llm_provider", cfg.LLM.Provider),
			zap.String("llm_model", cfg.LLM.Model),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		lg.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func newVisionModel(ctx context.Context, cfg config.LLMConfig) (service.VisionModel, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return llm.NewClient(llm.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		}), nil
	}
}

// openSpreadsheet 凭证文件只在启动时检查一次；存在但无法打开表格时返回错误
func openSpreadsheet(ctx context.Context, cfg config.SheetsConfig, lg *zap.Logger) (service.Spreadsheet, error) {
	if _, err := os.Stat(cfg.CredentialsFile); err != nil {
		lg.Warn("credentials file not found, google sheets integration disabled",
			zap.String("credentials_file", cfg.CredentialsFile))
		return service.Unconfigured(), nil
	}
	client, err := sheets.NewClient(ctx, sheets.Config{
		CredentialsFile: cfg.CredentialsFile,
		SpreadsheetID:   cfg.SpreadsheetID,
		SheetName:       cfg.SheetName,
	})
	if err != nil {
		return service.Unconfigured(), err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		return service.Unconfigured(), err
	}
	lg.Info("google sheets connected",
		zap.String("spreadsheet_id", cfg.SpreadsheetID),
		zap.String("sheet", cfg.SheetName))
	return service.Configured(client), nil
}
