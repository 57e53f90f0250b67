package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sorlens/internal/server"
	"sorlens/internal/util"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and upload page",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// 命令行参数覆盖配置；config.toml 显式配置的端口优先
		if port, _ := cmd.Flags().GetInt("port"); port > 0 && !cfgInfo.PortSpecified {
			cfg.Server.Port = port
		}
		if dev, _ := cmd.Flags().GetBool("dev"); dev {
			cfg.Server.DevMode = true
		}

		fmt.Println("==========================================")
		fmt.Println("  Sorlens - Анализ результатов СОР и СОЧ")
		fmt.Println("==========================================")

		srv, err := server.NewServer(cfg)
		if err != nil {
			return err
		}
		defer srv.Close() //nolint:errcheck

		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
		httpSrv := &http.Server{
			Addr:              addr,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			zap.L().Info("server listening", zap.String("addr", addr))
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		if open, _ := cmd.Flags().GetBool("open"); open && !cfg.Server.DevMode {
			fmt.Printf("正在打开浏览器: %s\n", url)
			if err := util.OpenBrowserWithFallback(url); err != nil {
				fmt.Printf("无法自动打开浏览器，请手动访问: %s\n", url)
			}
		} else {
			fmt.Printf("请访问 %s\n", url)
		}
		fmt.Println("\n按 Ctrl+C 停止服务...")

		select {
		case err := <-errCh:
			if err != nil {
				return eris.Wrap(err, "server failed")
			}
			return nil
		case <-ctx.Done():
		}

		fmt.Println("\n正在关闭服务...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return eris.Wrap(httpSrv.Shutdown(shutdownCtx), "server shutdown")
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (used only when config.toml does not set server.port)")
	serveCmd.Flags().Bool("dev", false, "development mode (gin debug output)")
	serveCmd.Flags().Bool("open", true, "open the upload page in a browser")
}
