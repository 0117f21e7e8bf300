package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"datapreview/internal/app"
	"datapreview/internal/config"
	"datapreview/internal/exporter"
	"datapreview/internal/logging"
	"datapreview/internal/server"
	"datapreview/internal/util"
	"datapreview/internal/watch"
)

type options struct {
	configPath string
	export     bool
	watch      bool
	host       string
	port       int
	dir        string
	open       bool
	dev        bool
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "datapreview",
		Short: "Preview tabular data, attachments and script output in the browser",
		Long: `datapreview serves a small local site for data.csv / data.xlsx, the
attachments listed in data.json and the result of execute.go, or exports
all pages as a static site to ./output.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, out, opts)
		},
	}
	cmd.SetOut(out)

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", config.DefaultConfigFile, "Config file (optional)")
	flags.BoolVar(&opts.export, "export", false, "Export static site to the output directory and exit")
	flags.BoolVar(&opts.watch, "watch", false, "With --export, re-export when input files change")
	flags.StringVar(&opts.host, "host", "", "Listen host (default from config: 0.0.0.0)")
	flags.IntVar(&opts.port, "port", 0, "Listen port (default from config: 5000)")
	flags.StringVar(&opts.dir, "dir", "", "Directory holding the input files")
	flags.BoolVar(&opts.open, "open", false, "Open the browser after start")
	flags.BoolVar(&opts.dev, "dev", false, "Development mode (verbose logs)")
	return cmd
}

func run(cmd *cobra.Command, out io.Writer, opts *options) error {
	cfg, info, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg, opts)

	logger, err := logging.New(cfg.Server.DevMode)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	if info.FileFound {
		logger.Info("config loaded", zap.String("path", info.Path))
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 启动时尽力生成 CSV
	if err := a.Tables.EnsureCSV(ctx); err != nil {
		logger.Warn("convert xlsx to csv failed", zap.Error(err))
	}

	if opts.export {
		if err := exportOnce(ctx, out, a); err != nil {
			return err
		}
		if !opts.watch {
			return nil
		}
		return watchAndExport(ctx, out, a)
	}
	return serve(ctx, out, a, portSource(cmd, info))
}

func applyFlags(cmd *cobra.Command, cfg *config.AppConfig, opts *options) {
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Server.Host = opts.host
	}
	if flags.Changed("port") {
		cfg.Server.Port = opts.port
	}
	if flags.Changed("dir") {
		cfg.Data.Dir = opts.dir
	}
	if opts.open {
		cfg.Server.OpenBrowser = true
	}
	if opts.dev {
		cfg.Server.DevMode = true
	}
}

// portSource 端口取值来源：flag、config 或 default
func portSource(cmd *cobra.Command, info config.LoadConfigInfo) string {
	switch {
	case cmd.Flags().Changed("port"):
		return "flag"
	case info.PortSpecified:
		return "config"
	default:
		return "default"
	}
}

func exportOnce(ctx context.Context, out io.Writer, a *app.App) error {
	res, err := a.Exporter.Export(ctx, exporter.Options{
		Progress: func(ev exporter.ProgressEvent) {
			a.Logger.Debug("export progress", zap.Int("percent", ev.Percent), zap.String("stage", string(ev.Stage)))
		},
	})
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	fmt.Fprintf(out, "Exported to: %s\n", res.OutputDir)
	return nil
}

func watchAndExport(ctx context.Context, out io.Writer, a *app.App) error {
	cfg := a.Config
	w := watch.New(cfg.Data.Dir, []string{cfg.Data.CSV, cfg.Data.XLSX, cfg.Data.Manifest}, a.Logger)
	fmt.Fprintln(out, "Watching for changes, press Ctrl+C to stop...")
	return w.Run(ctx, func() {
		if err := exportOnce(ctx, out, a); err != nil {
			a.Logger.Error("re-export failed", zap.Error(err))
		}
	})
}

func serve(ctx context.Context, out io.Writer, a *app.App, source string) error {
	cfg := a.Config
	url := util.LocalURL(cfg.Server.Host, cfg.Server.Port)

	fmt.Fprintln(out, "==========================================")
	fmt.Fprintln(out, "  datapreview")
	fmt.Fprintln(out, "==========================================")
	fmt.Fprintf(out, "Serving %s on %s (port from %s)\n", cfg.Data.Dir, url, source)
	a.Logger.Info("server config", zap.Int("port", cfg.Server.Port), zap.String("port_source", source))

	if cfg.Server.OpenBrowser {
		if err := util.OpenBrowser(url); err != nil {
			fmt.Fprintf(out, "Could not open a browser, visit %s manually\n", url)
		}
	}

	srv := server.NewServer(a)
	if err := srv.Run(ctx, cfg.Addr()); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	a.Logger.Info("server stopped")
	return nil
}
