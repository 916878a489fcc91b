package main

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"shotframe/api"
	"shotframe/assets"
	"shotframe/config"
	"shotframe/imageproc"
	"shotframe/model"
	"shotframe/palette"
	"shotframe/scheduler"
	"shotframe/screenshot"
	"shotframe/storage"
	"shotframe/theme"
)

var (
	dataDir    string
	listen     string
	listenPort int
	assetsDir  string
	display    int
	appVersion = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   "shotframe",
	Short: "shotframe – themed screenshots for store listings and docs",
	Long:  "Shotframe captures a display region at platform sizes and frames it with a theme: background, shadow, rounded border and padding.",
	Run:   run,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long:  "Manage shotframe configuration files.",
}

var configGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a default configuration file",
	Long:  "Generate a default shotframe.config file in the specified data directory (or current directory if not specified).",
	Run:   runConfigGenerate,
}

func init() {
	wd, _ := os.Getwd()
	rootCmd.Version = appVersion
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", wd, "Data directory (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&assetsDir, "assets-dir", "", "Directory with themes/ and platforms.json (default: bundled)")
	rootCmd.PersistentFlags().IntVar(&display, "display", 0, "Display index to capture")
	rootCmd.Flags().StringVar(&listen, "listen", "all", "IP address to listen on (default: all)")
	rootCmd.Flags().IntVar(&listenPort, "listen-port", 8080, "Port to listen on (default: 8080)")

	configCmd.AddCommand(configGenerateCmd)
	rootCmd.AddCommand(configCmd)
	addToolCommands(rootCmd)
}

// loadConfig reads the config and applies explicitly set flags on top of it.
func loadConfig(cmd *cobra.Command) config.Config {
	cfg, err := config.Load(dataDir)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = dataDir
	} else if cfg.DataDir != "" && cfg.DataDir != "." {
		dataDir = cfg.DataDir
	}
	if cmd.Flags().Changed("assets-dir") {
		cfg.AssetsDir = assetsDir
	}
	if cmd.Flags().Changed("display") {
		cfg.Display = display
	}

	dataDirAbs, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		log.Fatalf("resolve data dir: %v", err)
	}
	cfg.DataDir = dataDirAbs
	return cfg
}

func assetsFS(cfg config.Config) fs.FS {
	if cfg.AssetsDir != "" {
		return os.DirFS(cfg.AssetsDir)
	}
	return assets.FS
}

func newTool(cfg config.Config) *screenshot.Tool {
	fsys := assetsFS(cfg)
	loader := theme.NewLoader(fsys, theme.WithThemeFiles(cfg.ThemeFiles...))
	return screenshot.NewTool(loader, screenshot.WithProcessorOptions(imageproc.WithAssets(fsys)))
}

func defaultOptions(cfg config.Config) model.ScreenshotOptions {
	return model.ScreenshotOptions{
		PlatformID: cfg.DefaultPlatform,
		ThemeID:    cfg.DefaultTheme,
		Appearance: model.AppearanceLight,
		Format:     cfg.DefaultFormat,
	}
}

// attachDisplay initializes tool with the configured display.
func attachDisplay(tool *screenshot.Tool, index int) error {
	host, err := screenshot.NewDisplayHost(index)
	if err != nil {
		return err
	}
	tool.Init(host)
	return nil
}

type saveCaptureFunc func(ctx context.Context, opts model.ScreenshotOptions, progress screenshot.ProgressFunc, scheduleID string) (*model.CaptureRecord, error)

// newCaptureFunc captures with tool and stores the result. Captures are
// serialized because they share one host window.
func newCaptureFunc(tool *screenshot.Tool, store *storage.Store) saveCaptureFunc {
	var mu sync.Mutex
	return func(ctx context.Context, opts model.ScreenshotOptions, progress screenshot.ProgressFunc, scheduleID string) (*model.CaptureRecord, error) {
		mu.Lock()
		defer mu.Unlock()

		filename, err := tool.GenerateFilename(opts)
		if err != nil {
			return nil, err
		}
		res, err := tool.Capture(ctx, opts, progress)
		if err != nil {
			return nil, err
		}

		rec := &model.CaptureRecord{
			ID:        uuid.NewString(),
			Timestamp: time.Now().UTC(),
			Filename:  filename,
			Options:   opts,
			Width:     res.Width,
			Height:    res.Height,
			Schedule:  scheduleID,
		}
		if err := store.SaveCapture(rec, res.Data); err != nil {
			return nil, fmt.Errorf("save capture: %w", err)
		}
		return rec, nil
	}
}

func run(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)

	if cmd.Flags().Changed("listen") || cmd.Flags().Changed("listen-port") {
		if listen != "" && listen != "all" {
			cfg.ListenAddr = fmt.Sprintf("%s:%d", listen, listenPort)
		} else {
			cfg.ListenAddr = fmt.Sprintf(":%d", listenPort)
		}
	}

	store := storage.New(cfg.DataDir)
	if err := store.EnsureDirs(); err != nil {
		log.Fatalf("ensure data dir: %v", err)
	}

	if cfg.Schedules == nil {
		cfg.Schedules = []model.Schedule{}
	}
	if cfg.LastRun == nil {
		cfg.LastRun = make(map[string]time.Time)
	}

	tool := newTool(cfg)
	if err := attachDisplay(tool, cfg.Display); err != nil {
		// The catalog and render endpoints still work without a display.
		log.Printf("[main] display unavailable, captures disabled: %v", err)
	}

	colors, err := palette.Defaults()
	if err != nil {
		log.Fatalf("register colors: %v", err)
	}

	captureAndSave := newCaptureFunc(tool, store)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(func(ctx context.Context, sc model.Schedule) (*model.CaptureRecord, error) {
		return captureAndSave(ctx, sc.Options, nil, sc.ID)
	}, cfg.Schedules, cfg.LastRun)

	// Save config when schedules or lastRun change
	saveConfig := func() {
		cfg.Schedules = sched.Schedules()
		cfg.LastRun = sched.LastRun()
		if err := config.Save(cfg); err != nil {
			log.Printf("failed to save config: %v", err)
		}
	}
	sched.SetOnUpdate(saveConfig)

	mux := http.NewServeMux()

	manualCapture := func(ctx context.Context, opts model.ScreenshotOptions, progress screenshot.ProgressFunc) (*model.CaptureRecord, error) {
		return captureAndSave(ctx, opts, progress, "")
	}
	apiServer := api.NewServer(store, tool, manualCapture, sched, colors, defaultOptions(cfg))
	sched.SetOnComplete(apiServer.BroadcastCaptureComplete)

	apiServer.Register(mux)
	theme.NewHandler(tool.Loader()).Register(mux)
	sched.Start(ctx)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: mux,
	}

	printListeningAddresses(cfg.ListenAddr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	apiServer.Shutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}

func runConfigGenerate(cmd *cobra.Command, args []string) {
	dataDirAbs, err := filepath.Abs(dataDir)
	if err != nil {
		log.Fatalf("resolve data dir: %v", err)
	}

	cfg := config.Default()
	cfg.DataDir = dataDirAbs

	cfgPath := filepath.Join(dataDirAbs, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		log.Fatalf("config file already exists: %s", cfgPath)
	}

	if err := config.Save(cfg); err != nil {
		log.Fatalf("failed to save config: %v", err)
	}

	fmt.Printf("Generated default config file: %s\n", cfgPath)
}

func printListeningAddresses(addr string) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		log.Printf("listening on http://%s", addr)
		return
	}

	if host == "" || host == "0.0.0.0" || host == "::" {
		addrs, err := net.InterfaceAddrs()
		if err == nil {
			log.Println("listening on:")
			for _, a := range addrs {
				if ipnet, ok := a.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
					if ipnet.IP.To4() != nil {
						log.Printf("  http://%s:%s", ipnet.IP.String(), port)
					}
				}
			}
			log.Printf("  http://localhost:%s", port)
		} else {
			log.Printf("listening on http://0.0.0.0:%s", port)
		}
	} else {
		log.Printf("listening on http://%s:%s", host, port)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
