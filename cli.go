package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"shotframe/config"
	"shotframe/model"
	"shotframe/storage"
	"shotframe/tray"
)

var (
	optPlatform   string
	optTheme      string
	optAppearance string
	optFormat     string
	optOutput     string
	trayState     string
	trayColor     string
	trayGOOS      string
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture the display with a theme applied",
	Long:  "Capture a region of the display at the platform size, frame it with a theme and save it to the capture history (or to --output).",
	Args:  cobra.NoArgs,
	Run:   runCapture,
}

var renderCmd = &cobra.Command{
	Use:   "render <image>",
	Short: "Apply a theme to an existing png, jpeg or webp image",
	Args:  cobra.ExactArgs(1),
	Run:   runRender,
}

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available themes",
	Args:  cobra.NoArgs,
	Run:   runThemes,
}

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List platform sizes by category",
	Args:  cobra.NoArgs,
	Run:   runPlatforms,
}

var validateCmd = &cobra.Command{
	Use:   "validate [platform]",
	Short: "Check that a platform size fits the display",
	Args:  cobra.MaximumNArgs(1),
	Run:   runValidate,
}

var trayIconCmd = &cobra.Command{
	Use:   "tray-icon",
	Short: "Print the tray icon asset for a state",
	Long:  "Print the tray icon file for a state under <assets-dir>/tray. Requires --assets-dir; no tray icons are bundled.",
	Args:  cobra.NoArgs,
	Run:   runTrayIcon,
}

func addToolCommands(root *cobra.Command) {
	for _, c := range []*cobra.Command{captureCmd, renderCmd} {
		c.Flags().StringVar(&optTheme, "theme", "", "Theme id (default: from config)")
		c.Flags().StringVar(&optFormat, "format", "", "Output format: png, jpeg, webp, avif (default: from config)")
		c.Flags().StringVarP(&optOutput, "output", "o", "", "Output file")
	}
	captureCmd.Flags().StringVar(&optPlatform, "platform", "", "Platform id (default: from config)")
	captureCmd.Flags().StringVar(&optAppearance, "appearance", string(model.AppearanceLight), "light or dark")

	trayIconCmd.Flags().StringVar(&trayState, "state", tray.StateDefault, "Icon state: default, empty, error, step0..step3")
	trayIconCmd.Flags().StringVar(&trayColor, "color", "", "Force light or dark icons")
	trayIconCmd.Flags().StringVar(&trayGOOS, "os", "", "Target OS (default: current)")

	root.AddCommand(captureCmd, renderCmd, themesCmd, platformsCmd, validateCmd, trayIconCmd)
}

// resolveOptions fills unset flags from the config defaults.
func resolveOptions(cfg config.Config) model.ScreenshotOptions {
	opts := defaultOptions(cfg)
	if optPlatform != "" {
		opts.PlatformID = optPlatform
	}
	if optTheme != "" {
		opts.ThemeID = optTheme
	}
	if optAppearance != "" {
		opts.Appearance = model.Appearance(optAppearance)
	}
	if optFormat != "" {
		f, err := model.ParseFormat(optFormat)
		if err != nil {
			log.Fatalf("%v", err)
		}
		opts.Format = f
	}
	return opts
}

func runCapture(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)
	opts := resolveOptions(cfg)
	if err := opts.Validate(); err != nil {
		log.Fatalf("invalid options: %v", err)
	}

	tool := newTool(cfg)
	if err := attachDisplay(tool, cfg.Display); err != nil {
		log.Fatalf("display: %v", err)
	}

	if v, err := tool.ValidatePlatformSize(opts.PlatformID); err == nil && v.Warning != "" {
		log.Printf("[main] %s", v.Warning)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	progress := func(stage string, message string) {
		log.Printf("[%s] %s", stage, message)
	}

	if optOutput != "" {
		res, err := tool.Capture(ctx, opts, progress)
		if err != nil {
			log.Fatalf("capture: %v", err)
		}
		writeOutput(optOutput, res)
		return
	}

	store := storage.New(cfg.DataDir)
	if err := store.EnsureDirs(); err != nil {
		log.Fatalf("ensure data dir: %v", err)
	}
	rec, err := newCaptureFunc(tool, store)(ctx, opts, progress, "")
	if err != nil {
		log.Fatalf("capture: %v", err)
	}
	fmt.Printf("Saved %s (%dx%d, %d bytes)\n", filepath.Join(cfg.DataDir, filepath.FromSlash(rec.Path)), rec.Width, rec.Height, rec.Bytes)
}

func runRender(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)
	opts := resolveOptions(cfg)

	data, err := os.ReadFile(args[0])
	if err != nil {
		log.Fatalf("read input: %v", err)
	}

	res, err := newTool(cfg).Render(data, opts.ThemeID, opts.Format)
	if err != nil {
		log.Fatalf("render: %v", err)
	}

	out := optOutput
	if out == "" {
		out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + "-" + opts.ThemeID + "." + res.Format.Extension()
	}
	writeOutput(out, res)
}

func writeOutput(path string, res *model.ScreenshotResult) {
	if err := os.WriteFile(path, res.Data, 0o644); err != nil {
		log.Fatalf("write %s: %v", path, err)
	}
	fmt.Printf("Wrote %s (%dx%d, %d bytes)\n", path, res.Width, res.Height, len(res.Data))
}

func runThemes(cmd *cobra.Command, args []string) {
	tool := newTool(loadConfig(cmd))

	t := table.NewWriter()
	t.SetStyle(table.StyleColoredBright)
	t.AppendHeader(table.Row{"ID", "Name", "Background", "Radius", "Padding"})
	for _, th := range tool.Themes() {
		p := th.Padding
		t.AppendRow(table.Row{
			th.ID,
			th.Name,
			th.Background.Type,
			th.Window.Border.Radius,
			fmt.Sprintf("%d %d %d %d", p.Top, p.Right, p.Bottom, p.Left),
		})
	}
	fmt.Println(t.Render())
}

func runPlatforms(cmd *cobra.Command, args []string) {
	tool := newTool(loadConfig(cmd))

	t := table.NewWriter()
	t.SetStyle(table.StyleColoredBright)
	t.AppendHeader(table.Row{"Category", "ID", "Name", "Size"})
	for _, group := range tool.PlatformsByCategory() {
		for _, p := range group.Platforms {
			size := "any"
			if w, h, ok := p.FixedSize(); ok {
				size = fmt.Sprintf("%dx%d", w, h)
			}
			t.AppendRow(table.Row{group.Category, p.ID, p.Name, size})
		}
		t.AppendSeparator()
	}
	fmt.Println(t.Render())
}

func runValidate(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)
	platformID := cfg.DefaultPlatform
	if len(args) == 1 {
		platformID = args[0]
	}

	tool := newTool(cfg)
	if err := attachDisplay(tool, cfg.Display); err != nil {
		log.Fatalf("display: %v", err)
	}

	v, err := tool.ValidatePlatformSize(platformID)
	if err != nil {
		log.Fatalf("validate: %v", err)
	}
	if !v.Valid {
		fmt.Println(v.Warning)
		os.Exit(1)
	}
	fmt.Printf("%s fits display %d\n", platformID, cfg.Display)
}

func runTrayIcon(cmd *cobra.Command, args []string) {
	path, err := trayIconPath(loadConfig(cmd), trayState, trayColor, trayGOOS)
	if err != nil {
		log.Fatalf("tray-icon: %v", err)
	}
	fmt.Println(path)
}

// trayIconPath resolves the icon under <assets-dir>/tray. Tray icons are not
// bundled, so an assets dir is required.
func trayIconPath(cfg config.Config, state, color, goos string) (string, error) {
	if cfg.AssetsDir == "" {
		return "", errors.New("no tray icons bundled: set --assets-dir to a directory with a tray/ folder")
	}
	root, err := filepath.Abs(cfg.AssetsDir)
	if err != nil {
		return "", fmt.Errorf("resolve assets dir: %w", err)
	}

	sel := tray.NewSelector(filepath.Join(root, "tray"))
	if goos != "" {
		sel.GOOS = goos
	}
	sel.SetColor(color)
	return sel.IconPath(state), nil
}
