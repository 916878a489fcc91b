package theme

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"shotframe/model"
)

const (
	themesDir     = "themes"
	platformsFile = "platforms.json"
)

// DefaultThemeFiles are loaded by every Loader, in this order.
var DefaultThemeFiles = []string{"default.json", "minimal.json", "halloween.json", "red-hat-summit.json"}

// CategoryGroup is one category of platforms, in catalog order.
type CategoryGroup struct {
	Category  string           `json:"category"`
	Platforms []model.Platform `json:"platforms"`
}

// Loader holds the theme and platform catalog. It is read-only after NewLoader returns.
type Loader struct {
	fsys       fs.FS
	themeFiles []string

	themes        map[string]model.Theme
	themesList    []string
	platforms     map[string]model.Platform
	platformsList []string
}

type LoaderOption func(*Loader)

// WithThemeFiles loads additional theme files from the themes directory after the defaults.
func WithThemeFiles(names ...string) LoaderOption {
	return func(l *Loader) {
		l.themeFiles = append(l.themeFiles, names...)
	}
}

// NewLoader reads the catalog from fsys. Files that cannot be read or parsed are
// logged and left out.
func NewLoader(fsys fs.FS, opts ...LoaderOption) *Loader {
	l := &Loader{
		fsys:       fsys,
		themeFiles: append([]string(nil), DefaultThemeFiles...),
		themes:     make(map[string]model.Theme),
		platforms:  make(map[string]model.Platform),
	}
	for _, opt := range opts {
		opt(l)
	}

	l.loadThemes()
	l.loadPlatforms()

	log.Printf("[theme] loaded %d themes (%s), %d platforms",
		len(l.themesList), strings.Join(l.themesList, ", "), len(l.platformsList))
	return l
}

func (l *Loader) loadThemes() {
	for _, file := range l.themeFiles {
		t, err := l.readTheme(file)
		if err != nil {
			log.Printf("[theme] failed to load theme %s: %v", file, err)
			continue
		}
		if _, exists := l.themes[t.ID]; !exists {
			l.themesList = append(l.themesList, t.ID)
		}
		l.themes[t.ID] = t
	}
}

func (l *Loader) readTheme(file string) (model.Theme, error) {
	var t model.Theme
	if err := decodeFile(l.fsys, path.Join(themesDir, file), &t); err != nil {
		return t, err
	}
	if t.ID == "" {
		return t, fmt.Errorf("%w: theme has no id", model.ErrAssetLoad)
	}
	return t, nil
}

func (l *Loader) loadPlatforms() {
	var cfg model.PlatformConfig
	if err := decodeFile(l.fsys, platformsFile, &cfg); err != nil {
		log.Printf("[theme] failed to load platforms: %v", err)
		return
	}

	for _, p := range cfg.Platforms {
		if p.ID == "" {
			log.Printf("[theme] skipping platform without id (%q)", p.Name)
			continue
		}
		if _, exists := l.platforms[p.ID]; !exists {
			l.platformsList = append(l.platformsList, p.ID)
		}
		l.platforms[p.ID] = p
	}
}

func decodeFile(fsys fs.FS, name string, v any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", model.ErrAssetLoad, name, err)
	}

	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, v)
	default:
		err = json.Unmarshal(data, v)
	}
	if err != nil {
		return fmt.Errorf("%w: parse %s: %v", model.ErrAssetLoad, name, err)
	}
	return nil
}

// Theme returns a theme by id.
func (l *Loader) Theme(id string) (model.Theme, bool) {
	t, ok := l.themes[id]
	return t, ok
}

// Themes returns all themes in load order.
func (l *Loader) Themes() []model.Theme {
	out := make([]model.Theme, 0, len(l.themesList))
	for _, id := range l.themesList {
		out = append(out, l.themes[id])
	}
	return out
}

// Platform returns a platform by id.
func (l *Loader) Platform(id string) (model.Platform, bool) {
	p, ok := l.platforms[id]
	return p, ok
}

// Platforms returns all platforms in catalog order.
func (l *Loader) Platforms() []model.Platform {
	out := make([]model.Platform, 0, len(l.platformsList))
	for _, id := range l.platformsList {
		out = append(out, l.platforms[id])
	}
	return out
}

// PlatformsByCategory groups platforms by category. Categories appear in the order
// they are first seen.
func (l *Loader) PlatformsByCategory() []CategoryGroup {
	var groups []CategoryGroup
	index := make(map[string]int)

	for _, p := range l.Platforms() {
		i, ok := index[p.Category]
		if !ok {
			i = len(groups)
			index[p.Category] = i
			groups = append(groups, CategoryGroup{Category: p.Category})
		}
		groups[i].Platforms = append(groups[i].Platforms, p)
	}
	return groups
}
