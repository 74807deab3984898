// Package catalog holds the icon asset structure and the persisted embedding
// index used for vector-similarity icon lookup.
package catalog

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/globonews/newsmapper/internal/pipeline"
)

// styleFolder is one asset style directory ("3D", "Color") inside an icon
// entry of the assets structure file.
type styleFolder struct {
	Files []string `json:"files"`
}

// iconEntry mirrors one icon's layout. Icons with skin-tone variants nest the
// style folders under a "Default" subfolder; flat icons carry them top-level.
type iconEntry struct {
	Default map[string]styleFolder `json:"Default"`
	ThreeD  styleFolder            `json:"3D"`
	Color   styleFolder            `json:"Color"`
}

// assetSearchOrder is the strict priority of styles and file suffixes used
// when picking the representative asset for an icon.
var assetSearchOrder = []struct {
	folder string
	suffix string
}{
	{"3D", "_3d.png"},
	{"3D", "_3d.svg"},
	{"Color", "_color.png"},
	{"Color", "_color.svg"},
}

// Assets is the loaded icon catalog: every icon name and its asset layout.
type Assets struct {
	entries     map[string]iconEntry
	names       []string
	defaultIcon string
	baseURL     string
}

// LoadAssets reads the assets structure file. An empty catalog, or a catalog
// missing the default icon, is a startup-time fatal error.
func LoadAssets(path, baseURL, defaultIcon string) (*Assets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &pipeline.ConfigurationError{Reason: fmt.Sprintf("assets file %q", path), Err: err}
	}

	entries := make(map[string]iconEntry)
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &pipeline.ConfigurationError{Reason: fmt.Sprintf("assets file %q", path), Err: err}
	}
	if len(entries) == 0 {
		return nil, &pipeline.ConfigurationError{Reason: fmt.Sprintf("assets file %q defines no icons", path)}
	}

	a := &Assets{
		entries:     entries,
		defaultIcon: defaultIcon,
		baseURL:     strings.TrimRight(baseURL, "/"),
	}
	for name := range entries {
		a.names = append(a.names, name)
	}
	sort.Strings(a.names)

	if _, ok := a.canonicalName(defaultIcon); !ok {
		return nil, &pipeline.ConfigurationError{
			Reason: fmt.Sprintf("default icon %q is not present in the catalog", defaultIcon),
		}
	}
	return a, nil
}

// Names returns every icon name in the catalog, sorted.
func (a *Assets) Names() []string {
	out := make([]string, len(a.names))
	copy(out, a.names)
	return out
}

// DefaultIcon returns the configured fallback icon id.
func (a *Assets) DefaultIcon() string {
	return a.defaultIcon
}

// canonicalName resolves an icon id case-insensitively to the exact catalog
// folder name.
func (a *Assets) canonicalName(id string) (string, bool) {
	if id == "" {
		return "", false
	}
	for _, name := range a.names {
		if strings.EqualFold(name, id) {
			return name, true
		}
	}
	return "", false
}

// IconURL resolves an icon id to its canonical asset URL. Resolution is an
// explicit two-step lookup: the requested icon first, then the default icon,
// whose presence is guaranteed by the LoadAssets precondition.
func (a *Assets) IconURL(iconID string) string {
	if u, ok := a.lookupAssetURL(iconID); ok {
		return u
	}
	u, _ := a.lookupAssetURL(a.defaultIcon)
	return u
}

// lookupAssetURL returns the asset URL for one icon id, or false when the id
// is unknown or no file matches the style priority order.
func (a *Assets) lookupAssetURL(iconID string) (string, bool) {
	name, ok := a.canonicalName(iconID)
	if !ok {
		return "", false
	}
	entry := a.entries[name]

	for _, order := range assetSearchOrder {
		// Prefer the "Default" variant subfolder when present.
		if folder, ok := entry.Default[order.folder]; ok {
			if file, found := firstWithSuffix(folder.Files, order.suffix); found {
				return a.assetURL(name, true, order.folder, file), true
			}
		}
		if file, found := firstWithSuffix(entry.style(order.folder).Files, order.suffix); found {
			return a.assetURL(name, len(entry.Default) > 0, order.folder, file), true
		}
	}
	return "", false
}

func (e iconEntry) style(folder string) styleFolder {
	switch folder {
	case "3D":
		return e.ThreeD
	case "Color":
		return e.Color
	default:
		return styleFolder{}
	}
}

func firstWithSuffix(files []string, suffix string) (string, bool) {
	for _, f := range files {
		if strings.HasSuffix(f, suffix) {
			return f, true
		}
	}
	return "", false
}

func (a *Assets) assetURL(name string, hasDefault bool, folder, file string) string {
	segments := []string{url.PathEscape(name)}
	if hasDefault {
		segments = append(segments, "Default")
	}
	segments = append(segments, url.PathEscape(folder), url.PathEscape(file))
	return a.baseURL + "/" + strings.Join(segments, "/")
}
