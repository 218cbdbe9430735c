// Package catalog lists the data files served under /sources/ so they can be
// used as geojson layer URLs.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joeblew999/plat-map/internal/layer"
)

// URLPrefix is the path the server mounts the sources directory on.
const URLPrefix = "/sources/"

// Source is one servable data file.
type Source struct {
	Name      string     `json:"name" doc:"File name" example:"fields.geojson"`
	Size      string     `json:"size" doc:"Human-readable file size" example:"1.2 MB"`
	FileType  string     `json:"fileType" doc:"File type" example:"GeoJSON"`
	URL       string     `json:"url" doc:"URL to use as a layer url" example:"/sources/fields.geojson"`
	LayerType layer.Type `json:"layerType" doc:"Layer type that can load this file" example:"geojson"`
}

var extToType = map[string]string{
	".geojson": "GeoJSON",
	".json":    "GeoJSON",
}

// Catalog reads the sources directory.
type Catalog struct {
	dir string
}

// New creates a catalog over dataDir/sources.
func New(dataDir string) *Catalog {
	return &Catalog{dir: filepath.Join(dataDir, "sources")}
}

// Dir returns the sources directory.
func (c *Catalog) Dir() string { return c.dir }

// List returns the loadable files sorted by name. A missing directory is empty.
func (c *Catalog) List() ([]Source, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Source{}, nil
		}
		return nil, err
	}

	files := []Source{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fileType, ok := extToType[strings.ToLower(filepath.Ext(entry.Name()))]
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, Source{
			Name:      entry.Name(),
			Size:      formatSize(info.Size()),
			FileType:  fileType,
			URL:       URLPrefix + entry.Name(),
			LayerType: layer.TypeGeoJSON,
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
