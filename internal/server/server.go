package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/joeblew999/plat-map/internal/api"
	"github.com/joeblew999/plat-map/internal/api/stream"
	"github.com/joeblew999/plat-map/internal/behavior"
	"github.com/joeblew999/plat-map/internal/catalog"
	"github.com/joeblew999/plat-map/internal/fetch"
	"github.com/joeblew999/plat-map/internal/instance"
	"github.com/joeblew999/plat-map/internal/logger"
	"github.com/joeblew999/plat-map/internal/preset"
	"github.com/joeblew999/plat-map/internal/registry"
	"github.com/joeblew999/plat-map/internal/store"
	"github.com/joeblew999/plat-map/internal/templates"
)

// Layer state backends.
const (
	StoreMemory = "memory"
	StoreDuckDB = "duckdb"
)

// Config holds the server configuration.
type Config struct {
	Host    string
	Port    string
	DataDir string
	WebDir  string // Path to web/ directory for static files and template overrides
	Store   string // Layer state backend: memory or duckdb
	Preset  string // Optional YAML file of maps to create at startup

	// FetchTimeout bounds remote vector source loads.
	FetchTimeout time.Duration
	Logger       logger.Logger
}

// Server is the map HTTP server.
type Server struct {
	config   Config
	mux      *http.ServeMux
	humaAPI  huma.API
	log      logger.Logger
	registry *registry.Manager
	store    store.LayerStore
	closers  []func() error
	services *api.Services
}

// New wires the store, loader, registry and API.
func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}
	if cfg.Store == "" {
		cfg.Store = StoreMemory
	}
	log := cfg.Logger.With("component", "server")

	mux := http.NewServeMux()

	humaConfig := huma.DefaultConfig("plat-map API", "1.0.0")
	humaConfig.Info.Description = "Map instance manager: create maps bound to page targets, add layers, popups and behaviors, and stream their events."
	humaConfig.Servers = []*huma.Server{
		{URL: baseURL(cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, api.LinkTransformer())

	s := &Server{
		config:  cfg,
		mux:     mux,
		humaAPI: humago.New(mux, humaConfig),
		log:     log,
	}

	layerStore, err := s.openStore()
	if err != nil {
		return nil, err
	}
	s.store = layerStore

	renderer := templates.Default()
	if cfg.WebDir != "" {
		fragmentsDir := filepath.Join(cfg.WebDir, "templates", "fragments")
		if _, err := os.Stat(fragmentsDir); err == nil {
			if err := renderer.Override(fragmentsDir); err != nil {
				s.Close()
				return nil, fmt.Errorf("loading templates from %s: %w", fragmentsDir, err)
			}
			log.Info("loaded fragment templates", "dir", fragmentsDir)
		}
	}

	s.registry = registry.New(instance.Config{
		Builtins: behavior.Builtins(layerStore),
		Loader: fetch.New(fetch.Config{
			BaseURL: baseURL(cfg.Host, cfg.Port),
			Timeout: cfg.FetchTimeout,
		}),
		Logger: cfg.Logger,
	})
	extras := behavior.DefaultExtras(renderer)
	s.services = &api.Services{
		Registry: s.registry,
		Builder: &preset.Builder{
			Registry: s.registry,
			Extras:   extras,
			Renderer: renderer,
			Logger:   cfg.Logger,
		},
		Extras:   extras,
		Renderer: renderer,
		Catalog:  catalog.New(cfg.DataDir),
		Store:    layerStore,
	}

	s.routes(renderer)
	return s, nil
}

func (s *Server) openStore() (store.LayerStore, error) {
	switch s.config.Store {
	case StoreMemory:
		return store.NewMemory(), nil
	case StoreDuckDB:
		conn, err := store.Open(store.Config{DataDir: s.config.DataDir, DBName: "map"})
		if err != nil {
			return nil, fmt.Errorf("opening duckdb: %w", err)
		}
		d, err := store.NewDuckDB(context.Background(), conn)
		if err != nil {
			conn.Close()
			return nil, err
		}
		s.closers = append(s.closers, d.Close)
		return d, nil
	}
	return nil, fmt.Errorf("unknown store %q: want %s or %s", s.config.Store, StoreMemory, StoreDuckDB)
}

// ApplyPreset creates the maps declared in the configured preset file.
func (s *Server) ApplyPreset(ctx context.Context) error {
	if s.config.Preset == "" {
		return nil
	}
	f, err := preset.Load(s.config.Preset)
	if err != nil {
		return err
	}
	if err := f.Validate(s.services.Extras); err != nil {
		return fmt.Errorf("%s: %w", s.config.Preset, err)
	}
	return s.services.Builder.Apply(ctx, f)
}

// Serve accepts connections on ln with hs. The preset is applied in the
// background only after ln is bound, since preset layers may load their
// data from /sources/ on this server.
func (s *Server) Serve(hs *http.Server, ln net.Listener) error {
	if hs.Handler == nil {
		hs.Handler = s
	}
	go func() {
		if err := s.ApplyPreset(context.Background()); err != nil {
			s.log.Error("applying preset", "path", s.config.Preset, "error", err)
		}
	}()
	return hs.Serve(ln)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// OpenAPI returns the generated OpenAPI document.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Registry returns the map instance manager.
func (s *Server) Registry() *registry.Manager {
	return s.registry
}

// Close disposes every map and closes the layer state store.
func (s *Server) Close() error {
	if s.registry != nil {
		s.registry.Close()
	}
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil
	return first
}

func (s *Server) routes(renderer *templates.Renderer) {
	// Huma REST API routes (OpenAPI-documented JSON endpoints)
	api.RegisterRoutes(s.humaAPI, s.services)
	api.NewInfoHandler(s.config.DataDir, s.config.Store, s.services).RegisterRoutes(s.humaAPI)
	api.NewStateHandler(s.store).RegisterRoutes(s.humaAPI)

	// Datastar SSE routes
	stream.NewEventHandler(s.registry, renderer).RegisterRoutes(s.humaAPI)

	// Source files, loadable as geojson layer URLs
	s.mux.Handle(catalog.URLPrefix, http.StripPrefix(catalog.URLPrefix, s.handleSources(s.services.Catalog.Dir())))

	if s.config.WebDir != "" {
		staticDir := filepath.Join(s.config.WebDir, "static")
		s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	}

	s.mux.HandleFunc("/", s.handleRoot)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Add("Link", `</api/v1/maps>; rel="maps"`)
	w.Header().Add("Link", `</openapi.json>; rel="service-desc"`)
	json.NewEncoder(w).Encode(map[string]any{
		"service": "plat-map",
		"status":  "running",
		"maps":    s.registry.Len(),
	})
}

func (s *Server) handleSources(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Range, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range, Accept-Ranges")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		http.FileServer(http.Dir(dir)).ServeHTTP(w, r)
	})
}

func baseURL(host, port string) string {
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%s", host, port)
}
