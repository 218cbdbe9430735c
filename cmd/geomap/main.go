package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-map/internal/behavior"
	"github.com/joeblew999/plat-map/internal/logger"
	"github.com/joeblew999/plat-map/internal/preset"
	"github.com/joeblew999/plat-map/internal/server"
	"github.com/joeblew999/plat-map/internal/templates"
)

// Options defines all CLI flags and env vars for the map server.
// Flags: --host, --port, --data-dir, --web-dir, --store, --preset, ...
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_DATA_DIR, SERVICE_STORE, ...
type Options struct {
	Host         string `doc:"Host to bind to" default:"0.0.0.0"`
	Port         int    `doc:"Port to listen on" short:"p" default:"8086"`
	DataDir      string `doc:"Directory for source files and layer state" default:".data"`
	WebDir       string `doc:"Path to web/ directory" default:"web"`
	Store        string `doc:"Layer state backend (memory or duckdb)" default:"memory"`
	Preset       string `doc:"YAML file of maps to create at startup"`
	LogLevel     string `doc:"Log level (debug, info, warn, error)" default:"info"`
	LogJSON      bool   `doc:"Log as JSON"`
	FetchTimeout int    `doc:"Timeout in seconds for remote vector source loads" default:"30"`
}

func newServer(opts *Options, log logger.Logger) (*server.Server, error) {
	return server.New(server.Config{
		Host:         opts.Host,
		Port:         fmt.Sprintf("%d", opts.Port),
		DataDir:      opts.DataDir,
		WebDir:       opts.WebDir,
		Store:        opts.Store,
		Preset:       opts.Preset,
		FetchTimeout: time.Duration(opts.FetchTimeout) * time.Second,
		Logger:       log,
	})
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		log := logger.Setup(opts.LogLevel, opts.LogJSON)
		srv, err := newServer(opts, log)
		if err != nil {
			log.Error("server setup failed", "error", err)
			os.Exit(1)
		}

		httpServer := &http.Server{
			Addr:    fmt.Sprintf("%s:%d", opts.Host, opts.Port),
			Handler: srv,
		}

		hooks.OnStart(func() {
			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)

			fmt.Println()
			fmt.Printf("plat-map API server starting...\n")
			fmt.Printf("  Server:  %s\n", baseURL)
			fmt.Printf("  Data:    %s\n", opts.DataDir)
			fmt.Printf("  Store:   %s\n", opts.Store)
			fmt.Println()
			fmt.Printf("  Maps:    %s/api/v1/maps\n", baseURL)
			fmt.Printf("  Docs:    %s/docs\n", baseURL)
			fmt.Printf("  OpenAPI: %s/openapi.json\n", baseURL)
			fmt.Println()

			ln, err := net.Listen("tcp", httpServer.Addr)
			if err != nil {
				log.Error("listen failed", "addr", httpServer.Addr, "error", err)
				os.Exit(1)
			}
			if err := srv.Serve(httpServer, ln); err != nil && err != http.ErrServerClosed {
				log.Error("server error", "error", err)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(ctx); err != nil {
				log.Error("shutdown", "error", err)
			}
			if err := srv.Close(); err != nil {
				log.Error("closing server", "error", err)
			}
		})
	})

	cli.Root().Use = "geomap"
	cli.Root().Short = "Map instance manager with layers, popups and behaviors"
	cli.Root().Version = "0.1.0"

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			srv, err := newServer(opts, logger.Discard())
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
				os.Exit(1)
			}
			defer srv.Close()
			spec := srv.OpenAPI()

			useYAML, _ := cmd.Flags().GetBool("yaml")

			var output []byte
			if useYAML {
				output, err = yaml.Marshal(spec)
			} else {
				output, err = json.MarshalIndent(spec, "", "  ")
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error marshaling spec: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(output))
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	// maps subcommand: work with preset files offline
	mapsCmd := &cobra.Command{
		Use:   "maps",
		Short: "Work with map preset files",
	}
	mapsCmd.AddCommand(&cobra.Command{
		Use:   "validate <file>",
		Short: "Parse a preset file and build its maps without serving",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := preset.Load(args[0])
			if err != nil {
				return err
			}
			if err := preset.Check(cmd.Context(), f, behavior.DefaultExtras(templates.Default())); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			fmt.Printf("%s: %d maps ok\n", args[0], len(f.Maps))
			return nil
		},
	})
	cli.Root().AddCommand(mapsCmd)

	cli.Run()
}
