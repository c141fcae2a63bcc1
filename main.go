package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

var rootCmd = &cobra.Command{
	Use:   "directory-service",
	Short: "Serve the therapist directory",
	Long: `Serves the therapist directory as embeddable HTML pages.

The column schema and the record list are loaded once at startup, from the
data API or from a SQL mirror (SOURCE=sql). Configuration is read from the
environment and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config = loadConfig()
		var err error
		logger, err = newLogger(config.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

// checkCmd loads both resources once and reports what it found.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Load the columns and records and print their counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := buildService()
		if err != nil {
			return err
		}
		defer service.Close()

		if err := service.Load(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load directory: %w", err)
		}
		data, _ := service.dataset()
		fmt.Fprintf(cmd.OutOrStdout(), "columns: %d\nrecords: %d\n", len(data.Columns), len(data.Records))
		return nil
	},
}

var config *Config

func init() {
	rootCmd.AddCommand(checkCmd)
}

// buildService wires the configured source, layout and messages.
func buildService() (*Service, error) {
	layout, err := loadLayout(config.LayoutPath)
	if err != nil {
		return nil, err
	}
	msgs, err := loadMessages(config.Locale)
	if err != nil {
		return nil, err
	}

	switch config.Source {
	case "http":
		source := NewHTTPSource(&http.Client{}, config.ColumnsURL, config.RecordsURL)
		return NewService(config, source, layout, msgs), nil
	case "sql":
		db, err := connectDB(config)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		if err := initMirrorTables(db, config.DBEngine); err != nil {
			db.Close()
			return nil, err
		}
		service := NewService(config, NewSQLSource(db), layout, msgs)
		service.db = db
		return service, nil
	default:
		return nil, fmt.Errorf("unsupported source: %s", config.Source)
	}
}

// newRouter registers the pages, the JSON API, health and metrics.
func newRouter(service *Service) http.Handler {
	router := mux.NewRouter().UseEncodedPath()
	router.Use(requestID, instrument, frameAncestors(service.config.FrameAncestors))

	router.HandleFunc("/", service.handleList).Methods("GET")
	router.HandleFunc("/profile/{key}", service.handleProfile).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/columns", service.handleListColumns).Methods("GET")
	api.HandleFunc("/columns/{columnId}/values", service.handleGetChoiceValues).Methods("GET")
	api.HandleFunc("/records", service.handleListRecords).Methods("GET")
	api.HandleFunc("/records/{key}", service.handleGetRecord).Methods("GET")

	router.HandleFunc("/health", service.handleHealth).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// CORS middleware
	corsHandler := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(router)

	return handlers.RecoveryHandler()(handlers.CompressHandler(corsHandler))
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// frameAncestors restricts which hosts may embed the pages.
func frameAncestors(ancestors string) mux.MiddlewareFunc {
	policy := "frame-ancestors " + ancestors
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Security-Policy", policy)
			next.ServeHTTP(w, r)
		})
	}
}

func serve(ctx context.Context) error {
	log := logger.Named("server")
	log.Info("starting directory service", zap.String("port", config.Port), zap.String("source", config.Source))

	service, err := buildService()
	if err != nil {
		return fmt.Errorf("failed to initialize service: %w", err)
	}
	defer service.Close()

	// A failed load is not fatal: pages report the error until restart.
	_ = service.Load(ctx)

	if config.LayoutPath != "" {
		watcher, err := NewLayoutWatcher(config.LayoutPath, service)
		if err != nil {
			return fmt.Errorf("failed to watch layout: %w", err)
		}
		if err := watcher.Start(ctx); err != nil {
			return fmt.Errorf("failed to watch layout: %w", err)
		}
		defer watcher.Stop()
	}

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      newRouter(service),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exited")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
