package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"splitscan/internal/auth"
	"splitscan/internal/middleware"
	"splitscan/internal/server"
	"splitscan/internal/storage/sqlite"
	"splitscan/internal/upload"
	"splitscan/pkg/logging"
)

func main() {
	fs := ff.NewFlagSet("splitscan")
	var (
		port       = fs.IntLong("port", 8080, "HTTP server port")
		dbPath     = fs.StringLong("db", "./data/receipts.db", "Database file path")
		uploadPath = fs.StringLong("storage", "./data/uploads", "Receipt image storage directory")
		staticPath = fs.StringLong("static", "", "Static frontend directory (optional)")
		jwtSecret  = fs.StringLong("jwt-secret", "", "JWT signing secret (or set SPLITSCAN_JWT_SECRET)")
		tokenTTL   = fs.DurationLong("token-ttl", 24*time.Hour, "Session token lifetime")
		logLevel   = fs.StringLong("log-level", "info", "Log level: debug, info, warn, error")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("SPLITSCAN"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logging.SetupWithLevel(logging.ParseLevel(*logLevel))

	if *jwtSecret == "" {
		slog.Error("JWT secret is required. Set --jwt-secret flag or SPLITSCAN_JWT_SECRET environment variable")
		os.Exit(1)
	}

	store, err := sqlite.New(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", *dbPath)

	uploads, err := upload.NewLocalStorage(*uploadPath)
	if err != nil {
		slog.Error("Failed to initialize upload storage", "error", err)
		os.Exit(1)
	}

	jwtManager := auth.NewJWTManager(*jwtSecret, *tokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)
	api := server.New(store, authenticator, jwtManager, uploads)

	mux := http.NewServeMux()
	mux.Handle("/api/", api.Routes())
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(*uploadPath))))

	if *staticPath != "" {
		staticDir, err := filepath.Abs(*staticPath)
		if err != nil {
			slog.Error("Failed to resolve static path", "error", err)
			os.Exit(1)
		}
		slog.Info("Serving static files", "path", staticDir)

		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			urlPath := r.URL.Path
			if urlPath == "/" {
				urlPath = "/index.html"
			}

			filePath := filepath.Join(staticDir, filepath.Clean(urlPath))
			if _, err := os.Stat(filePath); os.IsNotExist(err) {
				// SPA routing: unknown paths fall back to index.html.
				http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
				return
			}
			http.ServeFile(w, r, filePath)
		})
	}

	handler := middleware.Logging(middleware.Metrics(middleware.CORS(mux)))

	// h2c allows HTTP/2 without TLS for clients behind a terminating proxy.
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	addr := fmt.Sprintf(":%d", *port)
	slog.Info("Server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
