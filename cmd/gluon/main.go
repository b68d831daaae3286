package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"gluon/internal/appointments"
	"gluon/internal/auth"
	"gluon/internal/gateway"
	"gluon/internal/store"
)

// getenv returns the value of the environment variable named by key or
// fallback if the variable is not present.
func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func Run(ctx context.Context) error {

	listenHTTP := flag.String("listen", getenv("GLUON_LISTEN", "8080"), "HTTP listen port")
	listenHTTPS := flag.String("listen-tls", getenv("GLUON_LISTEN_TLS", "8443"), "HTTPS listen port")
	crtFile := flag.String("tls-cert", getenv("GLUON_TLS_CERT", ""), "TLS certificate file")
	keyFile := flag.String("tls-key", getenv("GLUON_TLS_KEY", ""), "TLS key file")
	prefix := flag.String("prefix", getenv("GLUON_PREFIX", gateway.DefaultPrefix), "path prefix for storage routes")
	dataDir := flag.String("data-dir", getenv("GLUON_DATA_DIR", "./data"), "directory for the metadata database")

	storeEndpoint := flag.String("store-endpoint", getenv("MINIO_ENDPOINT", "localhost:9000"), "object store endpoint")
	storeAccessKey := flag.String("store-access-key", getenv("MINIO_ACCESS_KEY", "minioadmin"), "object store access key")
	storeSecretKey := flag.String("store-secret-key", getenv("MINIO_SECRET_KEY", "minioadmin"), "object store secret key")
	storeUseSSL := flag.Bool("store-ssl", getenv("MINIO_USE_SSL", "false") == "true", "use TLS when talking to the object store")

	jwtSecret := flag.String("jwt-secret", getenv("GLUON_JWT_SECRET", ""), "HMAC secret for bearer token validation (empty disables auth)")

	flag.Parse()

	handler := log.NewWithOptions(os.Stdout, log.Options{
		Level:           log.DebugLevel,
		TimeFormat:      time.RFC3339,
		ReportTimestamp: true,
		TimeFunction:    log.NowUTC,
		ReportCaller:    true,
	})

	slog.SetDefault(slog.New(handler))

	objectStore, err := store.NewMinioStore(*storeEndpoint, *storeAccessKey, *storeSecretKey, *storeUseSSL)
	if err != nil {
		return fmt.Errorf("failed to create object store client: %w", err)
	}

	// Ensure data directory is absolute for easier debugging.
	absDataDir, err := filepath.Abs(*dataDir)
	if err != nil {
		return fmt.Errorf("failed to resolve data directory: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	metadata, err := appointments.Open(ctx, filepath.Join(absDataDir, "metadata.sqlite"))
	if err != nil {
		return fmt.Errorf("failed to open metadata store: %w", err)
	}
	defer metadata.Close()

	cfg := gateway.Config{
		Prefix:   *prefix,
		Store:    objectStore,
		Metadata: metadata,
	}

	if *jwtSecret != "" {
		cfg.Auth = auth.NewBearerAuthEngine([]byte(*jwtSecret))
	} else {
		slog.Warn("No JWT secret configured; authentication is disabled")
	}

	server, err := gateway.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create gateway server: %w", err)
	}

	router := server.Handler()

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", *listenHTTP),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
	}

	httpsServer := &http.Server{
		TLSConfig: &tls.Config{
			ClientAuth: tls.RequestClientCert,
			MinVersion: tls.VersionTLS12,
		},
		Addr:              fmt.Sprintf(":%s", *listenHTTPS),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		<-ctx.Done()
		return httpsServer.Shutdown(context.Background())
	})

	eg.Go(func() error {
		<-ctx.Done()
		return httpServer.Shutdown(context.Background())
	})

	eg.Go(func() error {
		if *crtFile == "" || *keyFile == "" {
			slog.Debug("Skipping HTTPS service because no certificate was provided")
			return nil
		}

		slog.Info("Starting gateway HTTPS server", "port", *listenHTTPS)
		err := httpsServer.ListenAndServeTLS(*crtFile, *keyFile)
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	eg.Go(func() error {
		slog.Info("Starting gateway HTTP server", "port", *listenHTTP)
		err := httpServer.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	slog.Info("Gateway started", "prefix", *prefix, "store", *storeEndpoint)
	return eg.Wait()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx); err != nil {
		slog.Error("Gateway exited with error", "error", err)
	}
}
