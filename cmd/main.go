package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gameflix/cache"
	"gameflix/config"
	"gameflix/db"
	"gameflix/router"
	"gameflix/utils"

	"github.com/spf13/cobra"
)

func main() {
	var cfgFile string

	root := &cobra.Command{
		Use:           "gameflix",
		Short:         "GameFlix marketplace API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cfgFile)
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cfgFile)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := setup(cfgFile); err != nil {
				return err
			}
			utils.Log.Info("Migration complete")
			return db.Close()
		},
	})

	if err := root.Execute(); err != nil {
		utils.Log.WithError(err).Fatal("gameflix exited")
	}
}

// setup loads config, initializes logging and opens (and migrates) the
// database.
func setup(cfgFile string) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	utils.InitLogger(cfg.LogLevel, cfg.LogFile, cfg.IsRelease())

	if err := db.InitDB(cfg.DatabaseURL); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serve(cfgFile string) error {
	cfg, err := setup(cfgFile)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.RedisURL != "" {
		if err := cache.InitRedis(cfg.RedisURL, cfg.RedisPassword); err != nil {
			utils.Log.WithError(err).Warn("Redis unavailable, running without cache")
		} else {
			defer cache.CloseRedis()
		}
	} else {
		utils.Log.Info("REDIS_URL not set, running without cache")
	}

	stopBackground := make(chan struct{})
	defer close(stopBackground)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.New(cfg, stopBackground),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if cfg.UseHTTPS {
			server.TLSConfig = &tls.Config{
				MinVersion:       tls.VersionTLS12,
				CurvePreferences: []tls.CurveID{tls.CurveP521, tls.CurveP384, tls.CurveP256},
				CipherSuites: []uint16{
					tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
					tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
					tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
					tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
				},
			}
			utils.LogInfo("Starting server with HTTPS", map[string]interface{}{"port": cfg.Port, "cert": cfg.TLSCertFile})
			errCh <- server.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
			return
		}
		utils.LogInfo("Starting server with HTTP", map[string]interface{}{"port": cfg.Port})
		if cfg.IsRelease() {
			utils.Log.Warn("Running without HTTPS. Set USE_HTTPS=true for production")
		}
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case sig := <-stop:
		utils.LogInfo("Shutting down", map[string]interface{}{"signal": sig.String()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
