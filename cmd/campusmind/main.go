package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/campusmind/campusmind/internal/profile"
	"github.com/campusmind/campusmind/server"
	"github.com/campusmind/campusmind/store"
	"github.com/campusmind/campusmind/store/db"
)

const greetingBanner = `
  ___                              __  __ _         _
 / __|__ _ _ __  _ __ _  _ ___   |  \/  (_)_ _  __| |
| (__/ _' | '  \| '_ \ || (_-<   | |\/| | | ' \/ _' |
 \___\__,_|_|_|_| .__/\_,_/__/   |_|  |_|_|_||_\__,_|
                |_|
`

var (
	instanceProfile *profile.Profile

	rootCmd = &cobra.Command{
		Use:   "campusmind",
		Short: "Campus administration backend with an AI assistant",
		Run: func(_ *cobra.Command, _ []string) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			instanceProfile = &profile.Profile{
				Mode:      viper.GetString("mode"),
				Addr:      viper.GetString("addr"),
				Port:      viper.GetInt("port"),
				Data:      viper.GetString("data"),
				Driver:    viper.GetString("driver"),
				DSN:       viper.GetString("dsn"),
				JWTSecret: viper.GetString("jwt-secret"),
				AIAPIKey:  viper.GetString("ai-api-key"),
				AIBaseURL: viper.GetString("ai-base-url"),
				AIModel:   viper.GetString("ai-model"),
				Version:   "0.1.0",
			}
			if err := instanceProfile.Validate(); err != nil {
				slog.Error("invalid configuration", slog.String("error", err.Error()))
				os.Exit(1)
			}

			dbDriver, err := db.NewDBDriver(instanceProfile)
			if err != nil {
				slog.Error("failed to create db driver", slog.String("error", err.Error()))
				os.Exit(1)
			}

			storeInstance := store.New(dbDriver, instanceProfile)
			if err := storeInstance.Migrate(ctx); err != nil {
				slog.Error("failed to migrate database", slog.String("error", err.Error()))
				os.Exit(1)
			}

			s, err := server.NewServer(ctx, instanceProfile, storeInstance)
			if err != nil {
				slog.Error("failed to create server", slog.String("error", err.Error()))
				os.Exit(1)
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			go func() {
				sig := <-sigCh
				slog.Info("shutting down", slog.String("signal", sig.String()))
				s.Shutdown(ctx)
				cancel()
			}()

			fmt.Printf("%s\n", greetingBanner)
			fmt.Printf("Version 0.1.0 has been started on port %d\n", instanceProfile.Port)
			if err := s.Start(ctx); err != nil && ctx.Err() == nil {
				slog.Error("failed to start server", slog.String("error", err.Error()))
				cancel()
			}
			<-ctx.Done()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().String("mode", "demo", `mode of the server, can be "prod", "dev", or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "binding address of the server")
	rootCmd.PersistentFlags().Int("port", 8081, "binding port of the server")
	rootCmd.PersistentFlags().String("data", "", "data directory of the server")
	rootCmd.PersistentFlags().String("driver", "sqlite", `database driver, can be "sqlite" or "postgres"`)
	rootCmd.PersistentFlags().String("dsn", "", "database source name")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}
	viper.SetDefault("jwt-secret", "")
	viper.SetDefault("ai-api-key", "")
	viper.SetDefault("ai-base-url", "")
	viper.SetDefault("ai-model", "")
	viper.SetEnvPrefix("campusmind")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("failed to execute command", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
