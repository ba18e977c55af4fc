package cmd

import (
	"context"
	"net/url"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"entracker/config"
	"entracker/pkg/logger"
	"entracker/pkg/manager"
	"entracker/pkg/oracle"
	"entracker/pkg/sheets"
	"entracker/pkg/tmdb"
	"entracker/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start the tracking server",
	Long:  `start the tracking server`,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.Get()

		cfg, err := config.New(viper.GetViper())
		if err != nil {
			log.Fatal("failed to read configurations", zap.Error(err))
		}

		tmdbURL := url.URL{
			Scheme: cfg.TMDB.Scheme,
			Host:   cfg.TMDB.Host,
		}

		tmdbClient, err := tmdb.New(tmdbURL.String(), cfg.TMDB.APIKey)
		if err != nil {
			log.Fatal("failed to create tmdb client", zap.Error(err))
		}

		oracleClient := oracle.New(cfg.Oracle.BaseURL, cfg.Oracle.APIKey, cfg.Oracle.Model)

		store, err := sheets.New(context.Background(), cfg.Sheets)
		if err != nil {
			log.Fatal("failed to create sheet store", zap.Error(err))
		}

		mediaManager := manager.New(tmdbClient, oracleClient, store)
		srv := server.New(log, mediaManager)
		log.Error(srv.Serve(cfg.Server.Port))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
