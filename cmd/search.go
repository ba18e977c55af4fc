package cmd

import (
	"context"
	"encoding/json"
	"log"
	"net/url"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"entracker/config"
	"entracker/pkg/tmdb"
)

var (
	searchMediaType string
	searchName      string
)

// searchCmd queries the metadata service from the terminal, the same lookup
// the web client uses for disambiguation.
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "search tmdb for a title",
	Long:  `search tmdb for a title`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.New(viper.GetViper())
		if err != nil {
			log.Fatalf("failed to read configurations: %v", err)
		}

		tmdbURL := url.URL{
			Scheme: cfg.TMDB.Scheme,
			Host:   cfg.TMDB.Host,
		}

		client, err := tmdb.New(tmdbURL.String(), cfg.TMDB.APIKey)
		if err != nil {
			log.Fatalf("failed to create tmdb client: %v", err)
		}

		kind := tmdb.KindTV
		if searchMediaType == "movie" || searchMediaType == "anime_movie" {
			kind = tmdb.KindMovie
		}

		results, err := client.SearchMedia(context.Background(), kind, searchName)
		if err != nil {
			log.Fatalf("failed to search: %v", err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			log.Fatalf("failed to encode results: %v", err)
		}
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchMediaType, "type", "movie", "media type (series, movie, anime, anime_movie)")
	searchCmd.Flags().StringVar(&searchName, "name", "", "title to search for")
	searchCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(searchCmd)
}
