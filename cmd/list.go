package cmd

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"entracker/config"
	"entracker/pkg/media"
	"entracker/pkg/sheets"
)

var listMediaType string

// listCmd dumps a category's stored rows, decoded the same way the API
// serves them.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "list stored media of a type",
	Long:  `list stored media of a type`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.New(viper.GetViper())
		if err != nil {
			log.Fatalf("failed to read configurations: %v", err)
		}

		t, err := media.ParseType(listMediaType)
		if err != nil {
			log.Fatalf("invalid media type: %v", err)
		}

		sheetCfg, _ := media.ConfigFor(t)

		ctx := context.Background()
		store, err := sheets.New(ctx, cfg.Sheets)
		if err != nil {
			log.Fatalf("failed to create sheet store: %v", err)
		}

		values, err := store.ReadAll(ctx, sheetCfg.Range)
		if err != nil {
			log.Fatalf("failed to read sheet: %v", err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(sheets.DecodeRows(values)); err != nil {
			log.Fatalf("failed to encode rows: %v", err)
		}
	},
}

func init() {
	listCmd.Flags().StringVar(&listMediaType, "type", "movie", "media type (series, movie, anime, anime_movie)")
	rootCmd.AddCommand(listCmd)
}
