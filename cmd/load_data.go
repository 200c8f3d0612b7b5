package cmd

import (
	"context"
	"fmt"
	"os"

	"foodgram/internal/database"
	"foodgram/internal/logging"
	"foodgram/internal/models"
	"foodgram/internal/repositories"
	"foodgram/internal/services"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	ingredientsFile string
	tagsFile        string
)

var loadDataCmd = &cobra.Command{
	Use:   "load-data",
	Short: "Import ingredients and tags from JSON files",
	Long: `Bulk-import reference data.

Ingredients file: [{"name": "flour", "measurement_unit": "g"}, ...]
Tags file:        [{"name": "Breakfast", "slug": "breakfast", "color": "#E26C2D"}, ...]`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ingredientsFile == "" && tagsFile == "" {
			return fmt.Errorf("at least one of --ingredients or --tags must be provided")
		}
		db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
		if err != nil {
			return err
		}
		if err := database.Migrate(db); err != nil {
			return err
		}
		return loadData(context.Background(), db, ingredientsFile, tagsFile)
	},
}

func init() {
	loadDataCmd.Flags().StringVar(&ingredientsFile, "ingredients", "", "Path to the ingredients JSON file")
	loadDataCmd.Flags().StringVar(&tagsFile, "tags", "", "Path to the tags JSON file")
}

func loadData(ctx context.Context, db *gorm.DB, ingredientsPath, tagsPath string) error {
	var ingredients []models.Ingredient
	if err := readJSONFile(ingredientsPath, &ingredients); err != nil {
		return err
	}
	var tags []models.Tag
	if err := readJSONFile(tagsPath, &tags); err != nil {
		return err
	}

	catalog := services.NewCatalogService(
		repositories.NewGORMTagRepository(db),
		repositories.NewGORMIngredientRepository(db),
		repositories.NewGORMCatalogImporter(db),
	)
	result, err := catalog.Import(ctx, tags, ingredients)
	if err != nil {
		return err
	}
	logging.Info().
		Int("ingredients", result.Ingredients).
		Int("ingredients_skipped", len(ingredients)-result.Ingredients).
		Int("tags", result.Tags).
		Int("tags_skipped", len(tags)-result.Tags).
		Msg("reference data loaded")
	return nil
}

// readJSONFile decodes path into v. An empty path leaves v untouched.
func readJSONFile(path string, v interface{}) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
