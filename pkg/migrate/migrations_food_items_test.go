package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no %s migration file found", suffix)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestFoodItemsMigrationContainsVectorIndex(t *testing.T) {
	content := readMigration(t, "create_food_items")

	checks := []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		"CREATE TABLE IF NOT EXISTS food_items",
		"embedding vector(384) NULL",
		"CONSTRAINT food_items_barcode_key UNIQUE (barcode)",
		"USING hnsw (embedding vector_cosine_ops)",
		"CREATE TABLE IF NOT EXISTS food_ingredients",
		"PRIMARY KEY (parent_id, ingredient_id)",
		"CHECK (parent_id <> ingredient_id)",
		"DROP TABLE IF EXISTS food_items",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
