package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/DeusData/syl/internal/annotation"
	"github.com/DeusData/syl/internal/config"
	"github.com/DeusData/syl/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy JSON annotation files into the SQLite store",
	Long: `Copy every .syl/<file>.json annotation document into .syl/annotations.db.
Annotations already present are skipped, so the command can be rerun. Set
"store: sqlite" in .syl/config.yaml afterwards to use the database.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	root, err := projectRoot()
	if err != nil {
		return err
	}
	cfg := config.Load(root)
	setupLogging(cfg)

	db, err := store.Open(root)
	if err != nil {
		return err
	}
	defer db.Close()

	src := annotation.NewFileStore(filepath.Join(root, annotation.DirName))
	stats, err := db.Import(cmd.Context(), src)
	if err != nil {
		return err
	}
	fmt.Printf("migrated %d file(s): %d imported, %d already present, %d in the database\n", stats.Files, stats.Imported, stats.Skipped, stats.Total)
	if cfg.EffectiveStore() != config.StoreSQLite {
		fmt.Println(`set "store: sqlite" in .syl/config.yaml to use the database`)
	}
	return nil
}
