package cmd

import (
	"context"
	"fmt"

	"pattern-catalog/core/catalog"
	"pattern-catalog/core/config"
	"pattern-catalog/core/database"
	catalogfeature "pattern-catalog/feature/catalog"
	"pattern-catalog/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Perform integrity checks on the catalog",
	Long:  `Checks that the backend is reachable, that every listed path yields a unique valid key, and that the snapshot table matches its model.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd, true, true, true)
	},
}

// structureCmd represents the integrity structure command
var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Check the backend listing against the template",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd, true, false, false)
	},
}

// keysCmd represents the integrity keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Check for invalid and colliding entry keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd, false, true, false)
	},
}

// schemaCmd represents the integrity schema command
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Check the snapshot table schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd, false, false, true)
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(structureCmd, keysCmd, schemaCmd)
}

// connectOptional opens the snapshot database when enabled. Failures are
// logged and yield a nil handle.
func connectOptional(cfg *config.Config, logg *zap.Logger) *gorm.DB {
	if !cfg.Database.Enabled {
		return nil
	}
	db, err := database.Connect(cfg.Database)
	if err != nil {
		logg.Warn("Optional database connection failed", zap.Error(err))
		return nil
	}
	return db
}

func runIntegrityChecks(cmd *cobra.Command, runStructure, runKeys, runSchema bool) error {
	cfg, logg, err := loadCatalogConfig(cmd)
	if err != nil {
		return err
	}
	defer logg.Sync()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	reg, err := newRegistry(cfg, logg)
	if err != nil {
		return err
	}
	idx, _, err := catalog.Open(ctx, cfg.Catalog, reg, catalog.WithLogger(logg))
	if err != nil {
		return err
	}

	db := connectOptional(cfg, logg)
	var model interface{}
	if db != nil {
		model = catalogfeature.SnapshotEntry{}
	}
	svc := integrity.NewService(idx.Pattern(), idx.Lister(), idx.KeyBuilder(), db, model, logg)

	report := make(map[string]interface{})
	failed := false

	if runStructure {
		logg.Info("Checking backend structure...")
		structure, err := svc.CheckStructure(ctx)
		if err != nil {
			return fmt.Errorf("structure check failed: %w", err)
		}
		report["structure"] = structure

		switch structure.Status {
		case "ok":
			logg.Info("Structure is intact.", zap.Int("matched", structure.Matched))
		case "empty":
			logg.Warn("No paths match the template", zap.String("glob", structure.Glob))
		default:
			logg.Warn("Paths not parsed by the template", zap.Strings("unparsed", structure.Unparsed))
		}
	}

	if runKeys {
		logg.Info("Checking entry keys...")
		keys, err := svc.CheckKeys(ctx)
		if err != nil {
			return fmt.Errorf("key check failed: %w", err)
		}
		report["keys"] = keys

		if keys.Status == "ok" {
			logg.Info("Entry keys are unique.", zap.Int("entries", keys.Entries))
		} else {
			failed = true
			if len(keys.Invalid) > 0 {
				logg.Warn("Invalid entry keys", zap.Strings("paths", keys.Invalid))
			}
			for _, c := range keys.Collisions {
				logg.Warn("Key collision", zap.String("key", c.Key), zap.Strings("paths", c.Paths))
			}
		}
	}

	if runSchema {
		if db == nil {
			logg.Info("Skipping schema check: database is not enabled.")
		} else {
			logg.Info("Checking snapshot schema...")
			schema, err := svc.CheckSchema()
			if err != nil {
				return fmt.Errorf("schema check failed: %w", err)
			}
			report["schema"] = schema

			if schema.Matched {
				logg.Info("Snapshot schema matches the model.", zap.String("table", schema.Table))
			} else {
				failed = true
				if len(schema.MissingColumns) > 0 {
					logg.Warn("Missing Columns", zap.String("table", schema.Table), zap.Strings("columns", schema.MissingColumns))
				}
				if len(schema.TypeMismatches) > 0 {
					logg.Warn("Type Mismatches", zap.String("table", schema.Table), zap.Strings("mismatches", schema.TypeMismatches))
				}
				for _, e := range schema.Errors {
					logg.Error("Inspection Error", zap.String("error", e))
				}
			}
		}
	}

	if jsonFlag {
		if err := printJSON(cmd.OutOrStdout(), report); err != nil {
			return err
		}
	}
	if failed {
		return fmt.Errorf("integrity checks failed")
	}
	return nil
}
