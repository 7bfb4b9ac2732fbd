package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"pattern-catalog/core/catalog"
	"pattern-catalog/core/config"
	"pattern-catalog/core/lister"
	"pattern-catalog/core/logger"
	"pattern-catalog/core/pattern"
	"pattern-catalog/core/storage"
	"pattern-catalog/core/utils"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	urlFlag       string
	recursiveFlag bool
	jsonFlag      bool
	keysFlag      bool
	fieldFlags    []string
	limitFlag     int
)

// newRegistry registers the lister backends by url scheme. The object storage
// client is only created when an "s3://" catalog is opened.
func newRegistry(cfg *config.Config, logg *zap.Logger) (*lister.Registry, error) {
	reg := lister.NewRegistry()

	object := func(ctx context.Context, loc pattern.Location) (lister.Lister, error) {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, err
		}
		l, err := lister.ObjectFactory(client)(ctx, loc)
		if err != nil {
			return nil, err
		}
		if err := l.(*lister.ObjectLister).Check(ctx); err != nil {
			if !errors.Is(err, lister.ErrPermissionDenied) {
				return nil, err
			}
			// Listing may still be allowed with a narrower policy.
			logg.Warn("Bucket check denied", zap.String("bucket", loc.Root), zap.Error(err))
		}
		return l, nil
	}

	if err := reg.Register(object, "s3", "s3a", "minio"); err != nil {
		return nil, err
	}
	if err := reg.Register(lister.LocalFactory, pattern.SchemeFile); err != nil {
		return nil, err
	}
	if err := reg.Register(lister.FSFactory(memfs.New()), "memory"); err != nil {
		return nil, err
	}
	return reg, nil
}

// loadCatalogConfig loads and validates the configuration, applying CLI overrides.
func loadCatalogConfig(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if urlFlag != "" {
		cfg.Catalog.URL = urlFlag
	}
	if cmd.Flags().Changed("recursive") {
		cfg.Catalog.Recursive = recursiveFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logg, nil
}

// openIndex builds the configured catalog index for one-shot CLI commands.
func openIndex(cmd *cobra.Command) (*catalog.Index, pattern.Location, error) {
	cfg, logg, err := loadCatalogConfig(cmd)
	if err != nil {
		return nil, pattern.Location{}, err
	}

	reg, err := newRegistry(cfg, logg)
	if err != nil {
		return nil, pattern.Location{}, err
	}

	return catalog.Open(cmd.Context(), cfg.Catalog, reg, catalog.WithLogger(logg))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// listCmd prints every catalog entry.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog entries",
	Long:  `Lists the backend once and prints the field values of every entry, or only their keys with --keys.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, loc, err := openIndex(cmd)
		if err != nil {
			return err
		}

		entries, err := idx.Entries(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonFlag {
			return printJSON(out, entries)
		}
		for _, e := range entries {
			if keysFlag {
				fmt.Fprintln(out, e.Key)
				continue
			}
			values, _ := json.Marshal(e.Values)
			fmt.Fprintf(out, "%s\t%s\t%s\n", e.Key, values, loc.Join(e.Path))
		}
		return nil
	},
}

// entryCmd looks up a single entry.
var entryCmd = &cobra.Command{
	Use:     "entry",
	Short:   "Look up one entry by its field values",
	Example: `  pattern-catalog entry --url 's3://datasets/{city}/{year}.csv' -f city=bern -f year=2024`,
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := utils.ParseAssignments(fieldFlags)
		if err != nil {
			return err
		}

		idx, loc, err := openIndex(cmd)
		if err != nil {
			return err
		}

		e, err := idx.Entry(cmd.Context(), values)
		if err != nil {
			return err
		}

		if jsonFlag {
			return printJSON(cmd.OutOrStdout(), e)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", e.Key, loc.Join(e.Path))
		return nil
	},
}

// pathCmd formats an entry path without touching the backend.
var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the path for the given field values",
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := utils.ParseAssignments(fieldFlags)
		if err != nil {
			return err
		}

		cfg, _, err := loadCatalogConfig(cmd)
		if err != nil {
			return err
		}

		loc := pattern.ParseURL(cfg.Catalog.URL)
		p, err := pattern.Compile(loc.Path, cfg.Catalog.Recursive)
		if err != nil {
			return err
		}
		ordered, err := p.Bind(values)
		if err != nil {
			return err
		}
		path, err := p.Format(ordered)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), loc.Join(path))
		return nil
	},
}

// compileCmd shows how a template is interpreted.
var compileCmd = &cobra.Command{
	Use:   "compile <template>",
	Short: "Show the glob and fields of a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loc := pattern.ParseURL(args[0])
		p, err := pattern.Compile(loc.Path, recursiveFlag)
		if err != nil {
			return err
		}

		info := struct {
			Scheme   string   `json:"scheme"`
			Root     string   `json:"root"`
			Template string   `json:"template"`
			Glob     string   `json:"glob"`
			Fields   []string `json:"fields"`
		}{loc.Scheme, loc.Root, p.Template(), p.Glob(), p.Fields()}

		if jsonFlag {
			return printJSON(cmd.OutOrStdout(), info)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Scheme:   %s\n", info.Scheme)
		fmt.Fprintf(out, "Root:     %s\n", info.Root)
		fmt.Fprintf(out, "Template: %s\n", info.Template)
		fmt.Fprintf(out, "Glob:     %s\n", info.Glob)
		fmt.Fprintf(out, "Fields:   %s\n", strings.Join(info.Fields, ", "))
		return nil
	},
}

// searchCmd finds entries by key or path.
var searchCmd = &cobra.Command{
	Use:   "search <words...>",
	Short: "Find entries whose key or path contains any of the words",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, loc, err := openIndex(cmd)
		if err != nil {
			return err
		}

		found, err := idx.Search(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		if limitFlag > 0 && len(found) > limitFlag {
			found = found[:limitFlag]
		}

		if jsonFlag {
			return printJSON(cmd.OutOrStdout(), found)
		}
		for _, e := range found {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", e.Key, loc.Join(e.Path))
		}
		if len(found) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "no entries found")
		}
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().StringVar(&urlFlag, "url", "", "Catalog url, overrides CATALOG_URL")
	RootCmd.PersistentFlags().BoolVar(&recursiveFlag, "recursive", false, "Let placeholders span directories")
	RootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Print JSON")

	listCmd.Flags().BoolVar(&keysFlag, "keys", false, "Print entry keys only")
	entryCmd.Flags().StringArrayVarP(&fieldFlags, "field", "f", nil, "Field value as name=value (repeatable)")
	pathCmd.Flags().StringArrayVarP(&fieldFlags, "field", "f", nil, "Field value as name=value (repeatable)")
	searchCmd.Flags().IntVar(&limitFlag, "limit", 0, "Maximum number of results")

	RootCmd.AddCommand(listCmd, entryCmd, pathCmd, compileCmd, searchCmd)
}
