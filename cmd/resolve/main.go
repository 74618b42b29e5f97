package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Darius662/Readloom-Angular-sub001/internal/cache"
	"github.com/Darius662/Readloom-Angular-sub001/internal/covers"
	"github.com/Darius662/Readloom-Angular-sub001/internal/knowledge"
	"github.com/Darius662/Readloom-Angular-sub001/internal/resolver"
	"github.com/Darius662/Readloom-Angular-sub001/internal/sources"
	"github.com/Darius662/Readloom-Angular-sub001/pkg/config"
	"github.com/Darius662/Readloom-Angular-sub001/pkg/database"
	"github.com/Darius662/Readloom-Angular-sub001/pkg/models"
)

var (
	flagExternalID string
	flagStatus     string
	flagForce      bool

	flagCandidates string
	flagLocals     string
)

var rootCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Series metadata resolution engine",
	Long:  `Resolve chapter/volume counts for series titles and match cover artifacts to local volumes.`,
}

var resolveCmd = &cobra.Command{
	Use:   "title [title]",
	Short: "Resolve counts for one series title",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, _, _, closeDB, err := openEngine()
		if err != nil {
			return err
		}
		defer closeDB()

		req := models.ResolutionRequest{
			Title:        args[0],
			ExternalID:   flagExternalID,
			Status:       models.SeriesStatus(flagStatus),
			ForceRefresh: flagForce,
		}

		result, err := res.Resolve(context.Background(), resolver.NewSession(), req)
		if err != nil {
			return fmt.Errorf("resolve: %w", err)
		}
		return printJSON(result)
	},
}

var matchCoversCmd = &cobra.Command{
	Use:   "match-covers",
	Short: "Match cover candidates against local volumes",
	Long:  `Reads a JSON array of cover candidates and a JSON array of local volumes and prints the match report.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var candidates []models.CoverCandidate
		if err := readJSONFile(flagCandidates, &candidates); err != nil {
			return err
		}
		var locals []models.LocalVolume
		if err := readJSONFile(flagLocals, &locals); err != nil {
			return err
		}

		return printJSON(covers.Match(candidates, locals))
	},
}

var cacheStatsCmd = &cobra.Command{
	Use:   "cache-stats",
	Short: "Show resolution cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, kb, closeDB, err := openEngine()
		if err != nil {
			return err
		}
		defer closeDB()

		st, err := store.Stats(context.Background())
		if err != nil {
			return fmt.Errorf("cache stats: %w", err)
		}
		seed, overlay := kb.Len()

		return printJSON(map[string]any{
			"cache":             st,
			"knowledge_seed":    seed,
			"knowledge_overlay": overlay,
		})
	},
}

var compactCmd = &cobra.Command{
	Use:   "compact",
	Short: "Drop overlay entries that duplicate the built-in seed set",
	RunE: func(cmd *cobra.Command, args []string) error {
		db := database.MustOpen(database.DefaultConfig())
		defer db.Close()
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}

		seed, err := knowledge.Seed()
		if err != nil {
			return err
		}
		removed, err := knowledge.NewOverlayStore(db).Compact(context.Background(), seed)
		if err != nil {
			return fmt.Errorf("compact: %w", err)
		}
		fmt.Printf("removed %d redundant overlay entries\n", removed)
		return nil
	},
}

func openEngine() (*resolver.Resolver, *cache.Store, *knowledge.Base, func(), error) {
	db := database.MustOpen(database.DefaultConfig())
	if err := database.Migrate(db); err != nil {
		_ = db.Close()
		return nil, nil, nil, nil, fmt.Errorf("migrate: %w", err)
	}

	store := cache.NewStore(db)
	kb, err := knowledge.New(knowledge.NewOverlayStore(db))
	if err != nil {
		_ = db.Close()
		return nil, nil, nil, nil, err
	}

	cfg := config.LoadEngine()
	res := resolver.New(store, kb, sources.DefaultSet(cfg)...)
	return res, store, kb, func() { _ = db.Close() }, nil
}

func readJSONFile(path string, v any) error {
	if path == "" {
		return fmt.Errorf("missing required file flag")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func main() {
	_ = godotenv.Load()

	resolveCmd.Flags().StringVar(&flagExternalID, "external-id", "", "external catalog ID (stronger cache key)")
	resolveCmd.Flags().StringVar(&flagStatus, "status", "", "series status: ONGOING, COMPLETED or UNKNOWN")
	resolveCmd.Flags().BoolVar(&flagForce, "force", false, "bypass the cache and re-scrape")

	matchCoversCmd.Flags().StringVar(&flagCandidates, "candidates", "", "JSON file with cover candidates")
	matchCoversCmd.Flags().StringVar(&flagLocals, "locals", "", "JSON file with local volumes")

	rootCmd.AddCommand(resolveCmd, matchCoversCmd, cacheStatsCmd, compactCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
