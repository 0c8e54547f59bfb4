package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/someobserver/godel/adapters/analytics"
	"github.com/someobserver/godel/adapters/detectors"
	"github.com/someobserver/godel/adapters/evolution"
	"github.com/someobserver/godel/adapters/memstore"
	"github.com/someobserver/godel/adapters/postgres"
	"github.com/someobserver/godel/domain/core"
	"github.com/someobserver/godel/internal/config"
	"github.com/someobserver/godel/ports"

	_ "github.com/lib/pq"
)

func main() {
	var demo bool
	var databaseURL string

	rootCmd := &cobra.Command{
		Use:   "godel-cli",
		Short: "godel CLI for running structural-breakdown detectors and analytics",
	}
	rootCmd.PersistentFlags().BoolVar(&demo, "demo", false, "use an in-memory store instead of Postgres")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Postgres connection string (overrides DATABASE_URL)")

	rootCmd.AddCommand(
		newDetectCmd(&demo, &databaseURL),
		newClusterCmd(&demo, &databaseURL),
		newEscalateCmd(&demo, &databaseURL),
		newEvolveCmd(&demo, &databaseURL),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStore builds the DataStore for this invocation: memstore under
// --demo, else a sqlx/lib-pq Postgres connection (SPEC_FULL §3.12).
func openStore(demo bool, databaseURL string) (ports.DataStore, *config.Config, error) {
	if demo {
		return memstore.New(), config.Defaults(), nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	url := databaseURL
	if url == "" {
		url = cfg.Database.URL
	}
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return postgres.New(db), cfg, nil
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func newDetectCmd(demo *bool, databaseURL *string) *cobra.Command {
	var group string
	var concurrency int64

	cmd := &cobra.Command{
		Use:   "detect [point-id]",
		Short: "Run structural-breakdown detectors against a point",
		Long: `Run one detector group (or all twelve) against a manifold point.

Example: godel-cli detect --demo --group all 0191a2b0-...`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg, err := openStore(*demo, *databaseURL)
			if err != nil {
				return err
			}
			engine := detectors.NewEngine(store, cfg, concurrency)
			pointID := core.ID(args[0])

			var records interface{}
			switch group {
			case "rigidity":
				records, err = engine.DetectRigidity(cmd.Context(), pointID)
			case "fragmentation":
				records, err = engine.DetectFragmentation(cmd.Context(), pointID)
			case "inflation":
				records, err = engine.DetectInflation(cmd.Context(), pointID)
			case "observer":
				records, err = engine.DetectObserverCoupling(cmd.Context(), pointID)
			case "all":
				records, err = engine.DetectAll(cmd.Context(), pointID)
			default:
				return fmt.Errorf("unknown detector group %q (want rigidity|fragmentation|inflation|observer|all)", group)
			}
			if err != nil {
				return fmt.Errorf("run detectors: %w", err)
			}
			return printJSON(records)
		},
	}

	cmd.Flags().StringVar(&group, "group", "all", "detector group: rigidity|fragmentation|inflation|observer|all")
	cmd.Flags().Int64Var(&concurrency, "concurrency", 4, "max concurrent detector calls")
	return cmd
}

func newClusterCmd(demo *bool, databaseURL *string) *cobra.Command {
	var window, threshold, confidenceMin float64
	var minSize int

	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Compute coordination clusters over the configured window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg, err := openStore(*demo, *databaseURL)
			if err != nil {
				return err
			}
			if window <= 0 {
				window = cfg.Clustering.WindowHours
			}
			if threshold <= 0 {
				threshold = cfg.Clustering.CouplingThreshold
			}
			if minSize <= 0 {
				minSize = cfg.Clustering.MinClusterSize
			}
			if confidenceMin <= 0 {
				confidenceMin = cfg.Clustering.ConfidenceMin
			}

			clusters, err := analytics.CoordinationClusters(cmd.Context(), store, window, threshold, minSize, confidenceMin)
			if err != nil {
				return fmt.Errorf("compute coordination clusters: %w", err)
			}
			return printJSON(clusters)
		},
	}

	cmd.Flags().Float64Var(&window, "window-hours", 0, "lookback window in hours; pairs are bucketed by hour within it (default: config)")
	cmd.Flags().Float64Var(&threshold, "coupling-threshold", 0, "minimum coupling magnitude (default: config)")
	cmd.Flags().IntVar(&minSize, "min-size", 0, "minimum cluster size (default: config)")
	cmd.Flags().Float64Var(&confidenceMin, "confidence-min", 0, "minimum cluster confidence (default: config)")
	return cmd
}

func newEscalateCmd(demo *bool, databaseURL *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "escalate [point-id...]",
		Short: "Compute per-step escalation dynamics along an ordered trajectory",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openStore(*demo, *databaseURL)
			if err != nil {
				return err
			}
			pointIDs := make([]core.ID, len(args))
			for i, a := range args {
				pointIDs[i] = core.ID(a)
			}
			records, err := analytics.EscalationTrajectory(cmd.Context(), store, pointIDs)
			if err != nil {
				return fmt.Errorf("compute escalation trajectory: %w", err)
			}
			return printJSON(records)
		},
	}
	return cmd
}

func newEvolveCmd(demo *bool, databaseURL *string) *cobra.Command {
	var dt float64
	var persist bool

	cmd := &cobra.Command{
		Use:   "evolve [point-id]",
		Short: "Run one explicit-Euler coherence field evolution step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg, err := openStore(*demo, *databaseURL)
			if err != nil {
				return err
			}
			if dt <= 0 {
				dt = cfg.Evolution.DT
			}
			pointID := core.ID(args[0])

			next, err := evolution.EvolveCoherenceField(cmd.Context(), store, pointID, dt, cfg.Evolution, cfg.Dimensions)
			if err != nil {
				return fmt.Errorf("evolve coherence field: %w", err)
			}
			if persist {
				if err := store.AppendEvolutionSnapshot(cmd.Context(), pointID, next); err != nil {
					return fmt.Errorf("persist evolution snapshot: %w", err)
				}
			}
			return printJSON(next)
		},
	}

	cmd.Flags().Float64Var(&dt, "dt", 0, "Euler step size (default: config)")
	cmd.Flags().BoolVar(&persist, "persist", false, "write the evolved field back to the store")
	return cmd
}
