package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/civitas/kinship/internal/config"
	"github.com/civitas/kinship/internal/engine"
	"github.com/civitas/kinship/internal/feed"
	"github.com/civitas/kinship/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one relationship-scoring batch pass",
	Long:  "Processes every citizen as a source: fetches relevancy events, gathers interaction evidence, decays and updates the pairwise aggregates, and records a run summary. Intended to be driven at a fixed cadence by the simulation scheduler.",
	RunE:  runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	client := feed.NewClient(cfg.Feed.URL, cfg.FeedTimeout(), cfg.FeedPace())
	defer client.Close()

	eng := engine.New(db, client, weightsFrom(cfg))

	summary, err := eng.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("batch run: %w", err)
	}

	fmt.Fprintf(os.Stderr, "run %s finished in %s\n", summary.RunID, summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  citizens:      %d processed, %d failed\n", summary.CitizensProcessed, summary.CitizensFailed)
	fmt.Fprintf(os.Stderr, "  relevancies:   %d fetched\n", summary.RelevanciesFetched)
	fmt.Fprintf(os.Stderr, "  relationships: %d created, %d updated, %d writes failed\n",
		summary.RelationshipsCreated, summary.RelationshipsUpdated, summary.PairsFailed)
	return nil
}

// openStore resolves the database path and opens the record store.
// This is the only failure that is fatal to a whole run.
func openStore(cfg config.Config) (*store.DB, error) {
	path := cfg.Database.Path
	if path == "" {
		var err error
		path, err = store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve db path: %w", err)
		}
	}
	db, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

func weightsFrom(cfg config.Config) engine.Weights {
	return engine.Weights{
		Decay:              cfg.Scoring.DecayFactor,
		Message:            cfg.Scoring.MessageWeight,
		LoanDivisor:        cfg.Scoring.LoanDivisor,
		ContractDivisor:    cfg.Scoring.ContractDivisor,
		TransactionDivisor: cfg.Scoring.TransactionDivisor,
		Window:             cfg.Window(),
	}
}
