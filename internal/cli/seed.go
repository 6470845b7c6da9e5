package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/civitas/kinship/internal/config"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a small demo population and interaction history",
	Long:  "Inserts a handful of citizens plus recent messages, loans, contracts, and trades so a local batch run has evidence to score. Safe to skip in production: the population and evidence tables are normally written by the simulation's own scripts.",
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	usernames := []string{"alice", "bob", "carol", "dmitri", "esther"}
	for _, u := range usernames {
		if _, err := db.AddCitizen(u); err != nil {
			return fmt.Errorf("seed citizen %s: %w", u, err)
		}
	}

	now := time.Now()
	recent := now.Add(-2 * time.Hour)

	fixtures := []func() error{
		func() error { return db.AddMessage("alice", "bob", "bread delivery confirmed", recent) },
		func() error { return db.AddMessage("bob", "alice", "payment sent", recent.Add(5*time.Minute)) },
		func() error { return db.AddMessage("carol", "dmitri", "meeting at the market", recent) },
		func() error { return db.AddLoan("esther", "bob", 250, "active") },
		func() error { return db.AddLoan("alice", "carol", 80, "repaid") },
		func() error {
			return db.AddContract("dmitri", "alice", 4.5, 8, now.Add(30*24*time.Hour).Format(time.RFC3339))
		},
		func() error { return db.AddTransaction("carol", "esther", 35, recent) },
	}
	for _, f := range fixtures {
		if err := f(); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stderr, "seeded %d citizens with demo interaction history into %s\n", len(usernames), db.Path)
	return nil
}
