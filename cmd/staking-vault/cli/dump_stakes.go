package cli

import (
	"encoding/json"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vaultpoint/staking-vault/internal/config"
	"github.com/vaultpoint/staking-vault/internal/db"
)

// DumpStakesCmd writes every stake of a vault to stdout as JSON lines.
// Maintenance helper for reconciling the record stream against the db.
func DumpStakesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:  "dump-stakes <vault-id>",
		Args: cobra.ExactArgs(1),
		Run:  dumpStakes,
	}

	return cmd
}

func dumpStakes(cmd *cobra.Command, args []string) {
	err := dumpStakesE(cmd, args)
	// because of current architecture we need to stop execution of the program
	// otherwise existing main logic will be called
	if err != nil {
		log.Err(err).Msg("Failed to dump stakes")
		os.Exit(1)
	}

	os.Exit(0)
}

func dumpStakesE(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.New(GetConfigPath())
	if err != nil {
		return err
	}

	dbClient, err := db.New(ctx, cfg.Db)
	if err != nil {
		return err
	}

	stakes, err := dbClient.GetStakesByVault(ctx, args[0])
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	for _, stake := range stakes {
		if err := encoder.Encode(stake); err != nil {
			return err
		}
	}
	return nil
}
