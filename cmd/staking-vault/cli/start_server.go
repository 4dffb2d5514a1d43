package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vaultpoint/staking-vault/internal/api"
	"github.com/vaultpoint/staking-vault/internal/auth"
	"github.com/vaultpoint/staking-vault/internal/config"
	"github.com/vaultpoint/staking-vault/internal/db"
	dbmodel "github.com/vaultpoint/staking-vault/internal/db/model"
	"github.com/vaultpoint/staking-vault/internal/epoch"
	"github.com/vaultpoint/staking-vault/internal/observability/metrics"
	"github.com/vaultpoint/staking-vault/internal/observability/tracing"
	"github.com/vaultpoint/staking-vault/internal/queue"
	"github.com/vaultpoint/staking-vault/internal/services"
)

func StartServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start-server",
		Short: "Starts the staking vault server",
		Args:  cobra.ExactArgs(0),
		RunE:  startServer,
	}

	return cmd
}

func startServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	ctx = tracing.InjectTraceID(ctx, "")
	log := log.Ctx(ctx)

	// load config
	cfgPath := GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg(fmt.Sprintf("error while loading config file: %s", cfgPath))
	}

	err = dbmodel.Setup(ctx, &cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up staking vault db model")
	}

	// create new db client
	var dbClient db.DbInterface
	dbClient, err = db.New(ctx, cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating db client")
	}
	dbClient = db.NewDbWithMetrics(dbClient)

	queueManager, err := queue.NewQueueManager(&cfg.Queue)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating queue manager")
	}
	defer queueManager.Shutdown()

	epochClock := epoch.NewClock(cfg.Epoch.GenesisTime, cfg.Epoch.EpochDuration)
	verifier := auth.NewStaticVerifier(cfg.Governance.GovernanceToken, cfg.Governance.CustodyToken)

	service := services.NewService(cfg, dbClient, queueManager, epochClock, verifier)

	// initialize metrics with the metrics port from config
	metricsPort := cfg.Metrics.GetMetricsPort()
	metrics.Init(metricsPort)

	apiServer := api.NewServer(&cfg.API, service)
	go func() {
		if err := apiServer.Start(); err != nil {
			log.Fatal().Err(err).Msg("error while running API server")
		}
	}()

	service.StartBackgroundTasks(ctx)
	return nil
}
