package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/postcode-finder/internal/domain"
	"github.com/postcode-finder/internal/repository/cache"
	redisRepo "github.com/postcode-finder/internal/repository/redis"
)

func init() {
	rootCmd.AddCommand(reloadCmd)
}

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Ask running API instances to reload the dataset",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger(cmd)

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		r, err := cache.NewRedis(&cfg.Redis, log)
		if err != nil {
			return err
		}
		defer r.Close()

		requestedBy, _ := os.Hostname()
		event := domain.DatasetReloadEvent{
			RequestID:   uuid.New(),
			RequestedBy: "cli@" + requestedBy,
			RequestedAt: time.Now().UTC(),
		}

		stream := redisRepo.NewStreamRepository(r.Client(), log)
		if err := stream.PublishToStream(cmd.Context(), domain.StreamDatasetReload, event); err != nil {
			return err
		}

		fmt.Fprintf(out, "Reload requested: %s\n", event.RequestID)
		return nil
	},
}
