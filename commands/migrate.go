package commands

import (
	"errors"
	"log"

	"connectly/config"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the MongoDB indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.StoreDriver != config.DriverMongo {
			return errors.New("migrate needs STORE_DRIVER=mongo")
		}
		m, err := openMongo(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeMongo(m)
		log.Println("Indexes are up to date")
		return nil
	},
}
