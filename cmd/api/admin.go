package main

import (
	"context"
	"fmt"

	"quikmart/internal/database"
	"quikmart/internal/repository"
	"quikmart/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// quikmart promote <email> grants the admin role. There is no HTTP route for
// this; the account picks up the role on its next signin.
var promoteCmd = &cobra.Command{
	Use:   "promote <email>",
	Short: "Grant the admin role to an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Mongo.Timeout)
		defer cancel()

		db, err := connectMongo(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer db.Close(context.Background())

		users := service.NewUserService(repository.NewUserRepository(db.DB()))
		if err := users.Promote(ctx, args[0]); err != nil {
			return err
		}

		log.Info("User promoted to admin", zap.String("email", args[0]))
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin\n", args[0])
		return nil
	},
}

// quikmart indexes creates the collection indexes without starting the server
var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create MongoDB indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Mongo.Timeout)
		defer cancel()

		db, err := connectMongo(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer db.Close(context.Background())

		if err := database.EnsureIndexes(ctx, db.DB(), log); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "indexes are up to date")
		return nil
	},
}
