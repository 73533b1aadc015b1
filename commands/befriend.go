package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"connectly/config"
	"connectly/services"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var befriendCmd = &cobra.Command{
	Use:   "befriend <userA> <userB>",
	Short: "Create a friendship between two users (id or email)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.StoreDriver != config.DriverMongo {
			return errors.New("befriend needs STORE_DRIVER=mongo")
		}
		stores, closeStores, err := openStores(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeStores()

		a, err := resolveUser(cmd.Context(), stores.Users, args[0])
		if err != nil {
			return err
		}
		b, err := resolveUser(cmd.Context(), stores.Users, args[1])
		if err != nil {
			return err
		}

		edge, err := services.NewFriendService(stores.Users, stores.Friends).Befriend(cmd.Context(), a, b)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "friends: %s (%s)\n", edge.PairKey, edge.ID.Hex())
		return nil
	},
}

// resolveUser accepts a hex id or an email address.
func resolveUser(ctx context.Context, users services.UserStore, ref string) (primitive.ObjectID, error) {
	if id, err := primitive.ObjectIDFromHex(ref); err == nil {
		return id, nil
	}
	if !strings.Contains(ref, "@") {
		return primitive.NilObjectID, fmt.Errorf("%q is neither a user id nor an email", ref)
	}
	user, err := users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(ref)))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("look up %s: %w", ref, err)
	}
	return user.ID, nil
}
