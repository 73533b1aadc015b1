package commands

import (
	"context"
	"fmt"
	"log"
	"time"

	"connectly/config"
	"connectly/database"
	"connectly/database/memory"
	"connectly/services"
)

// openStores connects the configured backend. The returned close func is
// never nil.
func openStores(ctx context.Context, cfg *config.Config) (services.Stores, func(), error) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Println("Using in-memory store, data is lost on exit")
		db := memory.New()
		return services.Stores{
			Users:         db.Users(),
			Friends:       db.Friends(),
			Conversations: db.Conversations(),
			Messages:      db.Messages(),
			Posts:         db.Posts(),
			Comments:      db.Comments(),
			Likes:         db.Likes(),
			Notifications: db.Notifications(),
			Media:         db.Media(),
		}, func() {}, nil
	}

	m, err := openMongo(ctx, cfg)
	if err != nil {
		return services.Stores{}, func() {}, err
	}
	closeFn := func() { closeMongo(m) }

	media, err := database.NewGridFSMedia(m)
	if err != nil {
		closeFn()
		return services.Stores{}, func() {}, fmt.Errorf("open media bucket: %w", err)
	}
	return services.Stores{
		Users:         database.NewUserStore(m),
		Friends:       database.NewFriendStore(m),
		Conversations: database.NewConversationStore(m),
		Messages:      database.NewMessageStore(m),
		Posts:         database.NewPostStore(m),
		Comments:      database.NewCommentStore(m),
		Likes:         database.NewLikeStore(m),
		Notifications: database.NewNotificationStore(m),
		Media:         media,
	}, closeFn, nil
}

// openMongo connects and makes sure the unique indexes exist; the
// get-or-create and toggle paths depend on them.
func openMongo(ctx context.Context, cfg *config.Config) (*database.Mongo, error) {
	m, err := database.DBinstance(ctx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := m.EnsureIndexes(ctx); err != nil {
		closeMongo(m)
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}
	return m, nil
}

func closeMongo(m *database.Mongo) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.Close(ctx); err != nil {
		log.Printf("Error disconnecting from MongoDB: %v", err)
	}
}
