package container

import (
	"context"
	"fmt"

	"github.com/oksasatya/devconnector-api/config"
	"github.com/oksasatya/devconnector-api/internal/infrastructure/memory"
	"github.com/oksasatya/devconnector-api/internal/infrastructure/postgres"
)

// OpenStore selects the aggregate store named by c.StoreDriver, runs
// migrations when it is Postgres, and installs the repositories.
// The returned func releases the store.
func OpenStore(ctx context.Context, c *config.Config) (func(), error) {
	log := GetLogger()
	if c.UseMemoryStore() {
		s := memory.NewStore()
		SetRepositories(Repositories{Users: s.Users(), Profiles: s.Profiles(), Posts: s.Posts()})
		log.Warn("using in-memory store; data is lost on restart")
		return func() {}, nil
	}
	if c.StoreDriver != "postgres" {
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	pool, err := postgres.NewPool(ctx, c.PostgresDSN(), postgres.PoolOptions{
		MaxConns:    c.DBMaxConns,
		MinConns:    c.DBMinConns,
		MaxConnLife: c.DBMaxConnLife,
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := postgres.Migrate(c.PostgresDSN(), c.MigrationsDir, log); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	SetPGPool(pool)
	SetRepositories(Repositories{
		Users:    postgres.NewUserRepository(pool),
		Profiles: postgres.NewProfileRepository(pool),
		Posts:    postgres.NewPostRepository(pool),
	})
	return pool.Close, nil
}
