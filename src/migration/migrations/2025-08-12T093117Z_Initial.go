package migrations

import (
	"context"
	"time"

	"github.com/astr0n0mer/linkli/src/migration/types"
	"github.com/astr0n0mer/linkli/src/utils"
	"github.com/jackc/pgx/v5"
)

func init() {
	registerMigration(Initial{})
}

type Initial struct{}

func (m Initial) Version() types.MigrationVersion {
	return types.MigrationVersion(time.Date(2025, 8, 12, 9, 31, 17, 0, time.UTC))
}

func (m Initial) Name() string {
	return "Initial"
}

func (m Initial) Description() string {
	return "Creates the profile and link tables"
}

func (m Initial) Up(ctx context.Context, tx pgx.Tx) error {
	utils.Must1(tx.Exec(ctx,
		`
		CREATE TABLE profile (
			user_id VARCHAR(64) PRIMARY KEY,
			bio TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE link (
			id UUID PRIMARY KEY,
			owner_id VARCHAR(64) NOT NULL,
			title TEXT NOT NULL,
			url TEXT NOT NULL,
			slug TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			visibility TEXT NOT NULL DEFAULT 'public',
			display_order INT NOT NULL DEFAULT 0,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);

		CREATE INDEX link_owner ON link (owner_id);
		CREATE UNIQUE INDEX link_owner_slug ON link (owner_id, slug);
		`,
	))
	return nil
}

func (m Initial) Down(ctx context.Context, tx pgx.Tx) error {
	utils.Must1(tx.Exec(ctx,
		`
		DROP TABLE link;
		DROP TABLE profile;
		`,
	))
	return nil
}
