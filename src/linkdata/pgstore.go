package linkdata

import (
	"context"
	"errors"

	"github.com/astr0n0mer/linkli/src/db"
	"github.com/astr0n0mer/linkli/src/models"
	"github.com/astr0n0mer/linkli/src/oops"
	"github.com/jackc/pgx/v5/pgconn"
)

// A Store backed by the Postgres tables created in src/migration/migrations.
type PGStore struct {
	Conn db.ConnOrTx
}

var _ Store = &PGStore{}

func NewPGStore(conn db.ConnOrTx) *PGStore {
	return &PGStore{Conn: conn}
}

func (s *PGStore) FindLinksByOwner(ctx context.Context, ownerID string) ([]*models.Link, error) {
	links, err := db.Query[models.Link](ctx, s.Conn,
		`
		SELECT $columns
		FROM link
		WHERE owner_id = $1
		`,
		ownerID,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch links for owner")
	}
	return links, nil
}

func (s *PGStore) FindLink(ctx context.Context, id string) (*models.Link, error) {
	link, err := db.QueryOne[models.Link](ctx, s.Conn,
		`
		SELECT $columns
		FROM link
		WHERE id = $1
		`,
		id,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, db.NotFound
		}
		return nil, oops.New(err, "failed to fetch link")
	}
	return link, nil
}

func (s *PGStore) InsertLink(ctx context.Context, link *models.Link) error {
	_, err := s.Conn.Exec(ctx,
		`
		INSERT INTO link (id, owner_id, title, url, slug, category, visibility, display_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`,
		link.ID,
		link.OwnerID,
		link.Title,
		link.URL,
		link.Slug,
		link.Category,
		link.Visibility,
		link.Order,
		link.CreatedAt,
		link.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlug
		}
		return oops.New(err, "failed to insert link")
	}
	return nil
}

func (s *PGStore) UpdateLinkFields(ctx context.Context, id string, patch LinkPatch) (*models.Link, error) {
	var qb db.QueryBuilder
	qb.Add(`UPDATE link SET updated_at = NOW()`)
	if patch.Title != nil {
		qb.Add(`, title = $?`, *patch.Title)
	}
	if patch.URL != nil {
		qb.Add(`, url = $?`, *patch.URL)
	}
	if patch.Slug != nil {
		qb.Add(`, slug = $?`, *patch.Slug)
	}
	if patch.Category != nil {
		qb.Add(`, category = $?`, *patch.Category)
	}
	if patch.Visibility != nil {
		qb.Add(`, visibility = $?`, string(*patch.Visibility))
	}
	if patch.Order != nil {
		qb.Add(`, display_order = $?`, *patch.Order)
	}
	qb.Add(`WHERE id = $?`, id)
	qb.Add(`RETURNING $columns`)

	link, err := db.QueryOne[models.Link](ctx, s.Conn, qb.String(), qb.Args()...)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, db.NotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrDuplicateSlug
		}
		return nil, oops.New(err, "failed to update link")
	}
	return link, nil
}

func (s *PGStore) DeleteLink(ctx context.Context, id string) (bool, error) {
	tag, err := s.Conn.Exec(ctx, `DELETE FROM link WHERE id = $1`, id)
	if err != nil {
		return false, oops.New(err, "failed to delete link")
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PGStore) DeleteLinksByOwner(ctx context.Context, ownerID string) error {
	_, err := s.Conn.Exec(ctx, `DELETE FROM link WHERE owner_id = $1`, ownerID)
	if err != nil {
		return oops.New(err, "failed to delete links for owner")
	}
	return nil
}

func (s *PGStore) FindProfile(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := db.QueryOne[models.Profile](ctx, s.Conn,
		`
		SELECT $columns
		FROM profile
		WHERE user_id = $1
		`,
		userID,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, db.NotFound
		}
		return nil, oops.New(err, "failed to fetch profile")
	}
	return profile, nil
}

func (s *PGStore) UpsertProfile(ctx context.Context, profile *models.Profile) error {
	_, err := s.Conn.Exec(ctx,
		`
		INSERT INTO profile (user_id, bio)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET bio = EXCLUDED.bio
		`,
		profile.UserID,
		profile.Bio,
	)
	if err != nil {
		return oops.New(err, "failed to upsert profile")
	}
	return nil
}

func (s *PGStore) DeleteProfile(ctx context.Context, userID string) error {
	_, err := s.Conn.Exec(ctx, `DELETE FROM profile WHERE user_id = $1`, userID)
	if err != nil {
		return oops.New(err, "failed to delete profile")
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
