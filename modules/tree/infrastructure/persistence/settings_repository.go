package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/routenest/routenest/modules/tree/domain/node"
	"github.com/routenest/routenest/modules/tree/infrastructure/persistence/models"
	"github.com/routenest/routenest/pkg/composables"
)

var (
	ErrSettingsNotFound = errors.New("node settings not found")
)

const (
	settingsFindQuery = `
        SELECT
            s.id,
            s.version,
            s.node_id,
            s.user_id,
            s.open,
            s.displayed
        FROM tree_node_settings s`

	settingsInsertQuery = `
        INSERT INTO tree_node_settings (id, version, node_id, user_id, open, displayed)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (node_id, user_id) DO NOTHING
        RETURNING id, version, node_id, user_id, open, displayed`

	settingsUpdateQuery = `
        UPDATE tree_node_settings
        SET version = version + 1, open = $2, displayed = $3
        WHERE id = $1
        RETURNING id, version, node_id, user_id, open, displayed`

	settingsDeleteByNodeIDsQuery = `DELETE FROM tree_node_settings WHERE node_id = ANY($1)`
)

type PgSettingsRepository struct{}

func NewSettingsRepository() node.SettingsRepository {
	return &PgSettingsRepository{}
}

func (g *PgSettingsRepository) queryOne(ctx context.Context, query string, args ...any) (*node.Settings, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var m models.TreeNodeSettings
	if err := tx.QueryRow(ctx, query, args...).Scan(
		&m.ID,
		&m.Version,
		&m.NodeID,
		&m.UserID,
		&m.Open,
		&m.Displayed,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSettingsNotFound
		}
		return nil, errors.Wrap(err, "failed to query node settings")
	}
	return toDomainSettings(&m), nil
}

func (g *PgSettingsRepository) GetByID(ctx context.Context, id uuid.UUID) (*node.Settings, error) {
	return g.queryOne(ctx, settingsFindQuery+" WHERE s.id = $1", id)
}

// GetOrCreate inserts def unless a row for its (node, user) pair already
// exists. The insert and the fallback read are two statements; the unique
// constraint keeps concurrent first accesses from producing duplicates.
func (g *PgSettingsRepository) GetOrCreate(ctx context.Context, def *node.Settings) (*node.Settings, error) {
	m := toDBSettings(def)
	created, err := g.queryOne(ctx, settingsInsertQuery, m.ID, m.Version, m.NodeID, m.UserID, m.Open, m.Displayed)
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, ErrSettingsNotFound) {
		return nil, err
	}
	return g.queryOne(ctx, settingsFindQuery+" WHERE s.node_id = $1 AND s.user_id = $2", m.NodeID, m.UserID)
}

func (g *PgSettingsRepository) Save(ctx context.Context, settings *node.Settings) (*node.Settings, error) {
	m := toDBSettings(settings)
	return g.queryOne(ctx, settingsUpdateQuery, m.ID, m.Open, m.Displayed)
}

func (g *PgSettingsRepository) DeleteByNodeIDs(ctx context.Context, nodeIDs []uuid.UUID) error {
	if len(nodeIDs) == 0 {
		return nil
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, settingsDeleteByNodeIDsQuery, nodeIDs); err != nil {
		return errors.Wrap(err, "failed to delete node settings")
	}
	return nil
}
