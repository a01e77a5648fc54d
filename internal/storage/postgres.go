package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"arc56/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS deployments (
	app_id             BIGINT PRIMARY KEY,
	app_address        TEXT NOT NULL,
	contract           TEXT NOT NULL,
	created_at_round   BIGINT NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL,
	tx_id              TEXT NOT NULL,
	creator            TEXT NOT NULL,
	method             TEXT NOT NULL,
	template_variables JSONB
);

CREATE TABLE IF NOT EXISTS call_activities (
	activity_id    TEXT PRIMARY KEY,
	app_id         BIGINT NOT NULL,
	contract       TEXT NOT NULL,
	tx_id          TEXT NOT NULL,
	round          BIGINT NOT NULL,
	timestamp      TIMESTAMPTZ NOT NULL,
	sender         TEXT NOT NULL,
	method         TEXT NOT NULL,
	action         TEXT NOT NULL,
	success        BOOLEAN NOT NULL,
	return_value   JSONB,
	failure_reason TEXT
);

CREATE INDEX IF NOT EXISTS call_activities_app_round ON call_activities (app_id, round DESC);
`

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, databaseURL string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create connection pool")
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	return &PostgresRepository{
		pool: pool,
	}, nil
}

// Migrate creates the tables if they do not exist
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to migrate schema")
	}
	return nil
}

// SaveDeployment saves a deployment to the database
func (r *PostgresRepository) SaveDeployment(ctx context.Context, d *models.Deployment) error {
	templateJSON, err := json.Marshal(d.TemplateVariables)
	if err != nil {
		return errors.Wrap(err, "failed to marshal template_variables")
	}

	query := `
		INSERT INTO deployments (
			app_id, app_address, contract, created_at_round, created_at,
			tx_id, creator, method, template_variables
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (app_id) DO NOTHING
	`

	_, err = r.pool.Exec(ctx, query,
		int64(d.AppID),
		d.AppAddress,
		d.Contract,
		int64(d.CreatedAtRound),
		d.CreatedAt,
		d.TxID,
		d.Creator,
		d.Method,
		templateJSON,
	)
	if err != nil {
		return errors.Wrap(err, "failed to save deployment")
	}

	return nil
}

const deploymentColumns = `
	app_id, app_address, contract, created_at_round, created_at,
	tx_id, creator, method, template_variables
`

func scanDeployment(row pgx.Row) (*models.Deployment, error) {
	var (
		d            models.Deployment
		appID, round int64
		templateJSON []byte
	)
	err := row.Scan(
		&appID,
		&d.AppAddress,
		&d.Contract,
		&round,
		&d.CreatedAt,
		&d.TxID,
		&d.Creator,
		&d.Method,
		&templateJSON,
	)
	if err != nil {
		return nil, err
	}
	d.AppID = uint64(appID)
	d.CreatedAtRound = uint64(round)

	if len(templateJSON) > 0 {
		if err := json.Unmarshal(templateJSON, &d.TemplateVariables); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal template_variables")
		}
	}
	return &d, nil
}

// GetDeployment retrieves a deployment by application id
func (r *PostgresRepository) GetDeployment(ctx context.Context, appID uint64) (*models.Deployment, error) {
	query := `SELECT ` + deploymentColumns + ` FROM deployments WHERE app_id = $1`

	d, err := scanDeployment(r.pool.QueryRow(ctx, query, int64(appID)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrapf(ErrNotFound, "deployment %d", appID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get deployment")
	}
	return d, nil
}

// ListDeployments lists deployments, newest first, with pagination
func (r *PostgresRepository) ListDeployments(ctx context.Context, limit, offset int) ([]*models.Deployment, error) {
	query := `SELECT ` + deploymentColumns + ` FROM deployments
		ORDER BY created_at_round DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list deployments")
	}
	defer rows.Close()

	var deployments []*models.Deployment
	for rows.Next() {
		d, err := scanDeployment(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan deployment")
		}
		deployments = append(deployments, d)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating deployments")
	}

	return deployments, nil
}

// SaveActivity saves a call activity to the database
func (r *PostgresRepository) SaveActivity(ctx context.Context, a *models.CallActivity) error {
	returnJSON, err := json.Marshal(a.ReturnValue)
	if err != nil {
		return errors.Wrap(err, "failed to marshal return_value")
	}

	query := `
		INSERT INTO call_activities (
			activity_id, app_id, contract, tx_id, round, timestamp,
			sender, method, action, success, return_value, failure_reason
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (activity_id) DO NOTHING
	`

	_, err = r.pool.Exec(ctx, query,
		a.ActivityID,
		int64(a.AppID),
		a.Contract,
		a.TxID,
		int64(a.Round),
		a.Timestamp,
		a.Sender,
		a.Method,
		a.Action,
		a.Success,
		returnJSON,
		a.FailureReason,
	)
	if err != nil {
		return errors.Wrap(err, "failed to save call activity")
	}

	return nil
}

// ListActivities lists call activities matching the filter, newest first
func (r *PostgresRepository) ListActivities(ctx context.Context, f models.ActivityFilter) ([]*models.CallActivity, error) {
	var (
		where []string
		args  []interface{}
	)
	add := func(clause string, v interface{}) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if f.AppID != 0 {
		add("app_id = $%d", int64(f.AppID))
	}
	if f.Method != "" {
		add("method = $%d", f.Method)
	}
	if f.Sender != "" {
		add("sender = $%d", f.Sender)
	}
	if f.SuccessOnly {
		where = append(where, "success")
	}

	query := `
		SELECT
			activity_id, app_id, contract, tx_id, round, timestamp,
			sender, method, action, success, return_value, failure_reason
		FROM call_activities`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	var limit interface{} = f.Limit
	if f.Limit <= 0 {
		limit = nil // LIMIT NULL is unbounded
	}
	args = append(args, limit, f.Offset)
	query += fmt.Sprintf(" ORDER BY round DESC, activity_id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list call activities")
	}
	defer rows.Close()

	var activities []*models.CallActivity
	for rows.Next() {
		var (
			a            models.CallActivity
			appID, round int64
			returnJSON   []byte
			reason       *string
		)
		err := rows.Scan(
			&a.ActivityID,
			&appID,
			&a.Contract,
			&a.TxID,
			&round,
			&a.Timestamp,
			&a.Sender,
			&a.Method,
			&a.Action,
			&a.Success,
			&returnJSON,
			&reason,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan call activity")
		}
		a.AppID = uint64(appID)
		a.Round = uint64(round)
		if reason != nil {
			a.FailureReason = *reason
		}
		if len(returnJSON) > 0 {
			if err := json.Unmarshal(returnJSON, &a.ReturnValue); err != nil {
				return nil, errors.Wrap(err, "failed to unmarshal return_value")
			}
		}
		activities = append(activities, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating call activities")
	}

	return activities, nil
}

// Ping checks if the database connection is alive
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}
