package queries

import (
	"context"
	"database/sql"
	"errors"

	"github.com/callwise/staffing/pkg/models"
)

var ErrQueueNotFound = errors.New("queue not found")

type QueueRepository struct {
	db *sql.DB
}

func NewQueueRepository(db *sql.DB) *QueueRepository {
	return &QueueRepository{db: db}
}

func (r *QueueRepository) GetByUserID(ctx context.Context, userID int) ([]*models.Queue, error) {
	query := `
		SELECT id, name, status, config, user_id, created_at, updated_at
		FROM queues
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var queues []*models.Queue
	for rows.Next() {
		queue, err := scanQueue(rows)
		if err != nil {
			return nil, err
		}
		queues = append(queues, queue)
	}

	return queues, rows.Err()
}

func (r *QueueRepository) GetByID(ctx context.Context, id string) (*models.Queue, error) {
	query := `
		SELECT id, name, status, config, user_id, created_at, updated_at
		FROM queues
		WHERE id = $1`

	queue, err := scanQueueRow(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrQueueNotFound
	}
	return queue, err
}

func (r *QueueRepository) Create(ctx context.Context, queue *models.Queue) error {
	configJSON, err := queue.ConfigJSON()
	if err != nil {
		return err
	}

	query := `
		INSERT INTO queues (id, name, status, config, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		queue.ID,
		queue.Name,
		queue.Status,
		configJSON,
		queue.UserID,
	).Scan(&queue.CreatedAt, &queue.UpdatedAt)
}

func (r *QueueRepository) Update(ctx context.Context, queue *models.Queue) error {
	configJSON, err := queue.ConfigJSON()
	if err != nil {
		return err
	}

	query := `
		UPDATE queues
		SET name = $2, status = $3, config = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err = r.db.QueryRowContext(ctx, query,
		queue.ID,
		queue.Name,
		queue.Status,
		configJSON,
	).Scan(&queue.UpdatedAt)

	if err == sql.ErrNoRows {
		return ErrQueueNotFound
	}
	return err
}

func (r *QueueRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM queues WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrQueueNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanQueue(rows *sql.Rows) (*models.Queue, error) {
	return scanQueueRow(rows)
}

func scanQueueRow(row rowScanner) (*models.Queue, error) {
	var queue models.Queue
	var configData []byte

	err := row.Scan(
		&queue.ID,
		&queue.Name,
		&queue.Status,
		&configData,
		&queue.UserID,
		&queue.CreatedAt,
		&queue.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := queue.ParseConfig(configData); err != nil {
		return nil, err
	}

	// Empty config objects are noise in responses
	if queue.Config != nil && *queue.Config == (models.QueueConfig{}) {
		queue.Config = nil
	}

	return &queue, nil
}
