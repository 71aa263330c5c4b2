package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/shared"
)

var _ models.Repository[*models.SyncRun] = (*RunRepository)(nil)

// RunRepository implements models.Repository[*models.SyncRun] for run history.
//
// A run and its list outcomes are written in one transaction.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

const runColumns = `id, sequence, left_name, right_name, status, summary, error, started_at, finished_at, created_at, updated_at`

// Create inserts a finished run with a generated ID and sequence
func (r *RunRepository) Create(run *models.SyncRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "sync_runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id := shared.GenerateID()

	var finishedAt any
	if !run.FinishedAt().IsZero() {
		finishedAt = run.FinishedAt()
	}

	_, err = tx.Exec(
		`INSERT INTO sync_runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		sequence,
		run.LeftName(),
		run.RightName(),
		string(run.Status()),
		run.Summary(),
		run.ErrorMessage(),
		run.StartedAt(),
		finishedAt,
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i, o := range run.Outcomes() {
		_, err := tx.Exec(`
			INSERT INTO list_outcomes (run_id, position, name, added_left, added_right, total_left, total_right, changed)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, id, i, o.Name, o.AddedLeft, o.AddedRight, o.TotalLeft, o.TotalRight, o.Changed)
		if err != nil {
			return fmt.Errorf("failed to insert outcome for list %s: %w", o.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	run.SetID(id)
	run.SetSequence(sequence)
	return nil
}

// Get retrieves a run by ID with its outcomes
func (r *RunRepository) Get(id string) (*models.SyncRun, error) {
	run, err := scanRun(r.db.QueryRow(`SELECT `+runColumns+` FROM sync_runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	outcomes, err := r.outcomes(run.ID())
	if err != nil {
		return nil, err
	}
	run.SetOutcomes(outcomes)
	return run, nil
}

// List retrieves runs newest first.
//
// Supported criteria: "status" (string) and "limit" (int, 0 for all).
func (r *RunRepository) List(criteria map[string]any) ([]*models.SyncRun, error) {
	query := `SELECT ` + runColumns + ` FROM sync_runs WHERE 1 = 1`
	args := []any{}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.SyncRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	rows.Close()

	for _, run := range runs {
		outcomes, err := r.outcomes(run.ID())
		if err != nil {
			return nil, err
		}
		run.SetOutcomes(outcomes)
	}

	return runs, nil
}

// Recent returns at most limit runs, newest first.
func (r *RunRepository) Recent(limit int) ([]*models.SyncRun, error) {
	return r.List(map[string]any{"limit": limit})
}

func (r *RunRepository) outcomes(runID string) ([]models.ListOutcome, error) {
	rows, err := r.db.Query(`
		SELECT name, added_left, added_right, total_left, total_right, changed
		FROM list_outcomes
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []models.ListOutcome
	for rows.Next() {
		var o models.ListOutcome
		if err := rows.Scan(&o.Name, &o.AddedLeft, &o.AddedRight, &o.TotalLeft, &o.TotalRight, &o.Changed); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return outcomes, nil
}

// scanner is satisfied by both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*models.SyncRun, error) {
	var (
		id         string
		sequence   int
		leftName   string
		rightName  string
		status     string
		summary    string
		errMessage string
		startedAt  time.Time
		finishedAt sql.NullTime
		createdAt  time.Time
		updatedAt  time.Time
	)

	err := row.Scan(&id, &sequence, &leftName, &rightName, &status, &summary, &errMessage, &startedAt, &finishedAt, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run := models.NewSyncRun(sequence, leftName, rightName, startedAt)
	run.SetID(id)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)
	run.SetResult(models.RunStatus(status), summary, errMessage, finishedAt.Time)
	return run, nil
}
