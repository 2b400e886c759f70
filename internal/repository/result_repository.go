package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/docquiz/docquiz-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StoredResult is a persisted exam result row.
type StoredResult struct {
	ID              int64           `json:"id"`
	SessionID       uuid.UUID       `json:"session_id"`
	Source          string          `json:"source"`
	Total           int             `json:"total"`
	Correct         int             `json:"correct"`
	Incorrect       int             `json:"incorrect"`
	Unattempted     int             `json:"unattempted"`
	Percentage      int             `json:"percentage"`
	TimeTaken       int             `json:"time_taken"`
	Answers         json.RawMessage `json:"answers"`
	MarkedQuestions json.RawMessage `json:"marked_questions"`
	SubmittedAt     time.Time       `json:"submitted_at"`
}

// ResultRepository handles exam result data access.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Insert stores a single result. A requeued duplicate is a no-op thanks to
// the session_id conflict clause.
func (r *ResultRepository) Insert(ctx context.Context, res *model.ExamResult) error {
	answers, err := json.Marshal(res.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	marked, err := json.Marshal(res.MarkedQuestions)
	if err != nil {
		return fmt.Errorf("marshal marked questions: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO exam_results
		   (session_id, source, total, correct, incorrect, unattempted,
		    percentage, time_taken, answers, marked_questions, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (session_id) DO NOTHING`,
		res.SessionID, res.Source, res.Total, res.Correct, res.Incorrect,
		res.Unattempted, res.Percentage, res.TimeTaken, answers, marked,
		res.SubmittedAt,
	)
	return err
}

// BulkInsert stores a batch of results with a single UNNEST statement.
func (r *ResultRepository) BulkInsert(ctx context.Context, batch []*model.ExamResult) error {
	n := len(batch)
	if n == 0 {
		return nil
	}

	sessionIDs := make([]uuid.UUID, 0, n)
	sources := make([]string, 0, n)
	totals := make([]int, 0, n)
	corrects := make([]int, 0, n)
	incorrects := make([]int, 0, n)
	unattempteds := make([]int, 0, n)
	percentages := make([]int, 0, n)
	timeTakens := make([]int, 0, n)
	answers := make([]string, 0, n)
	marks := make([]string, 0, n)
	submittedAts := make([]time.Time, 0, n)

	for _, res := range batch {
		ans, err := json.Marshal(res.Answers)
		if err != nil {
			return fmt.Errorf("marshal answers: %w", err)
		}
		mk, err := json.Marshal(res.MarkedQuestions)
		if err != nil {
			return fmt.Errorf("marshal marked questions: %w", err)
		}

		sessionIDs = append(sessionIDs, res.SessionID)
		sources = append(sources, res.Source)
		totals = append(totals, res.Total)
		corrects = append(corrects, res.Correct)
		incorrects = append(incorrects, res.Incorrect)
		unattempteds = append(unattempteds, res.Unattempted)
		percentages = append(percentages, res.Percentage)
		timeTakens = append(timeTakens, res.TimeTaken)
		answers = append(answers, string(ans))
		marks = append(marks, string(mk))
		submittedAts = append(submittedAts, res.SubmittedAt)
	}

	query := `
		INSERT INTO exam_results
		  (session_id, source, total, correct, incorrect, unattempted,
		   percentage, time_taken, answers, marked_questions, submitted_at)
		SELECT
			u.session_id, u.source, u.total, u.correct, u.incorrect,
			u.unattempted, u.percentage, u.time_taken,
			u.answers::jsonb, u.marked_questions::jsonb, u.submitted_at
		FROM UNNEST(
			$1::uuid[],
			$2::text[],
			$3::int[],
			$4::int[],
			$5::int[],
			$6::int[],
			$7::int[],
			$8::int[],
			$9::text[],
			$10::text[],
			$11::timestamptz[]
		) AS u (session_id, source, total, correct, incorrect, unattempted,
		        percentage, time_taken, answers, marked_questions, submitted_at)
		ON CONFLICT (session_id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		sessionIDs, sources, totals, corrects, incorrects, unattempteds,
		percentages, timeTakens, answers, marks, submittedAts,
	)
	return err
}

// ListRecent returns persisted results newest-first with pagination.
func (r *ResultRepository) ListRecent(ctx context.Context, page, perPage int) ([]StoredResult, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM exam_results`).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, source, total, correct, incorrect, unattempted,
		        percentage, time_taken, answers, marked_questions, submitted_at
		 FROM exam_results
		 ORDER BY submitted_at DESC
		 LIMIT $1 OFFSET $2`, perPage, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []StoredResult
	for rows.Next() {
		var res StoredResult
		if err := rows.Scan(
			&res.ID, &res.SessionID, &res.Source, &res.Total, &res.Correct,
			&res.Incorrect, &res.Unattempted, &res.Percentage, &res.TimeTaken,
			&res.Answers, &res.MarkedQuestions, &res.SubmittedAt,
		); err != nil {
			return nil, 0, err
		}
		results = append(results, res)
	}

	return results, total, rows.Err()
}
