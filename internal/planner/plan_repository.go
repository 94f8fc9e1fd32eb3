package planner

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// PlanRepository persists meal plans one day per row, keyed by user and
// date. Each day's slot map is stored as a JSON document, so schema churn
// in the plan shape never needs a migration. Writes are last-write-wins.
type PlanRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(d *sql.DB) *PlanRepository {
	return &PlanRepository{db: d}
}

// Upsert stores one day of a user's plan, replacing any existing row for
// the same (user, date) pair.
func (r *PlanRepository) Upsert(ctx context.Context, userID, date string, day DayPlan) error {
	dayJSON, err := json.Marshal(day)
	if err != nil {
		return fmt.Errorf("failed to marshal day plan to JSON: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO meal_plans (user_id, plan_date, plan_data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, plan_date) DO UPDATE SET
			plan_data = excluded.plan_data,
			updated_at = excluded.updated_at`,
		userID, date, string(dayJSON), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save plan day: %w", err)
	}
	return nil
}

// SaveGenerated stores every day of a generated plan for the user.
func (r *PlanRepository) SaveGenerated(ctx context.Context, userID string, plan GeneratedPlan) error {
	for _, date := range plan.SortedDates() {
		if err := r.Upsert(ctx, userID, date, plan[date]); err != nil {
			return err
		}
	}
	return nil
}

// FindRange retrieves the user's plan days between from and to inclusive
// (ISO dates). Days with no row are simply absent from the result.
func (r *PlanRepository) FindRange(ctx context.Context, userID, from, to string) (GeneratedPlan, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT plan_date, plan_data FROM meal_plans
		WHERE user_id = ? AND plan_date >= ? AND plan_date <= ?
		ORDER BY plan_date`, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query plan range: %w", err)
	}
	defer rows.Close()

	plan := GeneratedPlan{}
	for rows.Next() {
		var date, data string
		if err := rows.Scan(&date, &data); err != nil {
			return nil, fmt.Errorf("failed to scan plan row: %w", err)
		}
		var day DayPlan
		if err := json.Unmarshal([]byte(data), &day); err != nil {
			return nil, fmt.Errorf("failed to unmarshal plan day %s: %w", date, err)
		}
		plan[date] = day
	}
	return plan, rows.Err()
}

// Delete removes one day of a user's plan. Deleting a missing day is not
// an error.
func (r *PlanRepository) Delete(ctx context.Context, userID, date string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM meal_plans WHERE user_id = ? AND plan_date = ?`, userID, date)
	if err != nil {
		return fmt.Errorf("failed to delete plan day: %w", err)
	}
	return nil
}
