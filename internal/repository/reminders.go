package repository

import (
	"context"
	"time"

	"policyvault/internal/model"
)

// CreateReminder inserts a pending reminder. It reports false when one already
// exists for the same policy and lead time.
func (s *Store) CreateReminder(ctx context.Context, policyID string, reminderDate time.Time, daysBefore int) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
    INSERT INTO reminders (policy_id, reminder_date, days_before, status)
    VALUES ($1, $2::date, $3, 'pending')
    ON CONFLICT (policy_id, days_before) DO NOTHING
  `, policyID, reminderDate, daysBefore)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) ListReminders(ctx context.Context, policyID string) ([]model.Reminder, error) {
	rows, err := s.pool.Query(ctx, `
    SELECT id, policy_id, reminder_date, days_before, sent_at, status, created_at
    FROM reminders
    WHERE policy_id = $1
    ORDER BY days_before DESC
  `, policyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reminders := []model.Reminder{}
	for rows.Next() {
		var (
			r   model.Reminder
			day time.Time
		)
		if err := rows.Scan(&r.ID, &r.PolicyID, &day, &r.DaysBefore, &r.SentAt, &r.Status, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.ReminderDate = model.Date(day)
		reminders = append(reminders, r)
	}
	return reminders, rows.Err()
}
