package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendActivity(ctx context.Context, data ActivityEventData) error {
	err := r.appendEvent(ctx, func(seq int64) (string, []any) {
		return entsql.Dialect(dialect.SQLite).
			Insert(tableActivity).
			Columns("sequence", "timestamp", "kind", "lesson_id", "detail", "xp", "aura").
			Values(seq, millis(data.Timestamp), data.Kind, data.LessonID, data.Detail, data.XP, data.Aura).
			Query()
	})
	if err != nil {
		return fmt.Errorf("save activity event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryActivity(ctx context.Context, opts QueryOpts) ([]ActivityEventRecord, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select("id", "sequence", "timestamp", "kind", "lesson_id", "detail", "xp", "aura").
		From(entsql.Table(tableActivity))
	applyQueryOpts(sel, opts)

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query activity events: %w", err)
	}
	defer rows.Close()

	var out []ActivityEventRecord
	for rows.Next() {
		var (
			rec ActivityEventRecord
			ts  int64
		)
		if err := rows.Scan(&rec.ID, &rec.Sequence, &ts, &rec.Kind, &rec.LessonID, &rec.Detail, &rec.XP, &rec.Aura); err != nil {
			return nil, fmt.Errorf("scan activity event: %w", err)
		}
		rec.Timestamp = time.UnixMilli(ts)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// applyQueryOpts adds the QueryOpts filters, newest-first ordering and the
// limit to sel.
func applyQueryOpts(sel *entsql.Selector, opts QueryOpts) {
	var preds []*entsql.Predicate
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", opts.From.UnixMilli()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", opts.To.UnixMilli()))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	sel.OrderBy(entsql.Desc("sequence"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
}
