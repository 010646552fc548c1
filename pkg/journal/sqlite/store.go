package sqlite

import (
	"codeberg.org/miketth/dqswitch/pkg/dqswitch"
	"codeberg.org/miketth/dqswitch/pkg/journal/sqlite/migrations"
	"context"
	"database/sql"
	"fmt"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"time"
)

// MaxEntries is how many switches are kept, older ones are pruned on insert.
const MaxEntries = 1000

type Journal struct {
	db      *sql.DB
	querier *Queries
}

func NewJournal(filename string, log *zap.SugaredLogger) (*Journal, error) {
	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := migrations.Migrate(db, log); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Journal{
		db:      db,
		querier: New(db),
	}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) Record(entry dqswitch.Entry) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := j.querier.InsertSwitch(ctx, InsertSwitchParams{
		CreatedAt: entry.Time.UTC(),
		Target:    int64(entry.Target),
		Reason:    entry.Reason,
		Error:     entry.Err,
	}); err != nil {
		return fmt.Errorf("sqlite insert: %w", err)
	}

	if err := j.querier.PruneSwitches(ctx, MaxEntries); err != nil {
		return fmt.Errorf("sqlite prune: %w", err)
	}

	return nil
}

func (j *Journal) Recent(limit int) ([]dqswitch.Entry, error) {
	rows, err := j.querier.RecentSwitches(context.Background(), int64(limit))
	if err != nil {
		return nil, fmt.Errorf("sqlite select: %w", err)
	}

	ret := make([]dqswitch.Entry, 0, len(rows))
	for _, row := range rows {
		ret = append(ret, dqswitch.Entry{
			Time:   row.CreatedAt,
			Target: dqswitch.Layout(row.Target),
			Reason: row.Reason,
			Err:    row.Error,
		})
	}

	return ret, nil
}
