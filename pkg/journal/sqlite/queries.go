package sqlite

import (
	"context"
	"database/sql"
	"time"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

type Switch struct {
	ID        int64
	CreatedAt time.Time
	Target    int64
	Reason    string
	Error     string
}

const insertSwitch = `
insert into switches (created_at, target, reason, error)
values (?, ?, ?, ?)
`

type InsertSwitchParams struct {
	CreatedAt time.Time
	Target    int64
	Reason    string
	Error     string
}

func (q *Queries) InsertSwitch(ctx context.Context, arg InsertSwitchParams) error {
	_, err := q.db.ExecContext(ctx, insertSwitch, arg.CreatedAt, arg.Target, arg.Reason, arg.Error)
	return err
}

const recentSwitches = `
select id, created_at, target, reason, error
from switches
order by created_at desc, id desc
limit ?
`

func (q *Queries) RecentSwitches(ctx context.Context, limit int64) ([]Switch, error) {
	rows, err := q.db.QueryContext(ctx, recentSwitches, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Switch
	for rows.Next() {
		var i Switch
		if err := rows.Scan(&i.ID, &i.CreatedAt, &i.Target, &i.Reason, &i.Error); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const pruneSwitches = `
delete from switches
where id <= (select max(id) from switches) - ?
`

func (q *Queries) PruneSwitches(ctx context.Context, keep int64) error {
	_, err := q.db.ExecContext(ctx, pruneSwitches, keep)
	return err
}
