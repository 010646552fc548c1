package json

import (
	"codeberg.org/miketth/dqswitch/pkg/dqswitch"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// MaxEntries bounds the file; the oldest entries are dropped first.
const MaxEntries = 1000

type entry struct {
	Time   time.Time `json:"time"`
	Target int       `json:"target"`
	Reason string    `json:"reason"`
	Err    string    `json:"error,omitempty"`
}

type Journal struct {
	entries []entry
	file    *os.File
	lock    sync.Mutex
	dirty   bool
}

func NewJournal(filename string) (*Journal, error) {
	fileExists := true
	stat, err := os.Stat(filename)
	if os.IsNotExist(err) || (err == nil && stat.Size() == 0) {
		fileExists = false
	}

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	journal := &Journal{
		file: file,
	}

	if fileExists {
		err = journal.load()
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("load: %w", err)
		}
	}

	return journal, nil
}

func (j *Journal) Close() error {
	return j.file.Close()
}

func (j *Journal) load() error {
	j.lock.Lock()
	defer j.lock.Unlock()

	_, err := j.file.Seek(0, 0)
	if err != nil {
		return fmt.Errorf("seek to start of file: %w", err)
	}

	dec := json.NewDecoder(j.file)
	err = dec.Decode(&j.entries)
	if err != nil {
		return fmt.Errorf("decode json: %w", err)
	}

	return nil
}

func (j *Journal) Save() error {
	j.lock.Lock()
	defer j.lock.Unlock()

	if !j.dirty {
		return nil
	}

	_, err := j.file.Seek(0, 0)
	if err != nil {
		return fmt.Errorf("seek to start of file: %w", err)
	}

	err = j.file.Truncate(0)
	if err != nil {
		return fmt.Errorf("truncate file: %w", err)
	}

	enc := json.NewEncoder(j.file)
	err = enc.Encode(j.entries)
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	j.dirty = false

	return nil
}

// SaveLooper flushes the journal every interval and once more on shutdown.
func (j *Journal) SaveLooper(ctx context.Context, interval time.Duration) error {
	defer j.file.Close()

	for {
		select {
		case <-ctx.Done():
			err := j.Save()
			if err != nil {
				return fmt.Errorf("save: %w", err)
			}

			return ctx.Err()
		case <-time.After(interval):
			err := j.Save()
			if err != nil {
				return fmt.Errorf("save: %w", err)
			}
		}
	}
}

func (j *Journal) Record(e dqswitch.Entry) error {
	j.lock.Lock()
	defer j.lock.Unlock()

	j.entries = append(j.entries, entry{
		Time:   e.Time,
		Target: int(e.Target),
		Reason: e.Reason,
		Err:    e.Err,
	})
	if over := len(j.entries) - MaxEntries; over > 0 {
		j.entries = append(j.entries[:0], j.entries[over:]...)
	}
	j.dirty = true

	return nil
}

func (j *Journal) Recent(limit int) ([]dqswitch.Entry, error) {
	j.lock.Lock()
	defer j.lock.Unlock()

	ret := make([]dqswitch.Entry, 0, min(limit, len(j.entries)))
	for i := len(j.entries) - 1; i >= 0 && len(ret) < limit; i-- {
		e := j.entries[i]
		ret = append(ret, dqswitch.Entry{
			Time:   e.Time,
			Target: dqswitch.Layout(e.Target),
			Reason: e.Reason,
			Err:    e.Err,
		})
	}
	return ret, nil
}
