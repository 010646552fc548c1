package memory

import (
	"codeberg.org/miketth/dqswitch/pkg/dqswitch"
	"sync"
)

type Journal struct {
	lock    sync.Mutex
	entries []dqswitch.Entry
}

func NewJournal() *Journal {
	return &Journal{}
}

func (j *Journal) Record(entry dqswitch.Entry) error {
	j.lock.Lock()
	defer j.lock.Unlock()

	j.entries = append(j.entries, entry)
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(limit int) ([]dqswitch.Entry, error) {
	j.lock.Lock()
	defer j.lock.Unlock()

	ret := make([]dqswitch.Entry, 0, min(limit, len(j.entries)))
	for i := len(j.entries) - 1; i >= 0 && len(ret) < limit; i-- {
		ret = append(ret, j.entries[i])
	}
	return ret, nil
}
