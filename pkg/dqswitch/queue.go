package dqswitch

import (
	"errors"
	"go.uber.org/zap"
	"sync"
)

var ErrJournalFull = errors.New("journal queue full, entry dropped")

// JournalQueue hands entries to a journal on a separate goroutine, so a slow disk
// never holds up key handling. When the queue is full entries are dropped.
type JournalQueue struct {
	journal Journal
	log     *zap.SugaredLogger

	entries chan Entry
	stop    chan struct{}
	done    chan struct{}
	closed  sync.Once
}

func NewJournalQueue(journal Journal, size int, log *zap.SugaredLogger) *JournalQueue {
	q := &JournalQueue{
		journal: journal,
		log:     log,
		entries: make(chan Entry, size),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go q.run()

	return q
}

func (q *JournalQueue) Record(entry Entry) error {
	select {
	case q.entries <- entry:
		return nil
	default:
		return ErrJournalFull
	}
}

// Close writes out what is still queued and stops the writer.
func (q *JournalQueue) Close() {
	q.closed.Do(func() {
		close(q.stop)
	})
	<-q.done
}

func (q *JournalQueue) run() {
	defer close(q.done)

	for {
		select {
		case entry := <-q.entries:
			q.write(entry)

		case <-q.stop:
			for {
				select {
				case entry := <-q.entries:
					q.write(entry)
				default:
					return
				}
			}
		}
	}
}

func (q *JournalQueue) write(entry Entry) {
	if err := q.journal.Record(entry); err != nil {
		q.log.Warnw("write journal entry", "reason", entry.Reason, "error", err)
	}
}
