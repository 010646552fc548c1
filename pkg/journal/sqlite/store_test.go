package sqlite

import (
	"codeberg.org/miketth/dqswitch/pkg/dqswitch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"path/filepath"
	"testing"
	"time"
)

func newTestJournal(t *testing.T) (*Journal, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := NewJournal(path, zap.NewNop().Sugar())
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j, path
}

func TestRecordAndRecent(t *testing.T) {
	j, _ := newTestJournal(t)
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, j.Record(dqswitch.Entry{Time: at, Target: 0, Reason: dqswitch.ReasonStartup}))
	require.NoError(t, j.Record(dqswitch.Entry{Time: at.Add(time.Second), Target: 1, Reason: dqswitch.ReasonKey}))
	require.NoError(t, j.Record(dqswitch.Entry{Time: at.Add(2 * time.Second), Target: 0, Reason: dqswitch.ReasonRelease, Err: "dbus: no reply"}))

	recent, err := j.Recent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	assert.Equal(t, dqswitch.ReasonRelease, recent[0].Reason)
	assert.Equal(t, "dbus: no reply", recent[0].Err)
	assert.True(t, at.Add(2*time.Second).Equal(recent[0].Time))
	assert.Equal(t, dqswitch.Layout(1), recent[1].Target)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	j, path := newTestJournal(t)
	require.NoError(t, j.Record(dqswitch.Entry{Time: time.Now(), Target: 1, Reason: dqswitch.ReasonKey}))
	require.NoError(t, j.Close())

	reopened, err := NewJournal(path, zap.NewNop().Sugar())
	require.NoError(t, err)
	defer reopened.Close()

	recent, err := reopened.Recent(10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestRecordKeepsJournalBounded(t *testing.T) {
	j, _ := newTestJournal(t)
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < MaxEntries+150; i++ {
		require.NoError(t, j.Record(dqswitch.Entry{Time: at.Add(time.Duration(i) * time.Millisecond), Target: dqswitch.Layout(i % 2), Reason: dqswitch.ReasonKey}))
	}

	recent, err := j.Recent(2 * MaxEntries)
	require.NoError(t, err)
	assert.Len(t, recent, MaxEntries)
	assert.True(t, at.Add(time.Duration(MaxEntries+149)*time.Millisecond).Equal(recent[0].Time))
	assert.True(t, at.Add(150*time.Millisecond).Equal(recent[len(recent)-1].Time))
}
