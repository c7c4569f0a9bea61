package optimistic

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBeginAppliesDelta(t *testing.T) {
	tg := NewToggle(10, false)
	p := tg.Begin()
	assert.Equal(t, Snapshot{Count: 11, Active: true}, tg.Snapshot())
	assert.Equal(t, Delta{Count: 1, Flipped: true}, p.Delta())

	tg = NewToggle(3, true)
	p = tg.Begin()
	assert.Equal(t, Snapshot{Count: 2, Active: false}, tg.Snapshot())
	assert.Equal(t, Delta{Count: -1, Flipped: true}, p.Delta())
}

func TestConfirmMatchingServerStateIsStable(t *testing.T) {
	tg := NewToggle(10, false)
	p := tg.Begin()
	p.Confirm(Snapshot{Count: 11, Active: true})
	assert.Equal(t, Snapshot{Count: 11, Active: true}, tg.Snapshot())
}

func TestConfirmAdoptsServerState(t *testing.T) {
	tg := NewToggle(10, false)
	p := tg.Begin()
	// someone else liked in the meantime
	p.Confirm(Snapshot{Count: 12, Active: true})
	assert.Equal(t, Snapshot{Count: 12, Active: true}, tg.Snapshot())
}

func TestRollbackRestoresExactly(t *testing.T) {
	tg := NewToggle(10, false)
	p := tg.Begin()
	p.Rollback()
	assert.Equal(t, Snapshot{Count: 10, Active: false}, tg.Snapshot())

	p.Rollback()
	p.Confirm(Snapshot{Count: 99, Active: true})
	assert.Equal(t, Snapshot{Count: 10, Active: false}, tg.Snapshot(), "a resolved pending is inert")
}

func TestDo(t *testing.T) {
	tg := NewToggle(10, false)
	var during Snapshot
	got, err := tg.Do(func() (Snapshot, error) {
		during = tg.Snapshot()
		return Snapshot{Count: 11, Active: true}, nil
	})
	assert.NoError(t, err)
	assert.Equal(t, Snapshot{Count: 11, Active: true}, during, "applied before the call returns")
	assert.Equal(t, Snapshot{Count: 11, Active: true}, got)

	boom := errors.New("boom")
	got, err = tg.Do(func() (Snapshot, error) { return Snapshot{}, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Snapshot{Count: 11, Active: true}, got)
}
