package controller

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/ghosthand/api/schemas"
)

func TestTypeSendsEveryCharacter(t *testing.T) {
	t.Parallel()

	// The default persona never mistypes, so the output is the input.
	mock := newMockBackend(t)
	c := NewTestController(mock, 17)
	text := "hello world"

	require.NoError(t, c.Type(context.Background(), text))

	assert.Equal(t, text, strings.Join(mock.snapshotKeys(), ""))
	assert.Empty(t, mock.snapshotPressed(), "no typos means no backspaces")

	// One keystroke delay per character plus one word pause at the space.
	assert.Len(t, mock.snapshotSleeps(), len(text)+1)
}

func TestTypeEmptyString(t *testing.T) {
	t.Parallel()

	mock := newMockBackend(t)
	c := NewTestController(mock, 17)

	require.NoError(t, c.Type(context.Background(), ""))
	assert.Empty(t, mock.snapshotKeys())
	assert.Empty(t, mock.snapshotSleeps())
}

func TestTypeBackendFailure(t *testing.T) {
	t.Parallel()

	mock := newMockBackend(t)
	mock.MockSendKeys = func(ctx context.Context, keys string) error {
		return errors.New("keyboard unplugged")
	}

	c := NewTestController(mock, 17)
	err := c.Type(context.Background(), "abc")

	var be *BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "send_keys", be.Op)
	assert.Equal(t, StateIdle, c.State())
}

func TestTypeCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock := newMockBackend(t)
	c := NewTestController(mock, 17)

	require.ErrorIs(t, c.Type(ctx, "abc"), context.Canceled)
	assert.Empty(t, mock.snapshotKeys())
}

func TestTypoRepair(t *testing.T) {
	t.Parallel()

	repaired := 0
	for seed := int64(0); seed < 30; seed++ {
		mock := newMockBackend(t)
		c := NewTestController(mock, seed)

		done, err := c.typoLocked(context.Background(), 'a')
		require.NoError(t, err, "seed %d", seed)
		require.True(t, done, "'a' always has neighbors")

		sent := mock.snapshotKeys()
		require.NotEmpty(t, sent)
		assert.Contains(t, "qwsz", sent[0], "typo must hit an adjacent key")

		pressed := mock.snapshotPressed()
		if len(pressed) == 0 {
			// The persona never noticed; the typo stands alone.
			assert.Len(t, sent, 1, "seed %d", seed)
			continue
		}

		repaired++
		assert.Equal(t, schemas.KeyBackspace, pressed[0], "seed %d", seed)
		assert.Equal(t, "a", sent[len(sent)-1], "repair retypes the intended key")
	}
	assert.Positive(t, repaired, "most personas notice and fix their typos")
}

func TestTypoPreservesCase(t *testing.T) {
	t.Parallel()

	mock := newMockBackend(t)
	c := NewTestController(mock, 5)

	done, err := c.typoLocked(context.Background(), 'A')
	require.NoError(t, err)
	require.True(t, done)

	sent := mock.snapshotKeys()
	require.NotEmpty(t, sent)
	assert.Contains(t, "QWSZ", sent[0])
}

func TestTypoSkipsUnknownRunes(t *testing.T) {
	t.Parallel()

	mock := newMockBackend(t)
	c := NewTestController(mock, 5)

	done, err := c.typoLocked(context.Background(), 'é')
	require.NoError(t, err)
	assert.False(t, done, "runes off the layout fall through to normal typing")
	assert.Empty(t, mock.snapshotKeys())
}

func TestPressKey(t *testing.T) {
	t.Parallel()

	mock := newMockBackend(t)
	c := NewTestController(mock, 17)

	require.NoError(t, c.PressKey(context.Background(), schemas.KeySelectAll))

	pressed := mock.snapshotPressed()
	require.Len(t, pressed, 1)
	assert.Equal(t, schemas.KeySelectAll, pressed[0])
	assert.Len(t, mock.snapshotSleeps(), 1)
	assert.Equal(t, StateIdle, c.State())
}

func TestPressKeyBackendFailure(t *testing.T) {
	t.Parallel()

	mock := newMockBackend(t)
	mock.MockPressKey = func(ctx context.Context, key schemas.KeyEventData) error {
		return errors.New("no focused element")
	}

	c := NewTestController(mock, 17)
	err := c.PressKey(context.Background(), schemas.KeyCopy)

	var be *BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "press_key", be.Op)
}
