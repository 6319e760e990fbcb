package playback

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestStartReplacesActiveSession(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t))

	first := m.Start("audio/grounding.mp3", 5*time.Minute)
	second := m.Start("audio/box-breathing.mp3", 3*time.Minute)
	assert.NotEqual(t, first.ID, second.ID)

	current, err := m.Current()
	require.NoError(t, err)
	assert.Equal(t, second.ID, current.ID)
	assert.Equal(t, "audio/box-breathing.mp3", current.TrackKey)
}

func TestNoSession(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t))

	_, err := m.Current()
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = m.Seek(time.Minute)
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = m.Pause()
	assert.ErrorIs(t, err, ErrNoSession)

	// Stop without a session is a no-op.
	m.Stop()
}

func TestSeekClamps(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t))
	m.Start("audio/grounding.mp3", 5*time.Minute)

	s, err := m.Seek(-time.Second)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), s.Position)

	s, err = m.Seek(10 * time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, s.Position)

	s, err = m.Seek(90 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, s.Position)
}

func TestPauseResume(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t))
	m.Start("audio/grounding.mp3", 5*time.Minute)

	s, err := m.Pause()
	require.NoError(t, err)
	assert.True(t, s.Paused)

	s, err = m.Resume()
	require.NoError(t, err)
	assert.False(t, s.Paused)
}

func TestStopClearsSession(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t))
	m.Start("audio/grounding.mp3", 5*time.Minute)
	m.Stop()

	_, err := m.Current()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestConcurrentStarts(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Start("audio/grounding.mp3", time.Minute)
		}()
	}
	wg.Wait()

	// Exactly one session survives the race.
	current, err := m.Current()
	require.NoError(t, err)
	assert.NotEmpty(t, current.ID)
}
