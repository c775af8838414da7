package headers

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraw_ContainsBrowserHeaders(t *testing.T) {
	s := New(rand.New(rand.NewSource(1)))

	h := s.Draw()

	require.NotEmpty(t, h["User-Agent"])
	assert.Contains(t, h["Accept"], "text/html")
	assert.Equal(t, "en-US,en;q=0.5", h["Accept-Language"])
	assert.Equal(t, "1", h["Upgrade-Insecure-Requests"])
}

func TestDraw_UserAgentFromPool(t *testing.T) {
	s := New(rand.New(rand.NewSource(7)))

	for i := 0; i < 50; i++ {
		h := s.Draw()
		assert.Contains(t, userAgents, h["User-Agent"])
	}
}

func TestDraw_DeterministicWithSeededSource(t *testing.T) {
	a := New(rand.New(rand.NewSource(42)))
	b := New(rand.New(rand.NewSource(42)))

	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Draw()["User-Agent"], b.Draw()["User-Agent"])
	}
}

func TestDraw_IndependentDraws(t *testing.T) {
	// With replacement: a large sample from a seeded source should hit more
	// than one pool entry.
	s := New(rand.New(rand.NewSource(3)))

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		seen[s.Draw()["User-Agent"]] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestDraw_ConcurrentUse(t *testing.T) {
	s := New(rand.New(rand.NewSource(9)))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				h := s.Draw()
				assert.NotEmpty(t, h["User-Agent"])
			}
		}()
	}
	wg.Wait()
}
