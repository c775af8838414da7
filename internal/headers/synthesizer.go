package headers

import (
	"math/rand"
	"sync"
	"time"
)

// userAgents is the pool of browser identity strings drawn from on every call.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/117.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
}

// Synthesizer produces a randomized, browser-plausible header set per
// outbound request. Each call is an independent draw; no state carries over
// between calls. The randomness source is injectable so tests can seed it.
type Synthesizer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Synthesizer backed by rng. A nil rng gets a time-seeded one.
func New(rng *rand.Rand) *Synthesizer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Synthesizer{rng: rng}
}

// Draw returns a fresh header set mimicking a real browser. Safe for
// concurrent use; fetch tasks draw independently.
func (s *Synthesizer) Draw() map[string]string {
	s.mu.Lock()
	ua := userAgents[s.rng.Intn(len(userAgents))]
	s.mu.Unlock()

	return map[string]string{
		"User-Agent":                ua,
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.5",
		"Accept-Encoding":           "gzip, deflate, br",
		"Connection":                "keep-alive",
		"Upgrade-Insecure-Requests": "1",
	}
}
