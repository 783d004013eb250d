package cache

import "time"

type Layer string

const (
	LayerEmbeddings Layer = "embeddings"
	LayerRetrieval  Layer = "retrieval"
	LayerGeneration Layer = "generation"
	LayerSummaries  Layer = "summaries"
)

// LayerConfig bounds the local copy of a layer and sets the default TTL of
// its remote copy.
type LayerConfig struct {
	MaxEntries int
	LocalTTL   time.Duration
	RemoteTTL  time.Duration
}

func DefaultLayers() map[Layer]LayerConfig {
	return map[Layer]LayerConfig{
		LayerEmbeddings: {MaxEntries: 5000, LocalTTL: 12 * time.Hour, RemoteTTL: 7 * 24 * time.Hour},
		LayerRetrieval:  {MaxEntries: 1000, LocalTTL: 30 * time.Minute, RemoteTTL: 2 * time.Hour},
		LayerGeneration: {MaxEntries: 500, LocalTTL: time.Hour, RemoteTTL: 24 * time.Hour},
		LayerSummaries:  {MaxEntries: 200, LocalTTL: 24 * time.Hour, RemoteTTL: 30 * 24 * time.Hour},
	}
}

// LayerStats is a point-in-time snapshot of one layer's counters.
type LayerStats struct {
	Hits       int64 `json:"hits"`
	LocalHits  int64 `json:"localHits"`
	RemoteHits int64 `json:"remoteHits"`
	Misses     int64 `json:"misses"`
	Sets       int64 `json:"sets"`
	Evictions  int64 `json:"evictions"`
	Entries    int   `json:"entries"`
}

func (s LayerStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
