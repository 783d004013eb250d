package dto

import "encoding/json"

type InvalidateCacheRequest struct {
	Pattern string `json:"pattern" validate:"required"`
	Layer   string `json:"layer" validate:"omitempty,oneof=embeddings retrieval generation summaries"`
}

type InvalidateCacheResponse struct {
	Removed int `json:"removed"`
}

type LayerStatsResponse struct {
	Hits       int64   `json:"hits"`
	LocalHits  int64   `json:"local_hits"`
	RemoteHits int64   `json:"remote_hits"`
	Misses     int64   `json:"misses"`
	Sets       int64   `json:"sets"`
	Evictions  int64   `json:"evictions"`
	Entries    int     `json:"entries"`
	HitRate    float64 `json:"hit_rate"`
}

type CacheStatsResponse struct {
	Remote bool                          `json:"remote"`
	Layers map[string]LayerStatsResponse `json:"layers"`
}

type PeekCacheRequest struct {
	Layer string   `query:"layer" validate:"required,oneof=embeddings retrieval generation summaries"`
	Keys  []string `query:"key" validate:"required,min=1,max=100"`
}

type PeekCacheResponse struct {
	Entries map[string]json.RawMessage `json:"entries"`
	Missing []string                   `json:"missing"`
}
