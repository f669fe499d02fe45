package config

import "time"

// Balance defaults
const (
	DefaultMaxBalance       = 1_000_000
	DefaultWelcomeBalance   = 500
	DefaultBalanceCacheSize = 4096
	DefaultBalanceCacheTTL  = 10 * time.Minute
)

// Worker pool defaults
const (
	DefaultWorkerCount     = 4
	DefaultWorkerQueueSize = 256
)

// Background task intervals
const (
	DefaultCacheEvictionInterval  = 5 * time.Minute
	DefaultRentalSweepInterval    = 60 * time.Second
	DefaultOfflineCleanupInterval = 30 * time.Minute
	DefaultStatsFlushInterval     = 5 * time.Minute
)
