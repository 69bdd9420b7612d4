package engine

import (
	"fmt"
	"runtime"
)

// Metadata describes one successfully fingerprinted file.
type Metadata struct {
	FileSize         uint64 `json:"file_size"`
	ProcessingTimeMs uint64 `json:"processing_time_ms"`
	Width            uint32 `json:"width"`
	Height           uint32 `json:"height"`
	WasResized       bool   `json:"was_resized"`
}

// Result is the outcome of processing one path. Exactly one of Hash or Err is
// set: a Success carries Hash and Metadata, an Error carries Err.
type Result struct {
	Path     string
	Hash     string
	Metadata Metadata
	Err      string
}

func (r Result) OK() bool {
	return r.Err == ""
}

// Entry is the unit handed to a ResultSink.
type Entry struct {
	Path     string   `json:"file_path"`
	Hash     string   `json:"hash"`
	Metadata Metadata `json:"metadata"`
}

type Summary struct {
	TotalFiles            int     `json:"total_files"`
	ProcessedFiles        int     `json:"processed_files"`
	ErrorCount            int     `json:"error_count"`
	TotalProcessingTimeMs uint64  `json:"total_processing_time_ms"`
	AverageTimePerFileMs  float64 `json:"average_time_per_file_ms"`
}

// Config holds the pipeline tunables. It is read-only for the lifetime of a run.
type Config struct {
	// Number of workers, and permits in the concurrency limiter
	MaxConcurrentTasks int `yaml:"max_concurrent_tasks"`

	// Depth of both the work and the results channel
	ChannelBufferSize int `yaml:"channel_buffer_size"`

	// Successful results accumulated before one StoreBatch call
	BatchSize int `yaml:"batch_size"`

	EnableProgressReporting bool `yaml:"enable_progress_reporting"`
}

func DefaultConfig() Config {
	return Config{
		MaxConcurrentTasks:      max(runtime.NumCPU(), 1) * 2,
		ChannelBufferSize:       100,
		BatchSize:               50,
		EnableProgressReporting: true,
	}
}

// Validate checks the tunables without touching any collaborator.
func (c *Config) Validate() error {
	if c.MaxConcurrentTasks < 1 {
		return Wrap(KindConfig, "validate", fmt.Sprintf("max_concurrent_tasks must be at least 1, got %d", c.MaxConcurrentTasks), ErrInvalidConfig)
	}
	if c.ChannelBufferSize < 1 {
		return Wrap(KindConfig, "validate", fmt.Sprintf("channel_buffer_size must be at least 1, got %d", c.ChannelBufferSize), ErrInvalidConfig)
	}
	if c.BatchSize < 1 {
		return Wrap(KindConfig, "validate", fmt.Sprintf("batch_size must be at least 1, got %d", c.BatchSize), ErrInvalidConfig)
	}
	return nil
}
