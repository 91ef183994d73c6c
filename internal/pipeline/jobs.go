package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/docnav/internal/collector"
	"github.com/dgallion1/docnav/internal/navtree"
)

// JobKind selects the environment a job collects from.
type JobKind string

const (
	KindBrowser  JobKind = "browser"
	KindDocument JobKind = "document"
)

// JobStatus represents the state of a collection job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusLaunching  JobStatus = "launching"
	StatusParsing    JobStatus = "parsing"
	StatusCollecting JobStatus = "collecting"
	StatusBuilding   JobStatus = "building"
	StatusCompleted  JobStatus = "completed"
	StatusPartial    JobStatus = "partial"
	StatusFailed     JobStatus = "failed"
)

// Finished reports whether no further transitions will happen.
func (s JobStatus) Finished() bool {
	return s == StatusCompleted || s == StatusPartial || s == StatusFailed
}

// Job tracks the state of a single collection run.
type Job struct {
	mu sync.Mutex

	ID     string    `json:"job_id"`
	Kind   JobKind   `json:"kind"`
	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	// Browser jobs
	URL       string `json:"url,omitempty"`
	RootTitle string `json:"root_title,omitempty"`
	Scope     string `json:"scope,omitempty"`
	MaxCycles int    `json:"max_cycles,omitempty"`

	// Document jobs
	Filename string `json:"filename,omitempty"`
	Title    string `json:"title,omitempty"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	OutputPath  string    `json:"output_path,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	tree     *navtree.TreeNode
	warnings []string
	errors   []string
}

// Progress tracks collection progress.
type Progress struct {
	Attempts     int      `json:"attempts"`
	Cycles       int      `json:"cycles"`
	Expanded     int      `json:"expanded"`
	Items        int      `json:"items"`
	StableRounds int      `json:"stable_rounds"`
	Reason       string   `json:"reason,omitempty"`
	Warnings     []string `json:"warnings"`
	Errors       []string `json:"errors"`
}

// NewBrowserJob creates a queued job collecting a live navigator. Empty
// fields fall back to the configured target.
func NewBrowserJob(url, rootTitle, scope string, maxCycles int) *Job {
	now := time.Now()
	return &Job{
		ID:        generateULID(),
		Kind:      KindBrowser,
		Status:    StatusQueued,
		Phase:     "queued",
		URL:       url,
		RootTitle: rootTitle,
		Scope:     scope,
		MaxCycles: maxCycles,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewDocumentJob creates a queued job collecting an uploaded document.
func NewDocumentJob(filename, title string, data []byte) *Job {
	now := time.Now()
	return &Job{
		ID:          generateULID(),
		Kind:        KindDocument,
		Status:      StatusQueued,
		Phase:       "queued",
		Filename:    filename,
		Title:       title,
		ContentHash: ContentHashHex(data),
		CreatedAt:   now,
		UpdatedAt:   now,
		fileData:    data,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// AddWarning records a non-fatal problem.
func (j *Job) AddWarning(msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.warnings = append(j.warnings, msg)
	j.Progress.Warnings = j.warnings
	j.UpdatedAt = time.Now()
}

// SetAttempt records the current launch attempt (1-indexed).
func (j *Job) SetAttempt(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Attempts = n
	j.UpdatedAt = time.Now()
}

// RecordCycle folds a collector cycle report into the progress.
func (j *Job) RecordCycle(r collector.CycleReport) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Cycles = r.Cycle
	j.Progress.Expanded += r.Expanded
	j.Progress.Items = r.Total
	j.Progress.StableRounds = r.StableRounds
	j.UpdatedAt = time.Now()
}

// SetResult stores the finished tree and where it was written.
func (j *Job) SetResult(res *collector.Result, outputPath string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.tree = res.Tree
	j.OutputPath = outputPath
	j.Progress.Cycles = res.Stats.Cycles
	j.Progress.Items = res.Stats.Items
	j.Progress.StableRounds = res.Stats.StableRounds
	j.Progress.Reason = string(res.Stats.Reason)
	j.UpdatedAt = time.Now()
}

// Tree returns the collected tree and the status it was read under. The
// tree is nil until the job has finished successfully.
func (j *Job) Tree() (*navtree.TreeNode, JobStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.tree, j.Status
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID         string    `json:"job_id"`
	Kind       JobKind   `json:"kind"`
	Status     JobStatus `json:"status"`
	Phase      string    `json:"phase"`
	URL        string    `json:"url,omitempty"`
	Filename   string    `json:"filename,omitempty"`
	Title      string    `json:"title,omitempty"`
	OutputPath string    `json:"output_path,omitempty"`
	Progress   Progress  `json:"progress"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobSnapshot{
		ID:         j.ID,
		Kind:       j.Kind,
		Status:     j.Status,
		Phase:      j.Phase,
		URL:        j.URL,
		Filename:   j.Filename,
		Title:      j.Title,
		OutputPath: j.OutputPath,
		Progress: Progress{
			Attempts:     j.Progress.Attempts,
			Cycles:       j.Progress.Cycles,
			Expanded:     j.Progress.Expanded,
			Items:        j.Progress.Items,
			StableRounds: j.Progress.StableRounds,
			Reason:       j.Progress.Reason,
			Warnings:     nonNil(j.Progress.Warnings),
			Errors:       nonNil(j.Progress.Errors),
		},
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
