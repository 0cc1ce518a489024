package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// JobStatus represents the current state of a transcription job
type JobStatus string

const (
	JobStatusQueued       JobStatus = "queued"
	JobStatusTranscribing JobStatus = "transcribing"
	JobStatusCompleted    JobStatus = "completed"
	JobStatusFailed       JobStatus = "failed"
	JobStatusCancelled    JobStatus = "cancelled"
)

// Job represents one asynchronous transcription request.
type Job struct {
	ID          string    `json:"id"`
	RecordingID string    `json:"recording_id"`
	SourceURL   string    `json:"source_url,omitempty"`
	Filename    string    `json:"filename,omitempty"`
	Status      JobStatus `json:"status"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal fields (not serialized)
	cancel context.CancelFunc `json:"-"`
	ctx    context.Context    `json:"-"`
}

// TranscribeFunc runs one transcription job end to end. The context is
// cancelled when the job is cancelled or the queue shuts down.
type TranscribeFunc func(ctx context.Context, job *Job) error

// JobQueue runs transcription jobs on a bounded worker pool.
type JobQueue struct {
	jobs          map[string]*Job
	mu            sync.RWMutex
	queue         chan *Job
	maxConcurrent int
	transcribeFn  TranscribeFunc
	wg            sync.WaitGroup
	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	stopped       bool
}

// NewJobQueue creates a new job queue with the specified concurrency.
func NewJobQueue(maxConcurrent int, transcribeFn TranscribeFunc) *JobQueue {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	return &JobQueue{
		jobs:          make(map[string]*Job),
		queue:         make(chan *Job, 100),
		maxConcurrent: maxConcurrent,
		transcribeFn:  transcribeFn,
		stopCleanup:   make(chan struct{}),
	}
}

// Start begins the worker pool and cleanup routine
func (jq *JobQueue) Start() {
	for i := 0; i < jq.maxConcurrent; i++ {
		jq.wg.Add(1)
		go jq.worker()
	}

	// Every 10 minutes, drop terminal jobs older than 1 hour
	jq.cleanupTicker = time.NewTicker(10 * time.Minute)
	go jq.cleanupLoop()
}

// Stop gracefully shuts down the job queue. Later AddJob calls fail instead
// of racing the channel close.
func (jq *JobQueue) Stop() {
	jq.mu.Lock()
	if jq.stopped {
		jq.mu.Unlock()
		return
	}
	jq.stopped = true
	close(jq.queue)
	jq.mu.Unlock()

	close(jq.stopCleanup)
	if jq.cleanupTicker != nil {
		jq.cleanupTicker.Stop()
	}
	jq.wg.Wait()
}

func (jq *JobQueue) worker() {
	defer jq.wg.Done()

	for job := range jq.queue {
		jq.processJob(job)
	}
}

func (jq *JobQueue) processJob(job *Job) {
	jq.updateStatus(job.ID, JobStatusTranscribing, "")

	err := jq.transcribeFn(job.ctx, job)
	if err != nil {
		if job.ctx.Err() == context.Canceled {
			jq.updateStatus(job.ID, JobStatusCancelled, "cancelled by user")
		} else {
			jq.updateStatus(job.ID, JobStatusFailed, err.Error())
		}
		return
	}

	jq.updateStatus(job.ID, JobStatusCompleted, "")
}

func (jq *JobQueue) updateStatus(id string, status JobStatus, errMsg string) {
	jq.mu.Lock()
	defer jq.mu.Unlock()

	if job, ok := jq.jobs[id]; ok {
		job.Status = status
		job.Error = errMsg
		job.UpdatedAt = time.Now()
	}
}

func (jq *JobQueue) cleanupLoop() {
	for {
		select {
		case <-jq.cleanupTicker.C:
			jq.cleanupOldJobs()
		case <-jq.stopCleanup:
			return
		}
	}
}

func (jq *JobQueue) cleanupOldJobs() {
	jq.mu.Lock()
	defer jq.mu.Unlock()

	cutoff := time.Now().Add(-1 * time.Hour)
	for id, job := range jq.jobs {
		if job.terminal() && job.UpdatedAt.Before(cutoff) {
			delete(jq.jobs, id)
		}
	}
}

func (j *Job) terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed || j.Status == JobStatusCancelled
}

// AddJob creates and queues a new transcription job.
func (jq *JobQueue) AddJob(recordingID, sourceURL, filename string) (*Job, error) {
	id, err := generateJobID()
	if err != nil {
		return nil, fmt.Errorf("generate job ID: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	job := &Job{
		ID:          id,
		RecordingID: recordingID,
		SourceURL:   sourceURL,
		Filename:    filename,
		Status:      JobStatusQueued,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		ctx:         ctx,
		cancel:      cancel,
	}

	// The enqueue happens under the lock so it cannot race Stop closing the
	// channel.
	jq.mu.Lock()
	defer jq.mu.Unlock()

	if jq.stopped {
		cancel()
		return nil, fmt.Errorf("job queue is stopped")
	}

	jq.jobs[id] = job

	select {
	case jq.queue <- job:
		return job, nil
	default:
		delete(jq.jobs, id)
		cancel()
		return nil, fmt.Errorf("job queue is full")
	}
}

// GetJob returns a copy of the job for id, or nil.
func (jq *JobQueue) GetJob(id string) *Job {
	jq.mu.RLock()
	defer jq.mu.RUnlock()

	if job, ok := jq.jobs[id]; ok {
		jobCopy := *job
		return &jobCopy
	}
	return nil
}

// GetAllJobs returns copies of all jobs.
func (jq *JobQueue) GetAllJobs() []*Job {
	jq.mu.RLock()
	defer jq.mu.RUnlock()

	jobs := make([]*Job, 0, len(jq.jobs))
	for _, job := range jq.jobs {
		jobCopy := *job
		jobs = append(jobs, &jobCopy)
	}
	return jobs
}

// CancelJob cancels a queued or running job.
func (jq *JobQueue) CancelJob(id string) bool {
	jq.mu.Lock()
	defer jq.mu.Unlock()

	job, ok := jq.jobs[id]
	if !ok || job.terminal() {
		return false
	}

	job.cancel()
	return true
}

func generateJobID() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
