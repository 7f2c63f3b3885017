package pipeline

import (
	"sync"
	"time"
)

// JobStatus represents the state of a formatting job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusFormatting JobStatus = "formatting"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	// StatusPartial means at least one requested output was produced but
	// another failed, e.g. "both" mode with the model unreachable.
	StatusPartial JobStatus = "partial"
)

// Output is one produced document.
type Output struct {
	// Label names the path that produced the file: "rule" or "llm".
	Label    string `json:"label"`
	Filename string `json:"filename"`
	Path     string `json:"-"`
	Report   Report `json:"report"`
}

// Job tracks the state of a single document through the pipeline.
type Job struct {
	mu sync.Mutex

	ID       string
	Filename string
	Mode     string

	Status    JobStatus
	Phase     string
	CreatedAt time.Time
	UpdatedAt time.Time

	fileData []byte
	outputs  []Output
	errors   []string
}

// NewJob builds a queued job for an uploaded document.
func NewJob(filename, mode string, data []byte) *Job {
	now := time.Now()
	return &Job{
		ID:        generateULID(),
		Filename:  filename,
		Mode:      mode,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
		fileData:  data,
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

// AddError records a failure message.
func (j *Job) AddError(msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, msg)
	j.UpdatedAt = time.Now()
}

// AddOutput records a produced document.
func (j *Job) AddOutput(out Output) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.outputs = append(j.outputs, out)
	j.UpdatedAt = time.Now()
}

// SetFileData stores the uploaded bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the uploaded bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// Output finds a produced document by label.
func (j *Job) Output(label string) (Output, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, o := range j.outputs {
		if o.Label == label {
			return o, true
		}
	}
	return Output{}, false
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string    `json:"job_id"`
	Filename string    `json:"filename"`
	Mode     string    `json:"mode"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Outputs  []Output  `json:"outputs"`
	Errors   []string  `json:"errors"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	outs := append([]Output(nil), j.outputs...)
	if outs == nil {
		outs = []Output{}
	}
	errs := append([]string(nil), j.errors...)
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:       j.ID,
		Filename: j.Filename,
		Mode:     j.Mode,
		Status:   j.Status,
		Phase:    j.Phase,
		Outputs:  outs,
		Errors:   errs,
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
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}
