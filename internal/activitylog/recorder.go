package activitylog

import (
	"context"
	"sync"

	"github.com/kodacard/kodacard-backend/pkg/db/models"
	"github.com/kodacard/kodacard-backend/pkg/logger"
)

const defaultBufferSize = 256

// Record is one audit entry waiting to be written.
type Record struct {
	UserID     *uint64
	Method     string
	Path       string
	Status     int
	IP         string
	UserAgent  string
	Payload    []byte
	DurationMS int64
}

// Recorder writes audit rows off the request path. Records flow through a
// buffered channel into a single writer goroutine; when the buffer is full
// the record is dropped with a warning. A slow database never blocks a
// request and a failed write never fails one.
type Recorder struct {
	repo  *Repository
	logg  *logger.Logger
	queue chan Record
	done  chan struct{}

	closeOnce sync.Once
}

// NewRecorder starts the writer goroutine and returns the recorder.
func NewRecorder(repo *Repository, logg *logger.Logger, bufferSize int) *Recorder {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	r := &Recorder{
		repo:  repo,
		logg:  logg,
		queue: make(chan Record, bufferSize),
		done:  make(chan struct{}),
	}
	go r.run()
	return r
}

// Record queues an audit entry. It never blocks.
func (r *Recorder) Record(rec Record) {
	select {
	case r.queue <- rec:
	default:
		if r.logg != nil {
			r.logg.Warn(context.Background(), "activity log buffer full, dropping record")
		}
	}
}

// Close stops accepting records, drains the queue, and waits for the writer
// to finish.
func (r *Recorder) Close() {
	r.closeOnce.Do(func() {
		close(r.queue)
	})
	<-r.done
}

func (r *Recorder) run() {
	defer close(r.done)
	for rec := range r.queue {
		row := &models.ActivityLog{
			UserID:     rec.UserID,
			Method:     rec.Method,
			Path:       rec.Path,
			Status:     rec.Status,
			IP:         rec.IP,
			UserAgent:  rec.UserAgent,
			Payload:    RedactPayload(rec.Payload),
			DurationMS: rec.DurationMS,
		}
		if err := r.repo.Insert(context.Background(), row); err != nil && r.logg != nil {
			r.logg.Error(context.Background(), "activity log write failed", err)
		}
	}
}
