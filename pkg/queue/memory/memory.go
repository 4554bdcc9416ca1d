package memory

import (
	"context"
	"sync"

	"github.com/chatops-lab/chatrelay/pkg/domain/interfaces"
	"github.com/chatops-lab/chatrelay/pkg/domain/model"
)

// Queue is an in-process job queue for development and tests
type Queue struct {
	mu   sync.Mutex
	jobs []*model.CompletionJob
}

var _ interfaces.JobQueue = &Queue{}

func New() *Queue {
	return &Queue{}
}

func (q *Queue) Enqueue(ctx context.Context, job *model.CompletionJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	copied := *job
	q.jobs = append(q.jobs, &copied)
	return nil
}

func (q *Queue) Close() error {
	return nil
}

// Jobs returns a snapshot of the enqueued jobs in submission order
func (q *Queue) Jobs() []*model.CompletionJob {
	q.mu.Lock()
	defer q.mu.Unlock()

	result := make([]*model.CompletionJob, len(q.jobs))
	for i, j := range q.jobs {
		copied := *j
		result[i] = &copied
	}
	return result
}
