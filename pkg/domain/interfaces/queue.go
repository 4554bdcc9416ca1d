package interfaces

import (
	"context"

	"github.com/chatops-lab/chatrelay/pkg/domain/model"
)

// JobQueue accepts completion job payloads for asynchronous processing.
// Submission is fire-and-forget; the core does not await job completion.
type JobQueue interface {
	Enqueue(ctx context.Context, job *model.CompletionJob) error
	Close() error
}
