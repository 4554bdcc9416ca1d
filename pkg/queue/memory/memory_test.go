package memory_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/chatops-lab/chatrelay/pkg/domain/model"
	"github.com/chatops-lab/chatrelay/pkg/queue/memory"
)

func TestQueue(t *testing.T) {
	ctx := context.Background()

	t.Run("Enqueue preserves submission order", func(t *testing.T) {
		q := memory.New()

		gt.NoError(t, q.Enqueue(ctx, &model.CompletionJob{Channel: "C001", Message: "first"}))
		gt.NoError(t, q.Enqueue(ctx, &model.CompletionJob{Channel: "C001", Message: "second"}))

		jobs := q.Jobs()
		gt.Array(t, jobs).Length(2)
		gt.Value(t, jobs[0].Message).Equal("first")
		gt.Value(t, jobs[1].Message).Equal("second")
	})

	t.Run("Jobs returns an isolated snapshot", func(t *testing.T) {
		q := memory.New()

		gt.NoError(t, q.Enqueue(ctx, &model.CompletionJob{Channel: "C001", Message: "original"}))

		jobs := q.Jobs()
		jobs[0].Message = "mutated"

		again := q.Jobs()
		gt.Value(t, again[0].Message).Equal("original")
	})

	t.Run("Enqueue copies the job", func(t *testing.T) {
		q := memory.New()

		job := &model.CompletionJob{Channel: "C001", Message: "original"}
		gt.NoError(t, q.Enqueue(ctx, job))
		job.Message = "mutated"

		gt.Value(t, q.Jobs()[0].Message).Equal("original")
	})

	t.Run("Close is a no-op", func(t *testing.T) {
		q := memory.New()
		gt.NoError(t, q.Close())
	})
}
