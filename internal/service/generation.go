package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/saasforge/saasforge/internal/adapter/otel"
	"github.com/saasforge/saasforge/internal/domain/generation"
	"github.com/saasforge/saasforge/internal/domain/tool"
	"github.com/saasforge/saasforge/internal/middleware"
	"github.com/saasforge/saasforge/internal/port/broadcast"
	"github.com/saasforge/saasforge/internal/port/database"
	"github.com/saasforge/saasforge/internal/port/messagequeue"
)

// GenerationService records generation jobs, hands them to the external
// generator through the queue, and materializes tools from the results.
type GenerationService struct {
	store       database.Store
	queue       messagequeue.Queue
	broadcaster broadcast.Broadcaster
	metrics     *otel.Metrics
}

// NewGenerationService creates a new GenerationService.
func NewGenerationService(store database.Store, queue messagequeue.Queue, b broadcast.Broadcaster, m *otel.Metrics) *GenerationService {
	return &GenerationService{store: store, queue: queue, broadcaster: b, metrics: m}
}

// Submit validates and persists a generation job, then publishes the
// request for the external generator. The job starts in the queued state.
func (s *GenerationService) Submit(ctx context.Context, name, description, prompt string) (*generation.Job, error) {
	if err := generation.ValidateSubmission(name, prompt); err != nil {
		return nil, err
	}

	job := &generation.Job{
		Name:        name,
		Description: description,
		Prompt:      prompt,
		State:       generation.StateQueued,
	}
	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, err
	}

	req := generation.Request{
		JobID:    job.ID,
		TenantID: job.TenantID,
		Name:     job.Name,
		Prompt:   job.Prompt,
	}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal generation request: %w", err)
	}
	if err := s.queue.Publish(ctx, messagequeue.SubjectGenerationRequested, data); err != nil {
		job.State = generation.StateFailed
		job.Error = "could not reach the generation queue"
		if updErr := s.store.UpdateJob(ctx, job); updErr != nil {
			slog.Error("mark job failed", "job_id", job.ID, "error", updErr)
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.GenerationJobs.Add(ctx, 1)
	}
	return job, nil
}

// JobStatus is a job joined with the tool it produced, once completed.
type JobStatus struct {
	Job  *generation.Job `json:"job"`
	Tool *tool.Tool      `json:"tool,omitempty"`
}

// Get returns a job and, when completed, the created tool.
func (s *GenerationService) Get(ctx context.Context, id string) (*JobStatus, error) {
	job, err := s.store.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}

	status := &JobStatus{Job: job}
	if job.State == generation.StateCompleted && job.ToolID != "" {
		t, err := s.store.GetTool(ctx, job.ToolID)
		if err != nil {
			slog.Warn("completed job references missing tool", "job_id", job.ID, "tool_id", job.ToolID)
		} else {
			status.Tool = t
		}
	}
	return status, nil
}

// StartResultSubscriber consumes generator results from the queue. The
// returned function cancels the subscription.
func (s *GenerationService) StartResultSubscriber(ctx context.Context) (func(), error) {
	return s.queue.Subscribe(ctx, messagequeue.SubjectGenerationCompleted, s.handleResult)
}

// handleResult materializes one generator result into a tool. The consumer
// has no request tenant; the job row supplies it.
func (s *GenerationService) handleResult(ctx context.Context, _ string, data []byte) error {
	var res generation.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return fmt.Errorf("unmarshal generation result: %w", err)
	}
	if res.JobID == "" {
		return fmt.Errorf("generation result missing job id")
	}

	job, err := s.store.GetJobAnyTenant(ctx, res.JobID)
	if err != nil {
		return err
	}
	ctx = middleware.WithTenantID(ctx, job.TenantID)

	ctx, span := otel.StartGenerationSpan(ctx, job.ID)
	defer span.End()

	if res.Error != "" {
		job.State = generation.StateFailed
		job.Error = res.Error
		if err := s.store.UpdateJob(ctx, job); err != nil {
			return err
		}
		s.notifyJob(ctx, job)
		return nil
	}

	t, err := tool.New(job.TenantID, job.Name, res.Schema)
	if err != nil {
		// A malformed schema is terminal for the job, not for the consumer.
		job.State = generation.StateFailed
		job.Error = err.Error()
		if updErr := s.store.UpdateJob(ctx, job); updErr != nil {
			return updErr
		}
		s.notifyJob(ctx, job)
		return nil
	}
	t.Description = job.Description

	if len(res.Pages) > 0 {
		if err := t.ReplaceCurrent(res.Pages, nil, nil); err != nil {
			job.State = generation.StateFailed
			job.Error = err.Error()
			if updErr := s.store.UpdateJob(ctx, job); updErr != nil {
				return updErr
			}
			s.notifyJob(ctx, job)
			return nil
		}
	}

	if err := s.store.CreateTool(ctx, t); err != nil {
		return err
	}

	job.State = generation.StateCompleted
	job.ToolID = t.ID
	if err := s.store.UpdateJob(ctx, job); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.ToolsCreated.Add(ctx, 1)
	}
	s.notifyJob(ctx, job)
	slog.Info("generation job completed", "job_id", job.ID, "tool_id", t.ID)
	return nil
}

func (s *GenerationService) notifyJob(ctx context.Context, job *generation.Job) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastEvent(ctx, broadcast.EventJobUpdated, broadcast.JobEvent{
		JobID:  job.ID,
		State:  job.State,
		ToolID: job.ToolID,
	})
}
