package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/srbenoit/mathops-db-sub013/pkg/errors"
	"github.com/srbenoit/mathops-db-sub013/pkg/jobs"
)

// RecomputeJobType names queue jobs that refresh a student's term record and completions.
const RecomputeJobType = "student_recompute"

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// RecomputeRequest is the payload of a recompute job.
type RecomputeRequest struct {
	StudentID string `json:"student_id"`
	TermID    string `json:"term_id"`
}

// RecomputeService queues and runs per-student recomputation of pace records and course completion.
type RecomputeService struct {
	source      *StudentDataSource
	paceTracks  *PaceTrackService
	completions *CourseStatusService
	queue       jobDispatcher
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewRecomputeService wires the recompute pipeline.
func NewRecomputeService(source *StudentDataSource, paceTracks *PaceTrackService, completions *CourseStatusService, queue jobDispatcher, metrics *MetricsService, logger *zap.Logger) *RecomputeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecomputeService{
		source:      source,
		paceTracks:  paceTracks,
		completions: completions,
		queue:       queue,
		metrics:     metrics,
		logger:      logger,
	}
}

// SetQueue attaches the dispatcher once the queue, which needs Handle, has been built.
func (s *RecomputeService) SetQueue(queue jobDispatcher) {
	s.queue = queue
}

// Enqueue schedules a recompute. Jobs are keyed by student so one student's work runs in order.
func (s *RecomputeService) Enqueue(req RecomputeRequest) (string, error) {
	if req.StudentID == "" || req.TermID == "" {
		return "", appErrors.Clone(appErrors.ErrInvalidArgument, "student and term are required")
	}
	if s.queue == nil {
		return "", appErrors.Clone(appErrors.ErrInternal, "recompute queue not configured")
	}

	id := uuid.NewString()
	if err := s.queue.Enqueue(jobs.Job{ID: id, Key: req.StudentID, Type: RecomputeJobType, Payload: req}); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue recompute job")
	}
	s.logger.Debug("recompute queued", zap.String("job_id", id), zap.String("student_id", req.StudentID))
	return id, nil
}

// Handle processes a queue job.
func (s *RecomputeService) Handle(ctx context.Context, job jobs.Job) error {
	req, ok := job.Payload.(RecomputeRequest)
	if !ok {
		return fmt.Errorf("unexpected payload %T for job %s", job.Payload, job.ID)
	}
	start := time.Now()
	err := s.Run(ctx, req)
	s.metrics.ObserveJob(job.Type, err, time.Since(start))
	return err
}

// Run refreshes the student-term record then re-checks completion of every open, counted registration.
func (s *RecomputeService) Run(ctx context.Context, req RecomputeRequest) error {
	sd := s.source.Open(req.StudentID, req.TermID)
	regs, err := sd.Registrations(ctx)
	if err != nil {
		return err
	}
	if err := s.paceTracks.UpdateStudentTerm(ctx, req.StudentID, req.TermID, regs); err != nil {
		return err
	}

	for _, reg := range regs {
		if !reg.IsOpen() || !IsCountedTowardPace(reg) {
			continue
		}
		updated, err := s.completions.CheckForComplete(ctx, sd, reg)
		if err != nil {
			if appErrors.Is(err, appErrors.ErrMissingConfiguration) {
				s.logger.Warn("skipping completion check", zap.String("student_id", req.StudentID),
					zap.String("course", reg.CourseID), zap.Error(err))
				continue
			}
			return err
		}
		if updated.Completed != reg.Completed {
			s.logger.Info("completion changed", zap.String("student_id", req.StudentID),
				zap.String("course", reg.CourseID), zap.Bool("completed", updated.Completed))
		}
	}
	return nil
}
