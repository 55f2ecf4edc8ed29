package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/db"
)

// runStore is the slice of db.DB the recorder depends on.
type runStore interface {
	CreateRun(ctx context.Context, candidateName, jobTitle, jobSource string) (uuid.UUID, error)
	RecordStage(ctx context.Context, runID uuid.UUID, stage, status string, duration time.Duration) error
	SaveArtifact(ctx context.Context, runID uuid.UUID, name string, content any) error
	CompleteRun(ctx context.Context, runID uuid.UUID, status string) error
}

// pendingStage holds a stage outcome observed before the run record
// exists. The candidate and job names come out of the structuring
// stages, so those stages finish before create can be called.
type pendingStage struct {
	stage    string
	status   string
	duration time.Duration
}

// runRecorder wraps optional run-history persistence. Every method is a
// no-op when no database is connected, and failures are logged, never
// propagated. Stage records arriving before create are buffered and
// flushed once the run row exists.
type runRecorder struct {
	store   runStore
	log     *zap.Logger
	runID   uuid.UUID
	pending []pendingStage
}

func (r *runRecorder) create(ctx context.Context, candidateName, jobTitle, jobSource string) {
	if r.store == nil {
		return
	}
	id, err := r.store.CreateRun(ctx, candidateName, jobTitle, jobSource)
	if err != nil {
		r.log.Warn("failed to create run record", zap.Error(err))
		return
	}
	r.runID = id
	for _, p := range r.pending {
		if err := r.store.RecordStage(ctx, r.runID, p.stage, p.status, p.duration); err != nil {
			r.log.Warn("failed to record stage", zap.String("stage", p.stage), zap.Error(err))
		}
	}
	r.pending = nil
}

func (r *runRecorder) id() string {
	if r.runID == uuid.Nil {
		return ""
	}
	return r.runID.String()
}

func (r *runRecorder) recordStage(ctx context.Context, stage, status string, duration time.Duration) {
	if r.store == nil {
		return
	}
	if r.runID == uuid.Nil {
		r.pending = append(r.pending, pendingStage{stage: stage, status: status, duration: duration})
		return
	}
	if err := r.store.RecordStage(ctx, r.runID, stage, status, duration); err != nil {
		r.log.Warn("failed to record stage", zap.String("stage", stage), zap.Error(err))
	}
}

func (r *runRecorder) saveArtifact(ctx context.Context, name string, content any) {
	if r.store == nil || r.runID == uuid.Nil {
		return
	}
	if err := r.store.SaveArtifact(ctx, r.runID, name, content); err != nil {
		r.log.Warn("failed to save artifact", zap.String("artifact", name), zap.Error(err))
	}
}

func (r *runRecorder) complete(ctx context.Context) {
	if r.store == nil || r.runID == uuid.Nil {
		return
	}
	if err := r.store.CompleteRun(ctx, r.runID, db.StatusCompleted); err != nil {
		r.log.Warn("failed to mark run completed", zap.Error(err))
	}
}

// fail marks the run failed and passes the error through unchanged.
func (r *runRecorder) fail(ctx context.Context, cause error) error {
	if r.store != nil && r.runID != uuid.Nil {
		if err := r.store.CompleteRun(ctx, r.runID, db.StatusFailed); err != nil {
			r.log.Warn("failed to mark run failed", zap.Error(err))
		}
	}
	return cause
}

// timeStage runs a stage function, records its duration and outcome, and
// returns its result.
func timeStage[T any](ctx context.Context, run *runRecorder, stage string, fn func() (T, error)) (T, error) {
	start := time.Now()
	result, err := fn()
	status := db.StatusCompleted
	if err != nil {
		status = db.StatusFailed
	}
	run.recordStage(ctx, stage, status, time.Since(start))
	return result, err
}
