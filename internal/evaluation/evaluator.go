// Package evaluation runs résumé documents through the stage pipeline and
// produces an evaluation record.
package evaluation

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resume-evaluator/internal/document"
	"github.com/spigell/resume-evaluator/internal/logger"
)

// DefaultTimeout bounds a single evaluation when no timeout is configured.
const DefaultTimeout = 60 * time.Second

// Loader turns a document reference into content.
type Loader interface {
	Load(ref document.Reference) (*document.Content, error)
}

// Options tune an Evaluator.
type Options struct {
	// Timeout bounds each Evaluate call. Zero means DefaultTimeout, negative disables it.
	Timeout time.Duration
	Logger  *zap.Logger
}

// Result is what one Evaluate call hands back. Record always carries the
// document reference plus every field folded before a failure.
type Result struct {
	ID      string        `json:"id"`
	Record  Record        `json:"record"`
	State   State         `json:"state"`
	History []State       `json:"history"`
	Err     error         `json:"-"`
	Elapsed time.Duration `json:"elapsed"`
}

// Failed reports whether the evaluation ended in the failed state.
func (r *Result) Failed() bool { return r.State == StateFailed }

func (r *Result) transition(s State) {
	r.State = s
	r.History = append(r.History, s)
}

// Evaluator runs the configured stages against documents. It is safe for
// concurrent use once stages are no longer being enabled or disabled.
type Evaluator struct {
	loader  Loader
	stages  []Stage
	timeout time.Duration
	logger  *zap.Logger
}

func New(loader Loader, stages []Stage, opts Options) (*Evaluator, error) {
	if loader == nil {
		return nil, errors.New("document loader is required")
	}

	seen := make(map[string]struct{}, len(stages))
	for _, stage := range stages {
		if stage == nil {
			return nil, errors.New("nil stage in pipeline")
		}
		if _, dup := seen[stage.Name()]; dup {
			return nil, fmt.Errorf("duplicate stage %q", stage.Name())
		}
		seen[stage.Name()] = struct{}{}
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Evaluator{loader: loader, stages: stages, timeout: timeout, logger: log}, nil
}

// Stages returns the pipeline in declaration order.
func (e *Evaluator) Stages() []Stage { return e.stages }

// Evaluate loads ref and runs every enabled stage. It never panics and never
// returns a bare error: failures are reported through Result.State and Result.Err.
func (e *Evaluator) Evaluate(ctx context.Context, ref document.Reference) (res Result) {
	started := time.Now()
	res = Result{ID: uuid.NewString(), Record: Record{DocumentReference: ref}}
	res.transition(StateCreated)

	log := logger.ForEvaluation(e.logger, res.ID, ref.String())

	defer func() {
		if r := recover(); r != nil {
			e.fail(&res, &StageFault{Stage: "pipeline", Err: fmt.Errorf("%w: %v", ErrStagePanic, r)})
			log.Error("evaluation panicked", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
		}
		res.Elapsed = time.Since(started)
		if res.Failed() {
			log.Warn("evaluation failed", zap.Stringer("state", res.State), zap.Error(res.Err), zap.Duration("elapsed", res.Elapsed))
			return
		}
		log.Info("evaluation finished", zap.Stringer("state", res.State), zap.Strings("fields", res.Record.Fields()), zap.Duration("elapsed", res.Elapsed))
	}()

	if ctx == nil {
		ctx = context.Background()
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	content, err := guard(ctx, func() (*document.Content, error) { return e.loader.Load(ref) })
	if err != nil {
		e.fail(&res, loadError(ctx, err))
		return res
	}
	res.transition(StateLoaded)
	log.Debug("document loaded", zap.String("format", content.Format), zap.Int("pages", content.Pages))

	res.transition(StateExtracting)
	if err := e.runExtract(ctx, log, content, &res.Record); err != nil {
		e.fail(&res, err)
		return res
	}
	res.transition(StateRoleInferred)

	if err := e.runScore(ctx, log, content, &res.Record); err != nil {
		e.fail(&res, err)
		return res
	}
	res.transition(StateScored)

	res.transition(StateCompleted)
	return res
}

func (e *Evaluator) fail(res *Result, err error) {
	if res.State.Terminal() {
		return
	}
	res.Err = err
	res.transition(StateFailed)
}

// runExtract runs the extract phase concurrently and folds the successful
// patches in declaration order. The first fault cancels the remaining stages.
func (e *Evaluator) runExtract(ctx context.Context, log *zap.Logger, content *document.Content, rec *Record) error {
	stages := e.enabled(log, PhaseExtract)
	if len(stages) == 0 {
		return nil
	}

	snapshot := rec.Clone()
	patches := make([]*Record, len(stages))

	g, gctx := errgroup.WithContext(ctx)
	for i, stage := range stages {
		g.Go(func() error {
			patch, err := e.runStage(gctx, log, stage, content, snapshot)
			if err != nil {
				return err
			}
			patches[i] = &patch
			return nil
		})
	}
	fault := g.Wait()

	for i, patch := range patches {
		if patch == nil {
			continue
		}
		if err := rec.Merge(*patch); err != nil && fault == nil {
			fault = &StageFault{Stage: stages[i].Name(), Err: err}
		}
	}
	return fault
}

// runScore runs the score phase sequentially, each stage seeing the record
// as folded so far.
func (e *Evaluator) runScore(ctx context.Context, log *zap.Logger, content *document.Content, rec *Record) error {
	for _, stage := range e.enabled(log, PhaseScore) {
		patch, err := e.runStage(ctx, log, stage, content, rec.Clone())
		if err != nil {
			return err
		}
		if err := rec.Merge(patch); err != nil {
			return &StageFault{Stage: stage.Name(), Err: err}
		}
	}
	return nil
}

func (e *Evaluator) runStage(ctx context.Context, log *zap.Logger, stage Stage, content *document.Content, snapshot Record) (Record, error) {
	stageLog := logger.ForStage(log, stage.Name())
	started := time.Now()

	patch, err := guard(ctx, func() (Record, error) {
		return stage.Apply(ctx, content, snapshot)
	})
	if err != nil {
		fault := &StageFault{Stage: stage.Name(), Err: timeoutError(ctx, err)}
		stageLog.Debug("stage fault", zap.Error(err), zap.Duration("elapsed", time.Since(started)))
		return Record{}, fault
	}

	stageLog.Debug("stage finished",
		zap.Strings("fields", patch.Fields()),
		zap.Duration("elapsed", time.Since(started)),
	)
	return patch, nil
}

func (e *Evaluator) enabled(log *zap.Logger, phase Phase) []Stage {
	var stages []Stage
	for _, stage := range e.stages {
		if stage.Phase() != phase {
			continue
		}
		if !stage.IsEnabled() {
			log.Debug("stage disabled", zap.String(logger.FieldStage, stage.Name()))
			continue
		}
		stages = append(stages, stage)
	}
	return stages
}

// guard runs fn in its own goroutine, converting a panic into an error and
// abandoning fn if ctx is done first.
func guard[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type outcome struct {
		value T
		err   error
	}

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("%w: %v", ErrStagePanic, r)}
			}
		}()
		value, err := fn()
		done <- outcome{value: value, err: err}
	}()

	select {
	case out := <-done:
		return out.value, out.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func loadError(ctx context.Context, err error) error {
	if errors.Is(err, ErrStagePanic) {
		return fmt.Errorf("%w: %w", document.ErrUnreadableDocument, err)
	}
	return timeoutError(ctx, err)
}

// timeoutError tags err with ErrTimeout when the evaluation deadline has passed.
func timeoutError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}
