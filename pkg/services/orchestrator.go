package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/schemaforge/pkg/adapters/catalog"
	"github.com/ekaya-inc/schemaforge/pkg/apperrors"
	"github.com/ekaya-inc/schemaforge/pkg/logging"
	"github.com/ekaya-inc/schemaforge/pkg/models"
	"github.com/ekaya-inc/schemaforge/pkg/services/workqueue"
	"github.com/ekaya-inc/schemaforge/pkg/translate"
)

// FetchOrchestrator describes batches of objects concurrently and feeds the
// translated results into an Accumulator.
type FetchOrchestrator struct {
	logger        *zap.Logger
	notifier      Notifier
	maxConcurrent int
	opts          translate.Options
}

// NewFetchOrchestrator creates an orchestrator that keeps at most
// maxConcurrent describe requests in flight per batch.
func NewFetchOrchestrator(notifier Notifier, maxConcurrent int, opts translate.Options, logger *zap.Logger) *FetchOrchestrator {
	return &FetchOrchestrator{
		logger:        logger.Named("fetch"),
		notifier:      notifier,
		maxConcurrent: maxConcurrent,
		opts:          opts,
	}
}

// Batch is one running fetch. Events delivers one event per object followed
// by a single FetchEventBatchComplete, then closes.
type Batch struct {
	ID      uuid.UUID
	Mode    models.FetchMode
	Objects []string

	events chan models.FetchEvent
	done   chan struct{}
	cancel context.CancelFunc
	queue  *workqueue.Queue

	mu        sync.Mutex
	state     models.BatchState
	succeeded int
	failed    int
}

// Events returns the channel of progress events.
func (b *Batch) Events() <-chan models.FetchEvent { return b.events }

// Done is closed once the batch has settled and its events channel is closed.
func (b *Batch) Done() <-chan struct{} { return b.done }

// Cancel stops the batch. Objects still in flight are discarded.
func (b *Batch) Cancel() {
	b.cancel()
	if b.queue != nil {
		b.queue.Cancel()
	}
}

// State returns the current state of the batch.
func (b *Batch) State() models.BatchState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Summary returns the success and failure counts so far.
func (b *Batch) Summary() (succeeded, failed, total int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.succeeded, b.failed, len(b.Objects)
}

// Start resets acc to a new batch and begins describing objectNames through
// conn. Empty and duplicate names are skipped. The call returns immediately;
// progress is reported on the returned batch's events.
func (o *FetchOrchestrator) Start(ctx context.Context, conn catalog.Connection, objectNames []string, mode models.FetchMode, prefs *models.Preferences, acc *Accumulator) (*Batch, error) {
	if prefs == nil {
		return nil, apperrors.ErrPreferencesNotSet
	}
	if !mode.IsValid() {
		return nil, fmt.Errorf("unknown fetch mode %q", mode)
	}

	names := make([]string, 0, len(objectNames))
	seen := make(map[string]struct{}, len(objectNames))
	for _, name := range objectNames {
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	// Snapshot preferences so edits during the batch do not leak into it.
	snapshot := *prefs

	batchCtx, cancel := context.WithCancel(ctx)
	b := &Batch{
		ID:      uuid.New(),
		Mode:    mode,
		Objects: names,
		events:  make(chan models.FetchEvent, len(names)+1),
		done:    make(chan struct{}),
		cancel:  cancel,
		state:   models.BatchRunning,
	}

	acc.Reset(b.ID, mode)

	o.logger.Info("Starting fetch batch",
		zap.String("batch_id", b.ID.String()),
		zap.String("org_id", conn.OrgID()),
		zap.String("mode", string(mode)),
		zap.Int("objects", len(names)))

	if len(names) == 0 {
		o.finish(batchCtx, b)
		return b, nil
	}

	b.queue = workqueue.New(o.logger,
		workqueue.WithStrategy(workqueue.NewThrottledStrategy(o.maxConcurrent)),
		workqueue.WithParentContext(batchCtx))

	for _, name := range names {
		objectName := name
		b.queue.Enqueue(workqueue.NewFuncTask("describe "+objectName, func(taskCtx context.Context) error {
			err := o.fetchOne(taskCtx, b, conn, objectName, &snapshot, acc)
			if IsSuperseded(err) {
				o.logger.Debug("Dropped describe result of superseded batch",
					zap.String("batch_id", b.ID.String()),
					zap.String("object", objectName))
			}
			return err
		}))
	}

	go func() {
		_ = b.queue.Wait(context.Background())
		o.finish(batchCtx, b)
	}()

	return b, nil
}

func (o *FetchOrchestrator) fetchOne(ctx context.Context, b *Batch, conn catalog.Connection, objectName string, prefs *models.Preferences, acc *Accumulator) error {
	describe, err := conn.Describe(ctx, objectName)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err == nil {
		o.warnUnknownTypes(describe)
		var schema *models.ObjectSchema
		schema, err = translate.BuildObjectSchema(describe, b.Mode, prefs, o.opts)
		if err == nil {
			if !acc.Put(b.ID, schema) {
				return apperrors.ErrBatchSuperseded
			}
			o.succeed(b, conn, schema)
			return nil
		}
	}

	o.fail(b, objectName, err)
	return err
}

// warnUnknownTypes reports field types without an explicit mapping. Those
// fields still translate, as text columns.
func (o *FetchOrchestrator) warnUnknownTypes(d *models.ObjectDescribe) {
	var unknown []string
	seen := make(map[string]struct{})
	for _, f := range d.Fields {
		if translate.IsKnownType(f.Type) {
			continue
		}
		if _, ok := seen[f.Type]; ok {
			continue
		}
		seen[f.Type] = struct{}{}
		unknown = append(unknown, f.Type)
	}
	if len(unknown) == 0 {
		return
	}
	sort.Strings(unknown)
	o.logger.Warn("Unmapped field types",
		zap.String("object", d.Name),
		zap.Strings("types", unknown))
	notify(o.notifier, SenderSchema, models.SeverityWarning, "%s has fields of unmapped types (%s); they are treated as text", d.Name, strings.Join(unknown, ", "))
}

func (o *FetchOrchestrator) succeed(b *Batch, conn catalog.Connection, schema *models.ObjectSchema) {
	b.mu.Lock()
	b.succeeded++
	succeeded, total := b.succeeded, len(b.Objects)
	b.mu.Unlock()

	progress := fmt.Sprintf("%d of %d processed", succeeded, total)
	b.events <- models.FetchEvent{
		Type:      models.FetchEventObjectCompleted,
		BatchID:   b.ID,
		Mode:      b.Mode,
		Object:    schema.Name,
		Schema:    schema,
		Progress:  progress,
		Fraction:  float64(succeeded) / float64(total),
		IsFinal:   succeeded == total,
		Succeeded: succeeded,
		Total:     total,
		LimitInfo: conn.LimitInfo(),
	}

	o.logger.Debug("Described object",
		zap.String("batch_id", b.ID.String()),
		zap.String("object", schema.Name),
		zap.String("progress", progress))
	notify(o.notifier, SenderLoader, models.SeverityInfo, "Loaded %d of %d Object Describes", succeeded, total)
}

func (o *FetchOrchestrator) fail(b *Batch, objectName string, err error) {
	b.mu.Lock()
	b.failed++
	succeeded, failed, total := b.succeeded, b.failed, len(b.Objects)
	b.mu.Unlock()

	msg := logging.SanitizeError(err)
	b.events <- models.FetchEvent{
		Type:      models.FetchEventObjectFailed,
		BatchID:   b.ID,
		Mode:      b.Mode,
		Object:    objectName,
		Error:     msg,
		Fraction:  float64(succeeded) / float64(total),
		Succeeded: succeeded,
		Failed:    failed,
		Total:     total,
	}

	o.logger.Error("Failed to describe object",
		zap.String("batch_id", b.ID.String()),
		zap.String("object", objectName),
		zap.String("error", msg))
	notify(o.notifier, SenderCatalog, models.SeverityError, "Failed to describe %s: %s", objectName, msg)
}

// finish settles the batch state, emits the closing event and releases the
// batch context.
func (o *FetchOrchestrator) finish(ctx context.Context, b *Batch) {
	b.mu.Lock()
	settled := b.succeeded + b.failed
	total := len(b.Objects)
	switch {
	case settled < total && ctx.Err() != nil:
		b.state = models.BatchCancelled
	case b.failed > 0:
		b.state = models.BatchCompletedWithErrors
	default:
		b.state = models.BatchCompleted
	}
	state, succeeded, failed := b.state, b.succeeded, b.failed
	b.mu.Unlock()

	// Unsettled objects are cancelled in the queue, started or not.
	var cancelled int
	if b.queue != nil && state == models.BatchCancelled {
		cancelled = b.queue.Progress().Cancelled
	}

	var fraction float64 = 1
	if total > 0 {
		fraction = float64(succeeded) / float64(total)
	}
	b.events <- models.FetchEvent{
		Type:      models.FetchEventBatchComplete,
		BatchID:   b.ID,
		Mode:      b.Mode,
		Progress:  fmt.Sprintf("%d of %d processed", succeeded, total),
		Fraction:  fraction,
		IsFinal:   state == models.BatchCompleted,
		State:     state,
		Succeeded: succeeded,
		Failed:    failed,
		Cancelled: cancelled,
		Total:     total,
	}
	close(b.events)
	b.cancel()
	close(b.done)

	fields := []zap.Field{
		zap.String("batch_id", b.ID.String()),
		zap.String("state", string(state)),
		zap.Int("succeeded", succeeded),
		zap.Int("failed", failed),
		zap.Int("cancelled", cancelled),
		zap.Int("total", total),
	}
	if state == models.BatchCancelled {
		o.logger.Info("Fetch batch cancelled", fields...)
		return
	}
	o.logger.Info("Fetch batch finished", fields...)
}

// IsSuperseded reports whether err came from a batch replaced by a newer one.
func IsSuperseded(err error) bool {
	return errors.Is(err, apperrors.ErrBatchSuperseded)
}
