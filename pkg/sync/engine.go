package sync

import (
	"cmp"
	"context"
	"errors"
	"io"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sdejongh/copypix/pkg/compare"
	"github.com/sdejongh/copypix/pkg/logging"
	"github.com/sdejongh/copypix/pkg/models"
	"github.com/sdejongh/copypix/pkg/output"
	"github.com/sdejongh/copypix/pkg/ratelimit"
	"github.com/sdejongh/copypix/pkg/storage"
)

// Engine orchestrates a batch run: it selects candidates from the source
// directory and reconciles each one against the destination
type Engine struct {
	backend   storage.Backend
	formatter output.Formatter
	logger    logging.Logger
	operation *models.CopyOperation

	filter     *Filter
	comparator *compare.Comparator
	policy     *Policy
}

// NewEngine creates a new engine. formatter may be nil when the caller
// consumes events itself.
func NewEngine(
	backend storage.Backend,
	formatter output.Formatter,
	logger logging.Logger,
	operation *models.CopyOperation,
) *Engine {
	if logger == nil {
		logger = logging.NewNullLogger()
	}

	limiter := ratelimit.NewLimiter(operation.BandwidthLimit)
	hasher := compare.NewHasher(backend, operation.HashAlgorithm, operation.BufferSize)
	if limiter != nil {
		hasher.SetReaderWrapper(func(rc io.ReadCloser) io.ReadCloser {
			return ratelimit.NewReadCloser(context.Background(), rc, limiter)
		})
	}
	comparator := compare.NewComparator(backend, hasher)
	copier := NewCopyEngine(backend, hasher, operation.BufferSize, limiter)

	return &Engine{
		backend:    backend,
		formatter:  formatter,
		logger:     logger,
		operation:  operation,
		filter:     NewFilter(operation.Extensions, operation.ExcludePatterns),
		comparator: comparator,
		policy: NewPolicy(backend, comparator, copier, PolicyConfig{
			Overwrite:                    operation.OverwritePolicy,
			TreatEmptyDestAsOverwritable: operation.TreatEmptyDestAsOverwritable,
			Verify:                       operation.VerifyCopy,
		}),
	}
}

// SetCopier replaces the copy engine used by the reconciliation policy
func (e *Engine) SetCopier(copier Copier) {
	e.policy.copier = copier
}

// Prepare validates the directories, creates the destination if needed and
// lists the candidates. Directory-level problems are returned wrapping
// models.ErrInvalidInput, before any file is touched.
func (e *Engine) Prepare(ctx context.Context) (*Batch, error) {
	src, dst := e.operation.SourcePath, e.operation.DestPath

	if err := ValidatePatterns(e.operation.ExcludePatterns); err != nil {
		return nil, err
	}

	srcInfo, err := e.backend.Stat(ctx, src)
	if err != nil || !srcInfo.IsDir {
		return nil, models.InvalidInputf("source %s is not a directory", src)
	}

	dstInfo, err := e.backend.Stat(ctx, dst)
	switch {
	case err == nil && !dstInfo.IsDir:
		return nil, models.InvalidInputf("destination %s exists but is not a directory", dst)
	case err != nil && !storage.IsNotExist(err):
		return nil, models.InvalidInputf("cannot access destination %s: %v", dst, err)
	case err != nil:
		if err := e.backend.MkdirAll(ctx, dst); err != nil {
			return nil, models.InvalidInputf("cannot create destination %s: %v", dst, err)
		}
		e.logger.Info(ctx, "Created destination directory", logging.Fields{"path": dst})
	}

	entries, err := e.backend.ReadDir(ctx, src)
	if err != nil {
		return nil, models.InvalidInputf("cannot list source %s: %v", src, err)
	}

	batch := &Batch{engine: e}
	for _, entry := range entries {
		if !entry.IsRegular || !e.filter.Match(entry.Name) {
			continue
		}
		batch.entries = append(batch.entries, entry)
	}
	slices.SortFunc(batch.entries, func(a, b storage.FileInfo) int {
		return cmp.Compare(a.Name, b.Name)
	})

	e.logger.Info(ctx, "Selected candidates", logging.Fields{
		"source":     src,
		"dest":       dst,
		"scanned":    len(entries),
		"candidates": len(batch.entries),
	})

	return batch, nil
}

// Run prepares a batch, drains its events into the formatter and returns
// the run report. An invalid input error is returned together with a
// failed report.
func (e *Engine) Run(ctx context.Context) (*models.RunReport, error) {
	if e.operation.ID == "" {
		e.operation.ID = uuid.New().String()
	}

	report := &models.RunReport{
		OperationID: e.operation.ID,
		SourcePath:  e.operation.SourcePath,
		DestPath:    e.operation.DestPath,
		StartTime:   time.Now(),
		Status:      models.StatusSuccess,
	}

	e.logger.Info(ctx, "Starting copy operation", logging.Fields{
		"operation_id": e.operation.ID,
		"source":       e.operation.SourcePath,
		"dest":         e.operation.DestPath,
		"overwrite":    e.operation.OverwritePolicy,
		"verify":       e.operation.VerifyCopy,
		"max_workers":  e.operation.MaxWorkers,
	})

	batch, err := e.Prepare(ctx)
	if err != nil {
		report.Status = models.StatusFailed
		if ctx.Err() != nil {
			report.Status = models.StatusCancelled
		}
		report.EndTime = time.Now()
		report.Duration = report.EndTime.Sub(report.StartTime)
		e.logger.Error(ctx, "Copy operation aborted", err, nil)
		if e.formatter != nil {
			e.formatter.Error(err)
		}
		return report, err
	}

	if e.formatter != nil {
		e.formatter.Start(nil, batch.Total())
	}

	for event := range batch.Events(ctx) {
		if e.formatter != nil {
			e.formatter.Progress(event)
		}
	}

	report.Files = batch.Files()
	report.Stats = batch.Statistics()
	report.Status = models.StatusFor(report.Stats)
	if batch.Cancelled() {
		report.Status = models.StatusCancelled
	}
	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)

	if e.formatter != nil {
		e.formatter.Complete(report)
	}

	e.logger.Info(ctx, "Copy operation completed", logging.Fields{
		"duration":          report.Duration.String(),
		"status":            report.Status,
		"total":             report.Stats.Total,
		"copied":            report.Stats.Copied,
		"copied_with_error": report.Stats.CopiedWithError,
		"skipped_identical": report.Stats.SkippedIdentical,
		"skipped_conflict":  report.Stats.SkippedConflict,
		"failed":            report.Stats.Failed,
		"bytes_copied":      report.Stats.BytesCopied,
	})

	return report, nil
}

// Batch is the prepared candidate list of one run
type Batch struct {
	engine  *Engine
	entries []storage.FileInfo

	mu        sync.Mutex
	files     []*models.CandidateFile
	stats     models.RunStatistics
	cancelled bool
}

// Total returns the number of candidates
func (b *Batch) Total() int {
	return len(b.entries)
}

// Names returns the candidate names in reconciliation order
func (b *Batch) Names() []string {
	names := make([]string, len(b.entries))
	for i, entry := range b.entries {
		names[i] = entry.Name
	}
	return names
}

// Events returns the lazy sequence of per-candidate events. Nothing is
// touched until the sequence is ranged over, and each range is a fresh
// pass with fresh candidates. The context is checked before each
// candidate; a cancelled pass ends early with the remaining candidates
// unprocessed.
func (b *Batch) Events(ctx context.Context) iter.Seq[models.Event] {
	return func(yield func(models.Event) bool) {
		candidates := b.newCandidates()
		complete := false
		defer func() { b.finish(ctx, candidates, complete) }()

		if b.engine.operation.MaxWorkers > 1 && len(candidates) > 1 {
			complete = b.runParallel(ctx, candidates, b.engine.operation.MaxWorkers, yield)
		} else {
			complete = b.runSequential(ctx, candidates, yield)
		}
	}
}

// Files returns the resolved candidates of the last pass, in order
func (b *Batch) Files() []*models.CandidateFile {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.files)
}

// Statistics returns the tally of the last pass
func (b *Batch) Statistics() models.RunStatistics {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// Cancelled reports whether the last pass was stopped by its context
func (b *Batch) Cancelled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cancelled
}

func (b *Batch) newCandidates() []*models.CandidateFile {
	op := b.engine.operation
	candidates := make([]*models.CandidateFile, len(b.entries))
	for i, entry := range b.entries {
		candidates[i] = models.NewCandidateFile(entry.Name, op.SourcePath, op.DestPath, entry.Size)
	}
	return candidates
}

func (b *Batch) runSequential(ctx context.Context, candidates []*models.CandidateFile, yield func(models.Event) bool) bool {
	for i, c := range candidates {
		if ctx.Err() != nil {
			return false
		}
		b.engine.policy.Reconcile(ctx, c)
		b.engine.logOutcome(ctx, c)
		if !yield(models.NewEvent(i+1, len(candidates), c)) {
			return false
		}
	}
	return true
}

func (b *Batch) finish(ctx context.Context, candidates []*models.CandidateFile, complete bool) {
	files := make([]*models.CandidateFile, 0, len(candidates))
	for _, c := range candidates {
		if c.Outcome() != models.OutcomePending {
			files = append(files, c)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.files = files
	b.stats = models.ComputeStatistics(files)
	b.cancelled = !complete && errors.Is(ctx.Err(), context.Canceled)
}

func (e *Engine) logOutcome(ctx context.Context, c *models.CandidateFile) {
	fields := logging.Fields{
		"file":     c.Name,
		"outcome":  c.Outcome(),
		"duration": c.Duration().String(),
	}

	switch c.Outcome() {
	case models.OutcomeCopied:
		fields["bytes"] = c.BytesCopied()
		e.logger.Info(ctx, "File copied", fields)
	case models.OutcomeSkippedIdentical:
		e.logger.Debug(ctx, "Identical file skipped", fields)
	case models.OutcomeSkippedConflict:
		e.logger.Warn(ctx, "Different file exists in destination, skipped", fields)
	case models.OutcomeCopiedWithError:
		e.logger.Error(ctx, "File copied with errors", c.Err(), fields)
	case models.OutcomeFailed:
		if op := models.FailedOp(c.Err()); op != "" {
			fields["op"] = op
		}
		e.logger.Error(ctx, "File not copied", c.Err(), fields)
	}

	if c.CleanupErr() != nil {
		e.logger.Error(ctx, "Partial destination file left behind", c.CleanupErr(), logging.Fields{
			"file": c.DestPath(),
		})
	}
}
