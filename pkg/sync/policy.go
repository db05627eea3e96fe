package sync

import (
	"context"
	"time"

	"github.com/sdejongh/copypix/pkg/compare"
	"github.com/sdejongh/copypix/pkg/models"
	"github.com/sdejongh/copypix/pkg/storage"
)

// PolicyConfig holds the reconciliation settings
type PolicyConfig struct {
	Overwrite models.OverwritePolicy
	// TreatEmptyDestAsOverwritable replaces zero-byte destination files
	// even under NeverOverwrite
	TreatEmptyDestAsOverwritable bool
	Verify                       bool
}

// Policy decides and executes the action for one candidate file
type Policy struct {
	backend    storage.Backend
	comparator *compare.Comparator
	copier     Copier
	config     PolicyConfig
}

// NewPolicy creates a reconciliation policy
func NewPolicy(backend storage.Backend, comparator *compare.Comparator, copier Copier, config PolicyConfig) *Policy {
	if config.Overwrite == "" {
		config.Overwrite = models.NeverOverwrite
	}
	return &Policy{
		backend:    backend,
		comparator: comparator,
		copier:     copier,
		config:     config,
	}
}

// Reconcile resolves the candidate to exactly one outcome:
//  1. source missing -> Failed
//  2. destination missing -> copy
//  3. destination identical -> SkippedIdentical
//  4. destination differs, overwrite not allowed -> SkippedConflict
//  5. destination differs, overwrite allowed -> delete, then copy
func (p *Policy) Reconcile(ctx context.Context, c *models.CandidateFile) models.Outcome {
	start := time.Now()
	defer func() { c.SetDuration(time.Since(start)) }()

	src, dst := c.SourcePath(), c.DestPath()

	srcInfo, err := p.backend.Stat(ctx, src)
	if err != nil {
		if storage.IsNotExist(err) {
			return p.resolve(c, models.OutcomeFailed, models.ErrSourceMissing)
		}
		return p.resolve(c, models.OutcomeFailed, &models.FileError{Op: models.OpStat, Path: src, Err: err})
	}
	if !srcInfo.IsRegular {
		return p.resolve(c, models.OutcomeFailed, models.ErrSourceMissing)
	}

	dstInfo, err := p.backend.Stat(ctx, dst)
	if err != nil && !storage.IsNotExist(err) {
		return p.resolve(c, models.OutcomeFailed, &models.FileError{Op: models.OpStat, Path: dst, Err: err})
	}
	// Anything that is not a regular file counts as absent; the copy
	// then fails to open it and reports why.
	if err != nil || !dstInfo.IsRegular {
		return p.copy(ctx, c)
	}

	identical, err := p.comparator.IsIdentical(ctx, src, dst)
	if err != nil {
		return p.resolve(c, models.OutcomeFailed, err)
	}
	if identical {
		return p.resolve(c, models.OutcomeSkippedIdentical, nil)
	}

	if !p.mayOverwrite(dstInfo) {
		return p.resolve(c, models.OutcomeSkippedConflict, nil)
	}

	if err := p.backend.Remove(ctx, dst); err != nil && !storage.IsNotExist(err) {
		return p.resolve(c, models.OutcomeFailed, &models.FileError{Op: models.OpDelete, Path: dst, Err: err})
	}

	return p.copy(ctx, c)
}

func (p *Policy) mayOverwrite(dst *storage.FileInfo) bool {
	if p.config.Overwrite == models.AlwaysOverwriteConflicts {
		return true
	}
	return p.config.TreatEmptyDestAsOverwritable && dst.Size == 0
}

func (p *Policy) copy(ctx context.Context, c *models.CandidateFile) models.Outcome {
	result := p.copier.CopyVerified(ctx, c.SourcePath(), c.DestPath(), p.config.Verify)
	c.SetTransfer(result.BytesWritten, result.CleanupErr)
	return p.resolve(c, result.Outcome(), result.Err)
}

func (p *Policy) resolve(c *models.CandidateFile, outcome models.Outcome, err error) models.Outcome {
	c.Resolve(outcome, err)
	return c.Outcome()
}
