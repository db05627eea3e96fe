package sync

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/spf13/afero"

	"github.com/sdejongh/copypix/pkg/models"
)

func TestPrepare_ExtensionFilter(t *testing.T) {
	env := newTestEnv(t)
	for _, name := range []string{"a.jpg", "b.CR2", "c.png", "d.JPG.txt"} {
		env.writeSource(name, name)
	}
	if err := env.fs.MkdirAll(env.srcPath("e.jpg"), 0755); err != nil {
		t.Fatal(err)
	}

	batch, err := NewEngine(env.backend, nil, nil, env.operation()).Prepare(context.Background())
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	want := []string{"a.jpg", "b.CR2"}
	if got := batch.Names(); !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestPrepare_DeterministicOrder(t *testing.T) {
	env := newTestEnv(t)
	for _, name := range []string{"zebra.jpg", "apple.jpg", "mango.cr2"} {
		env.writeSource(name, name)
	}

	batch, err := NewEngine(env.backend, nil, nil, env.operation()).Prepare(context.Background())
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	var order []string
	for event := range batch.Events(context.Background()) {
		order = append(order, event.Name)
	}

	want := []string{"apple.jpg", "mango.cr2", "zebra.jpg"}
	if !slices.Equal(order, want) {
		t.Errorf("event order = %v, want %v", order, want)
	}
}

func TestPrepare_Exclude(t *testing.T) {
	env := newTestEnv(t)
	for _, name := range []string{"IMG_0001.jpg", "IMG_0002.jpg", "thumb_0001.jpg"} {
		env.writeSource(name, name)
	}

	op := env.operation(func(op *models.CopyOperation) {
		op.ExcludePatterns = []string{"thumb_*"}
	})
	batch, err := NewEngine(env.backend, nil, nil, op).Prepare(context.Background())
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	want := []string{"IMG_0001.jpg", "IMG_0002.jpg"}
	if got := batch.Names(); !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestPrepare_InvalidInput(t *testing.T) {
	t.Run("source missing", func(t *testing.T) {
		env := newTestEnv(t)
		op := env.operation(func(op *models.CopyOperation) { op.SourcePath = "/nowhere" })

		_, err := NewEngine(env.backend, nil, nil, op).Prepare(context.Background())
		if !errors.Is(err, models.ErrInvalidInput) {
			t.Errorf("Prepare() error = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("source is a file", func(t *testing.T) {
		env := newTestEnv(t)
		env.writeSource("a.jpg", "A")
		op := env.operation(func(op *models.CopyOperation) { op.SourcePath = env.srcPath("a.jpg") })

		_, err := NewEngine(env.backend, nil, nil, op).Prepare(context.Background())
		if !errors.Is(err, models.ErrInvalidInput) {
			t.Errorf("Prepare() error = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("destination is a file", func(t *testing.T) {
		env := newTestEnv(t)
		env.writeSource("a.jpg", "A")
		if err := afero.WriteFile(env.fs, env.dst, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}

		report, err := NewEngine(env.backend, nil, nil, env.operation()).Run(context.Background())
		if !errors.Is(err, models.ErrInvalidInput) {
			t.Fatalf("Run() error = %v, want ErrInvalidInput", err)
		}
		if report.Status != models.StatusFailed {
			t.Errorf("Status = %s, want %s", report.Status, models.StatusFailed)
		}
		if report.Status.ExitCode() == 0 {
			t.Error("invalid input should produce a non-zero exit code")
		}
	})

	t.Run("malformed exclude pattern", func(t *testing.T) {
		env := newTestEnv(t)
		env.writeSource("a.jpg", "A")
		op := env.operation(func(op *models.CopyOperation) { op.ExcludePatterns = []string{"[oops"} })

		_, err := NewEngine(env.backend, nil, nil, op).Prepare(context.Background())
		if !errors.Is(err, models.ErrInvalidInput) {
			t.Errorf("Prepare() error = %v, want ErrInvalidInput", err)
		}
		if _, statErr := env.fs.Stat(env.dst); statErr == nil {
			t.Error("destination created despite invalid input")
		}
	})
}

func TestRun_EmptySource(t *testing.T) {
	env := newTestEnv(t)
	env.writeSource("notes.txt", "not an image")

	report := env.run(env.operation())

	if report.Stats != (models.RunStatistics{}) {
		t.Errorf("Stats = %+v, want all zero", report.Stats)
	}
	if report.Status != models.StatusSuccess {
		t.Errorf("Status = %s, want %s", report.Status, models.StatusSuccess)
	}
	info, err := env.fs.Stat(env.dst)
	if err != nil || !info.IsDir() {
		t.Errorf("destination directory should have been created, err = %v", err)
	}
}

func TestRun_CopiesNewFiles(t *testing.T) {
	env := newTestEnv(t)
	env.writeSource("a.jpg", "AAAA")
	env.writeSource("b.cr2", "BBBBBBBB")

	report := env.run(env.operation())

	if report.Stats.Total != 2 || report.Stats.Copied != 2 {
		t.Errorf("Stats = %+v, want 2 copied", report.Stats)
	}
	if report.Stats.BytesCopied != 12 {
		t.Errorf("BytesCopied = %d, want 12", report.Stats.BytesCopied)
	}
	if got, ok := env.readDest("a.jpg"); !ok || got != "AAAA" {
		t.Errorf("dest a.jpg = %q (exists %v), want AAAA", got, ok)
	}
	if got, ok := env.readDest("b.cr2"); !ok || got != "BBBBBBBB" {
		t.Errorf("dest b.cr2 = %q (exists %v), want BBBBBBBB", got, ok)
	}
}

func TestRun_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	env.writeSource("a.jpg", "AAAA")
	env.writeSource("b.cr2", "BBBB")
	env.writeDest("b.cr2", "BBBB")

	first := env.run(env.operation())
	if first.Stats.Copied != 1 || first.Stats.SkippedIdentical != 1 {
		t.Fatalf("first run Stats = %+v, want 1 copied and 1 identical", first.Stats)
	}

	second := env.run(env.operation())
	if second.Stats.Copied != 0 {
		t.Errorf("second run copied %d files, want 0", second.Stats.Copied)
	}
	if second.Stats.SkippedIdentical != 2 {
		t.Errorf("second run SkippedIdentical = %d, want 2", second.Stats.SkippedIdentical)
	}
}

func TestRun_ConflictKeepsDestination(t *testing.T) {
	env := newTestEnv(t)
	env.writeSource("img1.jpg", "A")
	env.writeDest("img1.jpg", "B")

	report := env.run(env.operation())

	if got := outcomes(report)["img1.jpg"]; got != models.OutcomeSkippedConflict {
		t.Errorf("outcome = %s, want %s", got, models.OutcomeSkippedConflict)
	}
	if got, _ := env.readDest("img1.jpg"); got != "B" {
		t.Errorf("dest content = %q, want B", got)
	}
	if report.Status != models.StatusPartial {
		t.Errorf("Status = %s, want %s", report.Status, models.StatusPartial)
	}
	if len(report.Attention()) != 1 {
		t.Errorf("Attention() = %d files, want 1", len(report.Attention()))
	}
}

func TestRun_OverwriteConflict(t *testing.T) {
	env := newTestEnv(t)
	env.writeSource("img1.jpg", "A")
	env.writeDest("img1.jpg", "B")

	report := env.run(env.operation(alwaysOverwrite))

	if got := outcomes(report)["img1.jpg"]; got != models.OutcomeCopied {
		t.Errorf("outcome = %s, want %s", got, models.OutcomeCopied)
	}
	if got, _ := env.readDest("img1.jpg"); got != "A" {
		t.Errorf("dest content = %q, want A", got)
	}
}

func TestRun_EmptyDestinationOverwritable(t *testing.T) {
	tests := []struct {
		name       string
		treatEmpty bool
		want       models.Outcome
		wantDest   string
	}{
		{"enabled", true, models.OutcomeCopied, "A"},
		{"disabled", false, models.OutcomeSkippedConflict, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.writeSource("img1.jpg", "A")
			env.writeDest("img1.jpg", "")

			report := env.run(env.operation(func(op *models.CopyOperation) {
				op.TreatEmptyDestAsOverwritable = tt.treatEmpty
			}))

			if got := outcomes(report)["img1.jpg"]; got != tt.want {
				t.Errorf("outcome = %s, want %s", got, tt.want)
			}
			if got, _ := env.readDest("img1.jpg"); got != tt.wantDest {
				t.Errorf("dest content = %q, want %q", got, tt.wantDest)
			}
		})
	}
}

func TestRun_VerificationCatchesCorruption(t *testing.T) {
	env := newTestEnv(t)
	env.writeSource("img1.jpg", "ABCDEF")
	env.fs.CorruptWrites(env.dstPath("img1.jpg"))

	report := env.run(env.operation())

	files := report.FilesWith(models.OutcomeCopiedWithError)
	if len(files) != 1 {
		t.Fatalf("CopiedWithError files = %d, want 1 (outcomes %v)", len(files), outcomes(report))
	}
	if !errors.Is(files[0].Err(), models.ErrVerificationMismatch) {
		t.Errorf("error = %v, want ErrVerificationMismatch", files[0].Err())
	}
	// The bytes stay on disk
	if _, ok := env.readDest("img1.jpg"); !ok {
		t.Error("destination should be kept after a verification mismatch")
	}
}

func TestRun_WriteFailureLeavesNoDestination(t *testing.T) {
	env := newTestEnv(t)
	env.writeSource("img1.jpg", "ABCDEFGHIJ")
	env.writeSource("img2.jpg", "KLMN")
	env.fs.FailWriteAfter(env.dstPath("img1.jpg"), 4)

	report := env.run(env.operation())

	got := outcomes(report)
	if got["img1.jpg"] != models.OutcomeFailed {
		t.Errorf("img1.jpg outcome = %s, want %s", got["img1.jpg"], models.OutcomeFailed)
	}
	if got["img2.jpg"] != models.OutcomeCopied {
		t.Errorf("img2.jpg outcome = %s, want %s", got["img2.jpg"], models.OutcomeCopied)
	}
	if _, ok := env.readDest("img1.jpg"); ok {
		t.Error("partial destination should have been removed")
	}

	// A second run must copy again rather than match a partial file
	second := env.run(env.operation())
	if second.Stats.SkippedIdentical != 1 || second.Stats.Failed != 1 {
		t.Errorf("second run Stats = %+v", second.Stats)
	}
}

func TestRun_DeletionFailure(t *testing.T) {
	env := newTestEnv(t)
	env.writeSource("img1.jpg", "A")
	env.writeSource("img2.jpg", "C")
	env.writeDest("img1.jpg", "B")
	env.fs.FailRemove(env.dstPath("img1.jpg"))

	report := env.run(env.operation(alwaysOverwrite))

	files := report.FilesWith(models.OutcomeFailed)
	if len(files) != 1 || files[0].Name != "img1.jpg" {
		t.Fatalf("failed files = %v, want [img1.jpg]", outcomes(report))
	}
	if !errors.Is(files[0].Err(), models.ErrDeletion) {
		t.Errorf("error = %v, want ErrDeletion", files[0].Err())
	}
	if got, _ := env.readDest("img1.jpg"); got != "B" {
		t.Errorf("dest content = %q, want B", got)
	}
	if outcomes(report)["img2.jpg"] != models.OutcomeCopied {
		t.Error("later candidates should still be processed")
	}
}

func TestRun_SourceUnreadable(t *testing.T) {
	env := newTestEnv(t)
	env.writeSource("img1.jpg", "A")
	env.fs.FailOpen(env.srcPath("img1.jpg"))

	report := env.run(env.operation())

	files := report.FilesWith(models.OutcomeFailed)
	if len(files) != 1 {
		t.Fatalf("failed files = %d, want 1", len(files))
	}
	if op := models.FailedOp(files[0].Err()); op != models.OpOpenSource {
		t.Errorf("failed op = %q, want %q", op, models.OpOpenSource)
	}
}

func TestEvents_Restartable(t *testing.T) {
	env := newTestEnv(t)
	env.writeSource("a.jpg", "A")
	env.writeSource("b.jpg", "B")

	batch, err := NewEngine(env.backend, nil, nil, env.operation()).Prepare(context.Background())
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	// Nothing happens until the sequence is consumed
	if _, ok := env.readDest("a.jpg"); ok {
		t.Fatal("Prepare should not copy files")
	}

	var first []models.Outcome
	for event := range batch.Events(context.Background()) {
		first = append(first, event.Outcome)
	}
	var second []models.Outcome
	for event := range batch.Events(context.Background()) {
		second = append(second, event.Outcome)
	}

	wantFirst := []models.Outcome{models.OutcomeCopied, models.OutcomeCopied}
	wantSecond := []models.Outcome{models.OutcomeSkippedIdentical, models.OutcomeSkippedIdentical}
	if !slices.Equal(first, wantFirst) {
		t.Errorf("first pass = %v, want %v", first, wantFirst)
	}
	if !slices.Equal(second, wantSecond) {
		t.Errorf("second pass = %v, want %v", second, wantSecond)
	}
	if stats := batch.Statistics(); stats.SkippedIdentical != 2 || stats.Total != 2 {
		t.Errorf("Statistics() = %+v, want the second pass", stats)
	}
}

func TestEvents_EarlyBreak(t *testing.T) {
	env := newTestEnv(t)
	env.writeSource("a.jpg", "A")
	env.writeSource("b.jpg", "B")
	env.writeSource("c.jpg", "C")

	batch, err := NewEngine(env.backend, nil, nil, env.operation()).Prepare(context.Background())
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	for event := range batch.Events(context.Background()) {
		if event.Name == "a.jpg" {
			break
		}
	}

	if stats := batch.Statistics(); stats.Total != 1 {
		t.Errorf("Statistics().Total = %d, want 1", stats.Total)
	}
	if _, ok := env.readDest("b.jpg"); ok {
		t.Error("b.jpg should not be copied after the consumer stopped")
	}
	if batch.Cancelled() {
		t.Error("a consumer break is not a cancellation")
	}
}

func TestEvents_Cancelled(t *testing.T) {
	env := newTestEnv(t)
	env.writeSource("a.jpg", "A")
	env.writeSource("b.jpg", "B")
	env.writeSource("c.jpg", "C")

	batch, err := NewEngine(env.backend, nil, nil, env.operation()).Prepare(context.Background())
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	count := 0
	for range batch.Events(ctx) {
		count++
		cancel()
	}

	if count != 1 {
		t.Errorf("got %d events, want 1", count)
	}
	if !batch.Cancelled() {
		t.Error("Cancelled() = false, want true")
	}
	if stats := batch.Statistics(); stats.Total != 1 || stats.Copied != 1 {
		t.Errorf("Statistics() = %+v, want 1 copied", stats)
	}
	if _, ok := env.readDest("c.jpg"); ok {
		t.Error("c.jpg should not be copied after cancellation")
	}
}

func TestRun_Parallel(t *testing.T) {
	env := newTestEnv(t)
	names := []string{"a.jpg", "b.jpg", "c.cr2", "d.jpg", "e.jpg", "f.cr2", "g.jpg", "h.jpg"}
	for _, name := range names {
		env.writeSource(name, "content of "+name)
	}
	env.writeDest("c.cr2", "content of c.cr2")
	env.writeDest("d.jpg", "something else")

	report := env.run(env.operation(func(op *models.CopyOperation) { op.MaxWorkers = 4 }))

	if report.Stats.Total != len(names) {
		t.Fatalf("Stats.Total = %d, want %d", report.Stats.Total, len(names))
	}
	if report.Stats.Copied != 6 || report.Stats.SkippedIdentical != 1 || report.Stats.SkippedConflict != 1 {
		t.Errorf("Stats = %+v", report.Stats)
	}

	// Files are reported in candidate order regardless of completion order
	var got []string
	for _, f := range report.Files {
		got = append(got, f.Name)
	}
	if !slices.Equal(got, names) {
		t.Errorf("report order = %v, want %v", got, names)
	}
}

func TestRun_ParallelSameFoldedName(t *testing.T) {
	env := newTestEnv(t)
	env.writeSource("IMG.jpg", "upper")
	env.writeSource("img.jpg", "lower")

	report := env.run(env.operation(func(op *models.CopyOperation) { op.MaxWorkers = 2 }))

	if report.Stats.Total != 2 || report.Stats.Copied != 2 {
		t.Errorf("Stats = %+v, want 2 copied", report.Stats)
	}
}

type fakeCopier struct {
	calls  []string
	result CopyResult
}

func (f *fakeCopier) CopyVerified(ctx context.Context, sourcePath, destPath string, verify bool) CopyResult {
	f.calls = append(f.calls, destPath)
	return f.result
}

func TestRun_CopierMismatchIsNeverCopied(t *testing.T) {
	env := newTestEnv(t)
	env.writeSource("img1.jpg", "A")

	copier := &fakeCopier{result: CopyResult{
		Copied:       true,
		Mismatch:     true,
		BytesWritten: 1,
		Err:          models.ErrVerificationMismatch,
	}}
	engine := NewEngine(env.backend, nil, nil, env.operation())
	engine.SetCopier(copier)

	report, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(copier.calls) != 1 {
		t.Fatalf("copier called %d times, want 1", len(copier.calls))
	}
	if got := outcomes(report)["img1.jpg"]; got != models.OutcomeCopiedWithError {
		t.Errorf("outcome = %s, want %s", got, models.OutcomeCopiedWithError)
	}
}
