package sync

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/sdejongh/copypix/pkg/models"
	"github.com/sdejongh/copypix/pkg/storage"
	"github.com/sdejongh/copypix/pkg/storage/storagetest"
)

// testEnv is an in-memory source/destination pair with fault injection
type testEnv struct {
	t       *testing.T
	fs      *storagetest.FaultFs
	backend *storage.Local
	src     string
	dst     string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	fs := storagetest.NewFaultFs(afero.NewMemMapFs())
	env := &testEnv{
		t:       t,
		fs:      fs,
		backend: storage.New(fs),
		src:     "/photos/card",
		dst:     "/photos/archive",
	}
	if err := fs.MkdirAll(env.src, 0755); err != nil {
		t.Fatalf("failed to create source dir: %v", err)
	}
	return env
}

func (e *testEnv) srcPath(name string) string { return filepath.Join(e.src, name) }
func (e *testEnv) dstPath(name string) string { return filepath.Join(e.dst, name) }

func (e *testEnv) writeSource(name, content string) {
	e.t.Helper()
	if err := afero.WriteFile(e.fs, e.srcPath(name), []byte(content), 0644); err != nil {
		e.t.Fatalf("failed to write source %s: %v", name, err)
	}
}

func (e *testEnv) writeDest(name, content string) {
	e.t.Helper()
	if err := e.fs.MkdirAll(e.dst, 0755); err != nil {
		e.t.Fatalf("failed to create dest dir: %v", err)
	}
	if err := afero.WriteFile(e.fs, e.dstPath(name), []byte(content), 0644); err != nil {
		e.t.Fatalf("failed to write dest %s: %v", name, err)
	}
}

// readDest returns the destination content and whether the file exists
func (e *testEnv) readDest(name string) (string, bool) {
	e.t.Helper()
	data, err := afero.ReadFile(e.fs, e.dstPath(name))
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (e *testEnv) operation(modify ...func(op *models.CopyOperation)) *models.CopyOperation {
	op := &models.CopyOperation{
		ID:              "test-run",
		SourcePath:      e.src,
		DestPath:        e.dst,
		Extensions:      models.DefaultExtensions,
		OverwritePolicy: models.NeverOverwrite,
		VerifyCopy:      true,
		HashAlgorithm:   models.HashSHA256,
		MaxWorkers:      1,
		BufferSize:      4096,
	}
	for _, m := range modify {
		m(op)
	}
	return op
}

func (e *testEnv) run(op *models.CopyOperation) *models.RunReport {
	e.t.Helper()
	report, err := NewEngine(e.backend, nil, nil, op).Run(context.Background())
	if err != nil {
		e.t.Fatalf("Run() error = %v", err)
	}
	return report
}

func outcomes(report *models.RunReport) map[string]models.Outcome {
	out := make(map[string]models.Outcome, len(report.Files))
	for _, f := range report.Files {
		out[f.Name] = f.Outcome()
	}
	return out
}

func alwaysOverwrite(op *models.CopyOperation) {
	op.OverwritePolicy = models.AlwaysOverwriteConflicts
}
