package task

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dontknow492/Notes/internal/app"
	"github.com/dontknow492/Notes/internal/dao"
	"github.com/dontknow492/Notes/internal/domain"
	"github.com/dontknow492/Notes/internal/upgrade"
	"github.com/dontknow492/Notes/pkg/safe_close"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T, extra string) *app.App {
	t.Helper()
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(
		"database:\n  path: "+filepath.Join(dir, "notes.db")+"\n"+extra), 0o644))

	cfg, _, err := app.LoadConfig(cfgFile)
	require.NoError(t, err)

	lg := zap.NewNop()
	db, err := dao.NewDBEngine(cfg.GetDatabaseConfig(), lg)
	require.NoError(t, err)
	require.NoError(t, upgrade.Execute(context.Background(), db, lg))

	a, err := app.NewApp(cfg, lg, db)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = a.Shutdown(context.Background())
		_ = a.Close()
	})
	return a
}

func TestRegisterTasks(t *testing.T) {
	a := newTestApp(t, "")
	m := NewManager(a, safe_close.NewSafeClose())
	require.NoError(t, m.RegisterTasks())
	assert.Equal(t, 2, m.scheduler.Len())
}

func TestRegisterTasksDisabled(t *testing.T) {
	a := newTestApp(t, "maintenance:\n  enabled: false\n")
	m := NewManager(a, safe_close.NewSafeClose())
	require.NoError(t, m.RegisterTasks())
	assert.Equal(t, 0, m.scheduler.Len())
}

func TestRegisterTasksBadSpec(t *testing.T) {
	a := newTestApp(t, "")
	a.Config().Maintenance.Optimize = "not a spec"
	m := NewManager(a, safe_close.NewSafeClose())
	assert.Error(t, m.RegisterTasks())
}

func TestOptimizeTaskRuns(t *testing.T) {
	a := newTestApp(t, "")
	task, err := NewOptimizeTask(a)
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.NoError(t, task.Run(context.Background()))

	a.Config().Maintenance.Optimize = ""
	task, err = NewOptimizeTask(a)
	require.NoError(t, err)
	assert.Nil(t, task)
}

func TestOrphanReportTaskSetsGauge(t *testing.T) {
	a := newTestApp(t, "")
	ctx := context.Background()

	id, err := a.NoteService.InsertNoteWithTags(ctx, &domain.Note{Heading: "n"},
		[]domain.Tag{{Name: "kept"}, {Name: "orphan"}})
	require.NoError(t, err)
	require.NoError(t, a.NoteService.UpdateNoteWithTags(ctx, &domain.Note{ID: id, Heading: "n"},
		[]domain.Tag{{Name: "kept"}}))

	task, err := NewOrphanReportTask(a)
	require.NoError(t, err)
	require.NoError(t, task.Run(ctx))

	families, err := a.Metrics.Registry().Gather()
	require.NoError(t, err)
	var gauge float64 = -1
	for _, f := range families {
		if f.GetName() == "notes_tags_orphans" {
			gauge = f.GetMetric()[0].GetGauge().GetValue()
		}
	}
	assert.Equal(t, float64(1), gauge)
}
