package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"cobolscan/config"
	"cobolscan/internal/adapter/scanner"
	"cobolscan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
)

const sample = `       PROCEDURE DIVISION.
       MAIN SECTION.
       MAIN-PARA.
           PERFORM LOAD-PARA
           CALL 'AUDIT'.
       LOAD-PARA.
           OPEN IN-FILE
           CLOSE IN-FILE.
`

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	st, err := NewBoltStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func testProgram(id, name string) domain.Program {
	return domain.Program{
		ID:      id,
		Path:    "/src/" + name + ".cbl",
		Name:    name,
		ModTime: time.Unix(1700000000, 0),
		Lines:   8,
		Model:   scanner.New(scanner.DefaultOptions()).Scan(sample),
	}
}

func TestProgramRoundTrip(t *testing.T) {
	st := newTestStore(t)
	prog := testProgram("p1", "PAYROLL")
	require.NoError(t, st.PutProgram(prog))

	got, err := st.GetProgram("p1")
	require.NoError(t, err)

	assert.Equal(t, prog.Path, got.Path)
	assert.Equal(t, prog.Name, got.Name)
	assert.True(t, prog.ModTime.Equal(got.ModTime))
	require.NotNil(t, got.Model)
	assert.Equal(t, []string{"MAIN-PARA", "LOAD-PARA"}, got.Model.ParagraphNames())
	assert.Equal(t, prog.Model.EdgesOf("MAIN-PARA"), got.Model.EdgesOf("MAIN-PARA"))
	assert.Equal(t, prog.Model.OperationsOf("LOAD-PARA"), got.Model.OperationsOf("LOAD-PARA"))

	main, ok := got.Model.Sections.Get("MAIN")
	require.True(t, ok)
	assert.Equal(t, []string{"MAIN-PARA", "LOAD-PARA"}, main)

	span, ok := got.Model.Spans.Get("LOAD-PARA")
	require.True(t, ok)
	assert.Equal(t, domain.LineRange{Start: 6, End: 8}, span)
}

func TestGetProgram_NotFound(t *testing.T) {
	st := newTestStore(t)
	_, err := st.GetProgram("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFindProgram(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.PutProgram(testProgram("p1", "PAYROLL")))
	require.NoError(t, st.PutProgram(testProgram("p2", "BILLING")))

	byID, err := st.FindProgram("p2")
	require.NoError(t, err)
	assert.Equal(t, "BILLING", byID.Name)

	byName, err := st.FindProgram("payroll")
	require.NoError(t, err)
	assert.Equal(t, "p1", byName.ID)

	byPath, err := st.FindProgram("/src/BILLING.cbl")
	require.NoError(t, err)
	assert.Equal(t, "p2", byPath.ID)

	_, err = st.FindProgram("NOPE")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSummaries(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.PutProgram(testProgram("p1", "PAYROLL")))
	require.NoError(t, st.PutProgram(testProgram("p10", "OTHER")))

	for _, para := range []string{"MAIN-PARA", "LOAD-PARA"} {
		require.NoError(t, st.PutSummary(domain.Summary{
			ProgramID: "p1",
			Paragraph: para,
			Model:     "mock",
			Text:      "summary of " + para,
		}))
	}
	require.NoError(t, st.PutSummary(domain.Summary{ProgramID: "p10", Paragraph: "X", Text: "other"}))

	sum, err := st.GetSummary("p1", "MAIN-PARA")
	require.NoError(t, err)
	assert.Equal(t, "summary of MAIN-PARA", sum.Text)

	list, err := st.ListSummaries("p1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "LOAD-PARA", list[0].Paragraph)
	assert.Equal(t, "MAIN-PARA", list[1].Paragraph)

	_, err = st.GetSummary("p1", "NOPE")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteProgramRemovesSummaries(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.PutProgram(testProgram("p1", "PAYROLL")))
	require.NoError(t, st.PutSummary(domain.Summary{ProgramID: "p1", Paragraph: "MAIN-PARA", Text: "x"}))

	require.NoError(t, st.DeleteProgram("p1"))

	_, err := st.GetProgram("p1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = st.FindProgram("PAYROLL")
	assert.ErrorIs(t, err, ErrNotFound)
	list, err := st.ListSummaries("p1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDeleteProgramKeepsSharedName(t *testing.T) {
	st := newTestStore(t)
	a := testProgram("id-a", "PAYROLL")
	a.Path = "/src/a/payroll.cbl"
	b := testProgram("id-b", "PAYROLL")
	b.Path = "/src/b/payroll.cbl"
	require.NoError(t, st.PutProgram(a))
	require.NoError(t, st.PutProgram(b))

	require.NoError(t, st.DeleteProgram("id-b"))

	got, err := st.FindProgram("PAYROLL")
	require.NoError(t, err)
	assert.Equal(t, "id-a", got.ID)

	require.NoError(t, st.DeleteProgram("id-a"))
	_, err = st.FindProgram("PAYROLL")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStats(t *testing.T) {
	st := newTestStore(t)
	stats, err := st.GetStats()
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{}, stats)

	want := domain.Stats{TotalPrograms: 2, TotalParagraphs: 7, TotalEdges: 4}
	require.NoError(t, st.UpdateStats(want))
	stats, err = st.GetStats()
	require.NoError(t, err)
	assert.Equal(t, want, stats)
}

func TestCheckMigration(t *testing.T) {
	st := newTestStore(t)
	cfg := config.DefaultConfig()

	res, err := st.CheckMigration(cfg)
	require.NoError(t, err)
	assert.True(t, res.NeedsMigration)
	assert.False(t, res.NeedsRebuild)

	require.NoError(t, st.Migrate(cfg))
	res, err = st.CheckMigration(cfg)
	require.NoError(t, err)
	assert.False(t, res.NeedsMigration)
	assert.False(t, res.NeedsRebuild)

	cfg.Scan.EdgeOrder = "document"
	res, err = st.CheckMigration(cfg)
	require.NoError(t, err)
	assert.True(t, res.NeedsRebuild)
	assert.Equal(t, "scan configuration changed", res.Reason)
}

func TestConfigHashIgnoresUnrelatedSettings(t *testing.T) {
	a := config.DefaultConfig()
	b := config.DefaultConfig()
	b.Summarize.Model = "other"
	b.Scan.Concurrent = true
	assert.Equal(t, ComputeConfigHash(a), ComputeConfigHash(b))

	b.Scan.Duplicates = ""
	assert.Equal(t, ComputeConfigHash(a), ComputeConfigHash(b))
}

func TestMigrateFromV1BackfillsNames(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.PutProgram(testProgram("p1", "PAYROLL")))

	// Simulate a v1 database without the name index.
	require.NoError(t, st.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketProgramNames); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketProgramNames)
		return err
	}))
	require.NoError(t, st.SetSchemaInfo(&SchemaInfo{Version: 1}))

	require.NoError(t, st.Migrate(config.DefaultConfig()))

	prog, err := st.FindProgram("PAYROLL")
	require.NoError(t, err)
	assert.Equal(t, "p1", prog.ID)

	info, err := st.GetSchemaInfo()
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, info.Version)
}

func TestClear(t *testing.T) {
	st := newTestStore(t)
	cfg := config.DefaultConfig()
	require.NoError(t, st.Migrate(cfg))
	require.NoError(t, st.PutProgram(testProgram("p1", "PAYROLL")))
	require.NoError(t, st.PutSummary(domain.Summary{ProgramID: "p1", Paragraph: "MAIN-PARA"}))
	require.NoError(t, st.UpdateStats(domain.Stats{TotalPrograms: 1}))

	require.NoError(t, st.Clear())

	progs, err := st.ListPrograms()
	require.NoError(t, err)
	assert.Empty(t, progs)
	stats, err := st.GetStats()
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{}, stats)

	info, err := st.GetSchemaInfo()
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, info.Version)
}
