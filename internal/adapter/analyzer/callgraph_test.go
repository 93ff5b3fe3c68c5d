package analyzer

import (
	"bytes"
	"testing"

	"cobolscan/internal/adapter/scanner"
	"cobolscan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const batchSrc = `PROCEDURE DIVISION.
MAIN-PARA.
    PERFORM INIT-PARA
    PERFORM LOOP-PARA
    CALL "DBWRITE"
    STOP RUN.
INIT-PARA.
    OPEN INPUT IN-FILE.
LOOP-PARA.
    PERFORM READ-PARA
    PERFORM LOOP-PARA.
READ-PARA.
    READ IN-FILE
    PERFORM GHOST-PARA.
ORPHAN-PARA.
    PERFORM ORPHAN-HELPER.
ORPHAN-HELPER.
    PERFORM ORPHAN-PARA
    CALL 'DBWRITE'.
`

func build(t *testing.T, src string) *CallGraph {
	t.Helper()
	cg, err := BuildCallGraph(scanner.New(scanner.DefaultOptions()).Scan(src))
	require.NoError(t, err)
	return cg
}

func TestCallGraph_CalleesAndCallers(t *testing.T) {
	cg := build(t, batchSrc)

	assert.Equal(t, []Node{
		{Name: "INIT-PARA", Kind: NodeParagraph},
		{Name: "LOOP-PARA", Kind: NodeParagraph},
		{Name: "DBWRITE", Kind: NodeExternal},
	}, cg.Callees("MAIN-PARA"))

	assert.Equal(t, []Node{
		{Name: "GHOST-PARA", Kind: NodeMissing},
	}, cg.Callees("READ-PARA"))

	assert.Empty(t, cg.Callees("INIT-PARA"))

	assert.Equal(t, []string{"MAIN-PARA", "LOOP-PARA"}, cg.Callers("LOOP-PARA"))
	assert.Equal(t, []string{"MAIN-PARA", "ORPHAN-HELPER"}, cg.Callers("DBWRITE"))
	assert.Empty(t, cg.Callers("MAIN-PARA"))
}

func TestCallGraph_Reachability(t *testing.T) {
	cg := build(t, batchSrc)

	entry, ok := cg.EntryPoint()
	require.True(t, ok)
	assert.Equal(t, "MAIN-PARA", entry)

	reached, err := cg.Reachable("MAIN-PARA")
	require.NoError(t, err)
	assert.Equal(t, []string{"INIT-PARA", "LOOP-PARA", "READ-PARA", "GHOST-PARA"}, reached)

	reached, err = cg.Reachable("LOOP-PARA")
	require.NoError(t, err)
	assert.Equal(t, []string{"LOOP-PARA", "READ-PARA", "GHOST-PARA"}, reached)

	_, err = cg.Reachable("NOPE")
	assert.Error(t, err)

	unreachable, err := cg.Unreachable()
	require.NoError(t, err)
	assert.Equal(t, []string{"ORPHAN-PARA", "ORPHAN-HELPER"}, unreachable)
}

func TestCallGraph_CyclesAndMissing(t *testing.T) {
	cg := build(t, batchSrc)

	cycles, err := cg.Cycles()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"LOOP-PARA"},
		{"ORPHAN-PARA", "ORPHAN-HELPER"},
	}, cycles)

	assert.Equal(t, []string{"GHOST-PARA"}, cg.Missing())
	assert.Equal(t, []string{"DBWRITE"}, cg.ExternalCalls())
	assert.Equal(t, []string{"MAIN-PARA", "INIT-PARA", "LOOP-PARA", "READ-PARA", "ORPHAN-PARA", "ORPHAN-HELPER"}, cg.Paragraphs())
}

func TestCallGraph_Empty(t *testing.T) {
	cg, err := BuildCallGraph(domain.NewModel())
	require.NoError(t, err)

	_, ok := cg.EntryPoint()
	assert.False(t, ok)

	unreachable, err := cg.Unreachable()
	require.NoError(t, err)
	assert.Empty(t, unreachable)

	cycles, err := cg.Cycles()
	require.NoError(t, err)
	assert.Empty(t, cycles)
}

func TestCallGraph_WriteDOT(t *testing.T) {
	cg := build(t, batchSrc)

	var buf bytes.Buffer
	require.NoError(t, cg.WriteDOT(&buf))

	dot := buf.String()
	assert.Contains(t, dot, "digraph")
	assert.Contains(t, dot, `"MAIN-PARA"`)
	assert.Contains(t, dot, `"ext:DBWRITE"`)
	assert.Contains(t, dot, "dashed")
	assert.Contains(t, dot, "box")
}
