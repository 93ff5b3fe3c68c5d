package scanner

import (
	"fmt"
	"strings"
	"testing"
)

func syntheticProgram(paragraphs int) string {
	var sb strings.Builder
	sb.WriteString("       IDENTIFICATION DIVISION.\n")
	sb.WriteString("       PROGRAM-ID. BENCH.\n")
	sb.WriteString("       PROCEDURE DIVISION.\n")
	sb.WriteString("       MAIN SECTION.\n")
	for i := 0; i < paragraphs; i++ {
		fmt.Fprintf(&sb, "       P-%04d.\n", i)
		fmt.Fprintf(&sb, "           PERFORM P-%04d\n", i+1)
		sb.WriteString("           OPEN INPUT-FILE\n")
		sb.WriteString("           READ INPUT-FILE\n")
		fmt.Fprintf(&sb, "           CALL 'EXT%d'\n", i%7)
		sb.WriteString("           CLOSE INPUT-FILE.\n")
	}
	return sb.String()
}

func TestSyntheticProgramShape(t *testing.T) {
	m := New(DefaultOptions()).Scan(syntheticProgram(50))
	if m.Paragraphs.Len() != 50 {
		t.Fatalf("expected 50 paragraphs, got %d", m.Paragraphs.Len())
	}
	if m.EdgeCount() != 100 {
		t.Errorf("expected 100 edges, got %d", m.EdgeCount())
	}
	if m.FileOperations.Len() != 50 {
		t.Errorf("expected 50 paragraphs with file operations, got %d", m.FileOperations.Len())
	}
}

func BenchmarkScan(b *testing.B) {
	for _, size := range []int{100, 1000} {
		src := syntheticProgram(size)
		for _, concurrent := range []bool{false, true} {
			s := New(Options{Concurrent: concurrent})
			b.Run(fmt.Sprintf("paragraphs=%d/concurrent=%v", size, concurrent), func(b *testing.B) {
				b.SetBytes(int64(len(src)))
				for i := 0; i < b.N; i++ {
					s.Scan(src)
				}
			})
		}
	}
}
