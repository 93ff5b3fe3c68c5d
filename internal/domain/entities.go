package domain

import "time"

// Program is one scanned source file as kept in the store.
type Program struct {
	ID      string    `json:"id"`
	Path    string    `json:"path"`
	Name    string    `json:"name"`
	ModTime time.Time `json:"mod_time"`
	Lines   int       `json:"lines"`
	Model   *Model    `json:"model"`
}

// Summary is generated prose for a single paragraph.
type Summary struct {
	ProgramID   string    `json:"program_id"`
	Paragraph   string    `json:"paragraph"`
	Model       string    `json:"model"`
	ContentHash string    `json:"content_hash"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
}

type Stats struct {
	TotalPrograms   int `json:"total_programs"`
	TotalParagraphs int `json:"total_paragraphs"`
	TotalEdges      int `json:"total_edges"`
}
