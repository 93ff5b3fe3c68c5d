package port

// FileWalker lists the program sources under a root directory.
type FileWalker interface {
	Walk(root string) ([]FileInfo, error)
}

// FileInfo describes one program source; ModTime is Unix seconds and drives
// incremental rescans.
type FileInfo struct {
	Path    string
	ModTime int64
	Size    int64
}

// FileReader returns a program source as text.
type FileReader interface {
	ReadFile(path string) (string, error)
}
