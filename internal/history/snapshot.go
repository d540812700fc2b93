package history

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Snapshot copies a live browser history database to workDir and returns
// the copy's path. Browsers hold write locks on their history files while
// running, so the live file is never opened directly; reads always go
// through a private snapshot. The snapshot may lag the live database by
// moments, which is acceptable.
func Snapshot(src, workDir, name string) (string, error) {
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open history database: %w", err)
	}
	defer in.Close()

	dst := filepath.Join(workDir, name)
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create snapshot file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return "", fmt.Errorf("copy history database: %w", err)
	}

	return dst, nil
}
