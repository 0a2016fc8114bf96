package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FilePair is the up/down file pair for one migration
type FilePair struct {
	Version  string
	UpPath   string
	DownPath string
}

// Create writes an empty up/down migration pair named after the current
// timestamp so files sort in creation order
func Create(migrationsDir, name string) (*FilePair, error) {
	if err := os.MkdirAll(migrationsDir, 0755); err != nil {
		return nil, fmt.Errorf("create migrations directory: %w", err)
	}

	version := time.Now().Format("20060102150405")
	base := fmt.Sprintf("%s_%s", version, sanitizeName(name))

	pair := &FilePair{
		Version:  version,
		UpPath:   filepath.Join(migrationsDir, base+".up.sql"),
		DownPath: filepath.Join(migrationsDir, base+".down.sql"),
	}

	header := fmt.Sprintf("-- %s\n\n", name)
	if err := os.WriteFile(pair.UpPath, []byte(header), 0644); err != nil {
		return nil, fmt.Errorf("create up migration: %w", err)
	}
	if err := os.WriteFile(pair.DownPath, []byte(header), 0644); err != nil {
		_ = os.Remove(pair.UpPath)
		return nil, fmt.Errorf("create down migration: %w", err)
	}
	return pair, nil
}

// List returns the up migration files in version order
func List(migrationsDir string) ([]string, error) {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".up.sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func sanitizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('_')
		}
	}
	return b.String()
}
