// Package export writes a finished article to disk under a topic-derived
// file name.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Filename derives the article file name from the topic: spaces become
// underscores and the name is suffixed with "_blog.md".
func Filename(topic string) string {
	base := strings.ReplaceAll(strings.TrimSpace(topic), " ", "_")
	return base + "_blog.md"
}

// WriteFile stores the article in dir under the topic-derived name and
// returns the full path of the written file.
func WriteFile(dir, topic, article string) (string, error) {
	path := filepath.Join(dir, Filename(topic))
	if err := os.WriteFile(path, []byte(article), 0o644); err != nil {
		return "", fmt.Errorf("export: write %s: %w", path, err)
	}
	return path, nil
}
