package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// IgnoreFileName is read from the project root; one doublestar pattern per line.
const IgnoreFileName = ".traitgen-ignore"

// ignoreCacheEntry holds cached ignore patterns with metadata
type ignoreCacheEntry struct {
	patterns []string
	modTime  time.Time
}

// Global cache for ignore files, keyed by path. Watch mode rescans the project on every
// event, so the file is only re-read when its modification time moves.
var (
	ignoreCache = make(map[string]*ignoreCacheEntry)
	cacheMutex  sync.RWMutex
)

// GetIgnorePatterns returns the patterns of <root>/.traitgen-ignore.
// A missing file yields an empty list. Callers get their own copy of the cached slice.
func GetIgnorePatterns(fs afero.Fs, root string) ([]string, error) {
	ignorePath := filepath.Join(root, IgnoreFileName)

	fileInfo, err := fs.Stat(ignorePath)
	if os.IsNotExist(err) {
		return []string{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("error checking %s: %w", IgnoreFileName, err)
	}

	cacheMutex.RLock()
	if cached, exists := ignoreCache[ignorePath]; exists {
		if fileInfo.ModTime().Equal(cached.modTime) {
			cacheMutex.RUnlock()
			return slices.Clone(cached.patterns), nil
		}
	}
	cacheMutex.RUnlock()

	patterns, err := readIgnoreFile(fs, ignorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", IgnoreFileName, err)
	}

	var validPatterns []string
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			continue
		}
		validPatterns = append(validPatterns, pattern)
	}

	cacheMutex.Lock()
	ignoreCache[ignorePath] = &ignoreCacheEntry{
		patterns: validPatterns,
		modTime:  fileInfo.ModTime(),
	}
	cacheMutex.Unlock()

	return slices.Clone(validPatterns), nil
}

func readIgnoreFile(fs afero.Fs, path string) ([]string, error) {
	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	var patterns []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			patterns = append(patterns, line)
		}
	}
	return patterns, nil
}

// IsIgnored reports whether relPath (slash separated, relative to the project root)
// matches any pattern. Patterns without a slash are also tried against the file name.
func IsIgnored(relPath string, patterns []string) bool {
	relPath = filepath.ToSlash(relPath)
	name := relPath[strings.LastIndex(relPath, "/")+1:]
	for _, pattern := range patterns {
		if match, _ := doublestar.Match(pattern, relPath); match {
			return true
		}
		if !strings.Contains(pattern, "/") {
			if match, _ := doublestar.Match(pattern, name); match {
				return true
			}
		}
		// "dir/" ignores everything under dir
		if strings.HasSuffix(pattern, "/") && strings.HasPrefix(relPath, pattern) {
			return true
		}
	}
	return false
}

// clearIgnoreCache drops all cached ignore files
func clearIgnoreCache() {
	cacheMutex.Lock()
	defer cacheMutex.Unlock()
	ignoreCache = make(map[string]*ignoreCacheEntry)
}
