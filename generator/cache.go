package generator

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/meysamhadeli/traitgen/generator/models"
	"github.com/spf13/afero"
)

// Snapshot maps an absolute file path to its modification time in float seconds
type Snapshot map[string]float64

// ChangeReason explains why a project is considered stale
type ChangeReason string

const (
	ReasonCacheMissing ChangeReason = "no cache stored yet"
	ReasonCacheEmpty   ChangeReason = "empty cache"
	ReasonNewFile      ChangeReason = "not in cache"
	ReasonModified     ChangeReason = "modification time changed"
	// ReasonOutputMissing is raised by the Orchestrator, not by Diff: the watched set is
	// unchanged but a generated file was deleted.
	ReasonOutputMissing ChangeReason = "generated file missing"
	ReasonForced        ChangeReason = "regeneration forced"
)

// Change is one reason for regeneration
type Change struct {
	Path   string
	Reason ChangeReason
}

func (c Change) String() string {
	return fmt.Sprintf("%s: %s", c.Path, c.Reason)
}

// ChangeCache persists the modification times of a project's watched set. Staleness is
// all-or-nothing: any difference in the watched set means both outputs are regenerated.
// There is no locking here; the Orchestrator serializes access.
type ChangeCache struct {
	fs afero.Fs
}

func NewChangeCache(fs afero.Fs) *ChangeCache {
	return &ChangeCache{fs: fs}
}

// Load reads the stored snapshot. exists is false when there is no cache file.
func (cc *ChangeCache) Load(project *models.ProjectDescriptor) (snapshot Snapshot, exists bool, err error) {
	path := project.CacheFile.Path()

	data, err := afero.ReadFile(cc.fs, path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: reading cache %s: %w", ErrIO, path, err)
	}

	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, true, fmt.Errorf("%w: decoding cache %s: %w", ErrIO, path, err)
	}
	return snapshot, true, nil
}

// Diff lists every reason the project needs regeneration. Watched files that no longer
// exist are skipped; only files present on disk are compared, with exact equality.
func (cc *ChangeCache) Diff(project *models.ProjectDescriptor) ([]Change, error) {
	stored, exists, err := cc.Load(project)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []Change{{Path: project.CacheFile.Path(), Reason: ReasonCacheMissing}}, nil
	}
	if len(stored) == 0 {
		return []Change{{Path: project.CacheFile.Path(), Reason: ReasonCacheEmpty}}, nil
	}

	var changes []Change
	for _, path := range project.WatchedSet().Paths() {
		info, err := cc.fs.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		timestamp, ok := stored[path]
		if !ok {
			changes = append(changes, Change{Path: path, Reason: ReasonNewFile})
			continue
		}
		if ModTimeSeconds(info.ModTime()) != timestamp {
			changes = append(changes, Change{Path: path, Reason: ReasonModified})
		}
	}
	return changes, nil
}

// IsStale reports whether the outputs no longer reflect the watched set
func (cc *ChangeCache) IsStale(project *models.ProjectDescriptor) (bool, error) {
	changes, err := cc.Diff(project)
	if err != nil {
		return true, err
	}
	return len(changes) > 0, nil
}

// Current captures the modification times of the watched files that exist
func (cc *ChangeCache) Current(project *models.ProjectDescriptor) (Snapshot, error) {
	watched := project.WatchedSet()
	snapshot := make(Snapshot, watched.Len())
	for _, path := range watched.Paths() {
		info, err := cc.fs.Stat(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: stat %s: %w", ErrIO, path, err)
		}
		snapshot[path] = ModTimeSeconds(info.ModTime())
	}
	return snapshot, nil
}

// Refresh replaces the cache file with the current modification times
func (cc *ChangeCache) Refresh(project *models.ProjectDescriptor) error {
	snapshot, err := cc.Current(project)
	if err != nil {
		return err
	}
	return cc.Store(project, snapshot)
}

// Store replaces the cache file with snapshot. Keys of files that left the watched set
// are dropped, never merged.
func (cc *ChangeCache) Store(project *models.ProjectDescriptor, snapshot Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("%w: encoding cache: %w", ErrIO, err)
	}

	if err := writeFileAtomic(cc.fs, project.CacheFile.Path(), data); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// Reset removes the cache file, forcing the next run to regenerate
func (cc *ChangeCache) Reset(project *models.ProjectDescriptor) error {
	if err := cc.fs.Remove(project.CacheFile.Path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: removing cache %s: %w", ErrIO, project.CacheFile.Path(), err)
	}
	return nil
}
