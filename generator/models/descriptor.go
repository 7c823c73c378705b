package models

import (
	"path/filepath"
	"strings"
)

// FileDescriptor names a file by directory, base name and extension
type FileDescriptor struct {
	Dir  string `json:"dir"`
	Name string `json:"name"`
	Ext  string `json:"ext"` // includes the leading dot, e.g. ".h"
}

// NewFileDescriptor splits a path into its directory, base name and extension.
func NewFileDescriptor(path string) FileDescriptor {
	dir, base := filepath.Split(path)
	ext := filepath.Ext(base)
	return FileDescriptor{
		Dir:  filepath.Clean(dir),
		Name: strings.TrimSuffix(base, ext),
		Ext:  ext,
	}
}

// FileName returns the base name with its extension
func (f FileDescriptor) FileName() string {
	return f.Name + f.Ext
}

// Path returns Dir/Name+Ext
func (f FileDescriptor) Path() string {
	return filepath.Join(f.Dir, f.FileName())
}

func (f FileDescriptor) String() string {
	return f.Path()
}

// BlueprintDescriptor pairs a template with the artifact rendered from it
type BlueprintDescriptor struct {
	Input  FileDescriptor `json:"input"`
	Output FileDescriptor `json:"output"`
}

// ProjectDescriptor is everything the generator needs to know about one project root.
// It is rebuilt from the filesystem on every run and never mutated afterwards.
type ProjectDescriptor struct {
	Root          string
	Module        string
	ScriptsDir    string
	IncludeDir    string
	SrcDir        string
	BlueprintsDir string

	IncludeFiles []FileDescriptor // trait declarations, sorted by file name
	SrcFiles     []FileDescriptor // trait definitions, sorted by file name

	HeaderBlueprint BlueprintDescriptor
	SourceBlueprint BlueprintDescriptor
	// BlueprintFiles are the other files of BlueprintsDir, available to {% include %}
	BlueprintFiles []FileDescriptor
	CacheFile      FileDescriptor
}

// Blueprints returns the header and source blueprints in render order
func (p *ProjectDescriptor) Blueprints() []BlueprintDescriptor {
	return []BlueprintDescriptor{p.HeaderBlueprint, p.SourceBlueprint}
}

// WatchedSet returns the absolute paths whose modification times gate regeneration:
// trait definitions, trait declarations, both blueprint inputs, then blueprint partials.
func (p *ProjectDescriptor) WatchedSet() WatchedSet {
	paths := make([]string, 0, len(p.SrcFiles)+len(p.IncludeFiles)+len(p.BlueprintFiles)+2)
	for _, f := range p.SrcFiles {
		paths = append(paths, f.Path())
	}
	for _, f := range p.IncludeFiles {
		paths = append(paths, f.Path())
	}
	paths = append(paths, p.HeaderBlueprint.Input.Path(), p.SourceBlueprint.Input.Path())
	for _, f := range p.BlueprintFiles {
		paths = append(paths, f.Path())
	}
	return NewWatchedSet(paths...)
}

// WatchedSet is an ordered, de-duplicated collection of watched file paths
type WatchedSet struct {
	paths []string
}

func NewWatchedSet(paths ...string) WatchedSet {
	seen := make(map[string]struct{}, len(paths))
	ws := WatchedSet{paths: make([]string, 0, len(paths))}
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		ws.paths = append(ws.paths, p)
	}
	return ws
}

func (ws WatchedSet) Paths() []string {
	out := make([]string, len(ws.paths))
	copy(out, ws.paths)
	return out
}

func (ws WatchedSet) Len() int {
	return len(ws.paths)
}

// TraitField is one member declaration found in a trait header
type TraitField struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// TraitEntry is one entry of the generated registry.
// Id is the position of the declaration file in name order.
type TraitEntry struct {
	Name          string       `json:"name"`
	Id            int          `json:"id"`
	FileStem      string       `json:"file_stem"`
	FileExtension string       `json:"file_extension"`
	StructName    string       `json:"struct_name"`
	Fields        []TraitField `json:"fields"`
}
