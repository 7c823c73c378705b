package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/meysamhadeli/traitgen/generator/models"
	"github.com/spf13/afero"
)

// Layout describes where things live below a project root.
// Relative directories are joined onto the root; Module is substituted for an empty value
// by the base name of the root directory.
type Layout struct {
	Module         string
	ScriptsDir     string
	IncludeDir     string // trait declarations live in IncludeDir/<Module>
	SrcDir         string
	BlueprintsDir  string
	BlueprintName  string
	HeaderExt      string
	SourceExt      string
	CacheFileName  string
	IncludePattern string
	SourcePattern  string
	Ignore         []string
}

// DefaultLayout mirrors the layout of the trait system project the generator was built for
var DefaultLayout = Layout{
	ScriptsDir:     "scripts",
	IncludeDir:     "include",
	SrcDir:         "src",
	BlueprintsDir:  "blueprints",
	BlueprintName:  "object_blueprint",
	HeaderExt:      ".h",
	SourceExt:      ".cpp",
	CacheFileName:  "meta.json",
	IncludePattern: "*",
	SourcePattern:  "*",
}

// withDefaults fills every empty field from DefaultLayout
func (l Layout) withDefaults() Layout {
	d := DefaultLayout
	if l.ScriptsDir == "" {
		l.ScriptsDir = d.ScriptsDir
	}
	if l.IncludeDir == "" {
		l.IncludeDir = d.IncludeDir
	}
	if l.SrcDir == "" {
		l.SrcDir = d.SrcDir
	}
	if l.BlueprintsDir == "" {
		l.BlueprintsDir = d.BlueprintsDir
	}
	if l.BlueprintName == "" {
		l.BlueprintName = d.BlueprintName
	}
	if l.HeaderExt == "" {
		l.HeaderExt = d.HeaderExt
	}
	if l.SourceExt == "" {
		l.SourceExt = d.SourceExt
	}
	if l.CacheFileName == "" {
		l.CacheFileName = d.CacheFileName
	}
	if l.IncludePattern == "" {
		l.IncludePattern = d.IncludePattern
	}
	if l.SourcePattern == "" {
		l.SourcePattern = d.SourcePattern
	}
	return l
}

// NewProject locates blueprints, outputs and the cache file below root and enumerates the
// trait declaration and definition files. It only reads the filesystem.
func NewProject(fs afero.Fs, root string, layout Layout) (*models.ProjectDescriptor, error) {
	layout = layout.withDefaults()

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving %s: %w", ErrConfiguration, root, err)
	}

	module := layout.Module
	if module == "" {
		module = filepath.Base(root)
	}

	scriptsDir := filepath.Join(root, layout.ScriptsDir)
	includeDir := filepath.Join(root, layout.IncludeDir, module)
	srcDir := filepath.Join(root, layout.SrcDir)
	blueprintsDir := filepath.Join(root, layout.BlueprintsDir)

	cacheExt := filepath.Ext(layout.CacheFileName)

	project := &models.ProjectDescriptor{
		Root:          root,
		Module:        module,
		ScriptsDir:    scriptsDir,
		IncludeDir:    includeDir,
		SrcDir:        srcDir,
		BlueprintsDir: blueprintsDir,
		HeaderBlueprint: models.BlueprintDescriptor{
			Input:  models.FileDescriptor{Dir: blueprintsDir, Name: layout.BlueprintName, Ext: layout.HeaderExt},
			Output: models.FileDescriptor{Dir: includeDir, Name: module, Ext: layout.HeaderExt},
		},
		SourceBlueprint: models.BlueprintDescriptor{
			Input:  models.FileDescriptor{Dir: blueprintsDir, Name: layout.BlueprintName, Ext: layout.SourceExt},
			Output: models.FileDescriptor{Dir: srcDir, Name: module, Ext: layout.SourceExt},
		},
		CacheFile: models.FileDescriptor{
			Dir:  scriptsDir,
			Name: strings.TrimSuffix(layout.CacheFileName, cacheExt),
			Ext:  cacheExt,
		},
	}

	filePatterns, err := GetIgnorePatterns(fs, root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	// the file patterns are shared through the ignore cache
	ignorePatterns := make([]string, 0, len(filePatterns)+len(layout.Ignore))
	ignorePatterns = append(ignorePatterns, filePatterns...)
	ignorePatterns = append(ignorePatterns, layout.Ignore...)

	// Both scans exclude the generated module files so earlier output never becomes a trait.
	project.IncludeFiles, err = scanTraitDir(fs, root, includeDir, project.HeaderBlueprint.Output.Name, layout.IncludePattern, ignorePatterns)
	if err != nil {
		return nil, err
	}
	project.SrcFiles, err = scanTraitDir(fs, root, srcDir, project.SourceBlueprint.Output.Name, layout.SourcePattern, ignorePatterns)
	if err != nil {
		return nil, err
	}
	project.BlueprintFiles, err = scanBlueprintPartials(fs, root, project, ignorePatterns)
	if err != nil {
		return nil, err
	}

	return project, nil
}

// scanBlueprintPartials lists the regular files of the blueprints directory other than the
// two blueprint inputs. A missing directory yields none; rendering reports the missing blueprints.
func scanBlueprintPartials(fs afero.Fs, root string, project *models.ProjectDescriptor, ignorePatterns []string) ([]models.FileDescriptor, error) {
	entries, err := afero.ReadDir(fs, project.BlueprintsDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %w", ErrIO, project.BlueprintsDir, err)
	}

	inputs := map[string]bool{
		project.HeaderBlueprint.Input.FileName(): true,
		project.SourceBlueprint.Input.FileName(): true,
	}

	var files []models.FileDescriptor
	for _, entry := range entries {
		if !entry.Mode().IsRegular() || inputs[entry.Name()] {
			continue
		}
		path := filepath.Join(project.BlueprintsDir, entry.Name())
		if relPath, err := filepath.Rel(root, path); err == nil && IsIgnored(relPath, ignorePatterns) {
			continue
		}
		files = append(files, models.NewFileDescriptor(path))
	}
	return files, nil
}

// scanTraitDir lists the regular files of dir sorted by name, skipping any whose name
// starts with outputName (the generated file and companions such as <Module>Types.h).
func scanTraitDir(fs afero.Fs, root, dir, outputName, pattern string, ignorePatterns []string) ([]models.FileDescriptor, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %w", ErrIO, dir, err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	var files []models.FileDescriptor
	for _, entry := range entries {
		if !entry.Mode().IsRegular() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, outputName) {
			continue
		}
		if match, _ := doublestar.Match(pattern, name); !match {
			continue
		}

		path := filepath.Join(dir, name)
		relPath, err := filepath.Rel(root, path)
		if err != nil {
			relPath = name
		}
		if IsIgnored(relPath, ignorePatterns) {
			continue
		}

		files = append(files, models.NewFileDescriptor(path))
	}

	return files, nil
}

// Traits assigns ids to the trait declarations in name order
func Traits(project *models.ProjectDescriptor) []models.TraitEntry {
	traits := make([]models.TraitEntry, 0, len(project.IncludeFiles))
	for i, f := range project.IncludeFiles {
		traits = append(traits, models.TraitEntry{
			Name:          f.Name,
			Id:            i,
			FileStem:      f.Name,
			FileExtension: f.Ext,
			StructName:    f.Name,
		})
	}
	return traits
}
