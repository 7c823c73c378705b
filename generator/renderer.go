package generator

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/flosch/pongo2/v6"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/meysamhadeli/traitgen/generator/models"
	"github.com/spf13/afero"
	"github.com/zeebo/xxh3"
)

const templateCacheSize = 32

// RenderedFile is one blueprint output, rendered but not yet written
type RenderedFile struct {
	Blueprint models.BlueprintDescriptor
	Content   []byte
	Unchanged bool // the file on disk already holds exactly this content
}

type cachedTemplate struct {
	template *pongo2.Template
	modTime  time.Time
	partials uint64 // fingerprint of the blueprint partials the template was parsed against
}

// RendererStats tracks template cache performance
type RendererStats struct {
	TemplateHits   int64
	TemplateMisses int64
	FilesWritten   int64
	FilesUnchanged int64
}

// Renderer renders blueprints with the trait list and writes the results.
// Parsed templates are kept in an LRU and reparsed when their own modification time or
// that of any blueprint partial moves, since pongo2 inlines includes at parse time.
type Renderer struct {
	fs        afero.Fs
	templates *lru.Cache[string, cachedTemplate]

	mutex sync.Mutex
	stats RendererStats
}

func NewRenderer(fs afero.Fs) (*Renderer, error) {
	cache, err := lru.New[string, cachedTemplate](templateCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create template cache: %w", err)
	}
	return &Renderer{fs: fs, templates: cache}, nil
}

// TemplateContext builds the data every blueprint is rendered with
func TemplateContext(project *models.ProjectDescriptor, traits []models.TraitEntry) pongo2.Context {
	list := make([]pongo2.Context, 0, len(traits))
	for _, t := range traits {
		fields := make([]pongo2.Context, 0, len(t.Fields))
		for _, f := range t.Fields {
			fields = append(fields, pongo2.Context{"type": f.Type, "name": f.Name})
		}
		list = append(list, pongo2.Context{
			"name":          t.Name,
			"id":            t.Id,
			"fileStem":      t.FileStem,
			"fileExtension": t.FileExtension,
			"structName":    t.StructName,
			"fields":        fields,
		})
	}
	return pongo2.Context{
		"traits": list,
		"count":  len(traits),
		"module": project.Module,
	}
}

// Render renders both blueprints without touching the outputs
func (r *Renderer) Render(project *models.ProjectDescriptor, traits []models.TraitEntry) ([]RenderedFile, error) {
	data := TemplateContext(project, traits)
	partials := r.partialsFingerprint(project)

	var files []RenderedFile
	for _, bp := range project.Blueprints() {
		tpl, err := r.loadTemplate(bp.Input, partials)
		if err != nil {
			return nil, err
		}

		var buf bytes.Buffer
		if err := tpl.ExecuteWriter(data, &buf); err != nil {
			return nil, fmt.Errorf("%w: rendering %s: %w", ErrTemplate, bp.Input.Path(), err)
		}

		files = append(files, RenderedFile{
			Blueprint: bp,
			Content:   buf.Bytes(),
			Unchanged: r.sameContent(bp.Output.Path(), buf.Bytes()),
		})
	}
	return files, nil
}

// Write puts every rendered file in place, skipping files whose content did not change
func (r *Renderer) Write(files []RenderedFile) error {
	for _, f := range files {
		if f.Unchanged {
			r.record(func(s *RendererStats) { s.FilesUnchanged++ })
			continue
		}
		if err := writeFileAtomic(r.fs, f.Blueprint.Output.Path(), f.Content); err != nil {
			return fmt.Errorf("%w: %w", ErrIO, err)
		}
		r.record(func(s *RendererStats) { s.FilesWritten++ })
	}
	return nil
}

func (r *Renderer) sameContent(path string, content []byte) bool {
	existing, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return false
	}
	return xxh3.Hash(existing) == xxh3.Hash(content)
}

// partialsFingerprint hashes the paths and modification times of the blueprint partials
func (r *Renderer) partialsFingerprint(project *models.ProjectDescriptor) uint64 {
	h := xxh3.New()
	for _, f := range project.BlueprintFiles {
		info, err := r.fs.Stat(f.Path())
		if err != nil {
			continue
		}
		fmt.Fprintf(h, "%s\x00%d\x00", f.Path(), info.ModTime().UnixNano())
	}
	return h.Sum64()
}

func (r *Renderer) loadTemplate(input models.FileDescriptor, partials uint64) (*pongo2.Template, error) {
	path := input.Path()

	info, err := r.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: blueprint %s not found", ErrTemplate, path)
		}
		return nil, fmt.Errorf("%w: stat %s: %w", ErrIO, path, err)
	}

	if cached, ok := r.templates.Get(path); ok && cached.modTime.Equal(info.ModTime()) && cached.partials == partials {
		r.record(func(s *RendererStats) { s.TemplateHits++ })
		return cached.template, nil
	}
	r.record(func(s *RendererStats) { s.TemplateMisses++ })

	source, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrIO, path, err)
	}

	// includes resolve relative to the blueprint directory
	set := pongo2.NewSet("blueprints:"+input.Dir, &aferoLoader{fs: r.fs, dir: input.Dir})
	tpl, err := set.FromBytes(source)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", ErrTemplate, path, err)
	}

	r.templates.Add(path, cachedTemplate{template: tpl, modTime: info.ModTime(), partials: partials})
	return tpl, nil
}

func (r *Renderer) record(fn func(*RendererStats)) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	fn(&r.stats)
}

// Stats returns a copy of the current counters
func (r *Renderer) Stats() RendererStats {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.stats
}

// aferoLoader lets pongo2 resolve {% include %} and {% extends %} through afero
type aferoLoader struct {
	fs  afero.Fs
	dir string
}

func (l *aferoLoader) Abs(base, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	if base == "" {
		return filepath.Join(l.dir, name)
	}
	return filepath.Join(filepath.Dir(base), name)
}

func (l *aferoLoader) Get(path string) (io.Reader, error) {
	// templates parsed from bytes hand over the include name unresolved
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.dir, path)
	}
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}
