package generator

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/meysamhadeli/traitgen/generator/models"
	"github.com/pterm/pterm"
	"github.com/spf13/afero"
)

// State is the outcome of one orchestrator pass
type State string

const (
	StateFresh       State = "fresh"
	StateRegenerated State = "regenerated"
)

// Result describes what a Run did. It is returned alongside a nil error only; failures
// are reported through the error so callers can choose the exit code.
type Result struct {
	State     State
	Project   *models.ProjectDescriptor
	Traits    []models.TraitEntry
	Changes   []Change
	Written   []string
	Unchanged []string
	FormatErr error // formatter failure, never fatal
	Duration  time.Duration
}

// Orchestrator runs the fresh / stale -> regenerating -> fresh cycle for a project root
type Orchestrator struct {
	fs        afero.Fs
	layout    Layout
	cache     *ChangeCache
	renderer  *Renderer
	inspector *Inspector
	formatter Formatter
	locker    Locker
	force     bool
}

type Option func(*Orchestrator)

// WithFormatter enables a best-effort formatting pass over the outputs
func WithFormatter(f Formatter) Option {
	return func(o *Orchestrator) { o.formatter = f }
}

// WithLocker serializes concurrent runs against the same root
func WithLocker(l Locker) Option {
	return func(o *Orchestrator) { o.locker = l }
}

// WithInspector exposes trait struct fields to blueprints
func WithInspector(in *Inspector) Option {
	return func(o *Orchestrator) { o.inspector = in }
}

// WithForce regenerates even when the cache is fresh
func WithForce(force bool) Option {
	return func(o *Orchestrator) { o.force = force }
}

func NewOrchestrator(fs afero.Fs, layout Layout, opts ...Option) (*Orchestrator, error) {
	renderer, err := NewRenderer(fs)
	if err != nil {
		return nil, err
	}
	o := &Orchestrator{
		fs:       fs,
		layout:   layout.withDefaults(),
		cache:    NewChangeCache(fs),
		renderer: renderer,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

func (o *Orchestrator) Cache() *ChangeCache {
	return o.cache
}

func (o *Orchestrator) Renderer() *Renderer {
	return o.renderer
}

// Run regenerates both outputs when the watched set changed since the last refresh.
// Outputs are written before the cache is stored, so a failure leaves the project stale.
func (o *Orchestrator) Run(ctx context.Context, root string) (*Result, error) {
	start := time.Now()

	if err := o.checkRoot(root); err != nil {
		return nil, err
	}

	if o.locker != nil {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("%w: resolving %s: %w", ErrConfiguration, root, err)
		}
		release, err := o.locker.Acquire(filepath.Join(absRoot, o.layout.ScriptsDir))
		if err != nil {
			return nil, err
		}
		defer release()
	}

	result, err := o.status(root)
	if err != nil {
		return nil, err
	}

	if len(result.Changes) == 0 {
		result.State = StateFresh
		result.Duration = time.Since(start)
		return result, nil
	}

	for _, change := range result.Changes {
		pterm.Debug.Printfln("%s needs generation (%s)", change.Path, change.Reason)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	project := result.Project

	// stamped before rendering, so an edit made while this run renders stays stale
	snapshot, err := o.cache.Current(project)
	if err != nil {
		return nil, err
	}

	if o.inspector != nil {
		result.Traits = o.inspector.Inspect(ctx, project, result.Traits)
	}

	files, err := o.renderer.Render(project, result.Traits)
	if err != nil {
		return nil, err
	}
	if o.formatter != nil {
		files, err = o.formatRendered(ctx, files)
		if err != nil {
			pterm.Warning.Printfln("skipping formatting: %v", err)
			result.FormatErr = err
		}
	}
	if err := o.renderer.Write(files); err != nil {
		return nil, err
	}

	for _, f := range files {
		if f.Unchanged {
			result.Unchanged = append(result.Unchanged, f.Blueprint.Output.Path())
			continue
		}
		result.Written = append(result.Written, f.Blueprint.Output.Path())
	}

	if err := o.cache.Store(project, snapshot); err != nil {
		return nil, err
	}

	result.State = StateRegenerated
	result.Duration = time.Since(start)
	return result, nil
}

// formatRendered formats a scratch copy of every rendered file next to its output, so the
// unchanged check compares formatted content with what is on disk. On failure the raw
// renders are returned unchanged.
func (o *Orchestrator) formatRendered(ctx context.Context, files []RenderedFile) ([]RenderedFile, error) {
	scratch := make([]string, 0, len(files))
	defer func() {
		for _, path := range scratch {
			o.fs.Remove(path)
		}
	}()

	for _, f := range files {
		out := f.Blueprint.Output
		if err := o.fs.MkdirAll(out.Dir, 0755); err != nil {
			return files, fmt.Errorf("failed to create directory %s: %w", out.Dir, err)
		}
		// keeps the output's prefix, so scans and the watcher skip it, and its extension for the formatter
		tmp, err := afero.TempFile(o.fs, out.Dir, out.Name+".*.fmt"+out.Ext)
		if err != nil {
			return files, fmt.Errorf("failed to create scratch file in %s: %w", out.Dir, err)
		}
		scratch = append(scratch, tmp.Name())
		_, err = tmp.Write(f.Content)
		if closeErr := tmp.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return files, fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
		}
	}

	if err := o.formatter.Format(ctx, scratch...); err != nil {
		return files, err
	}

	formatted := make([]RenderedFile, 0, len(files))
	for i, f := range files {
		content, err := afero.ReadFile(o.fs, scratch[i])
		if err != nil {
			return files, fmt.Errorf("failed to read %s: %w", scratch[i], err)
		}
		f.Content = content
		f.Unchanged = o.renderer.sameContent(f.Blueprint.Output.Path(), content)
		formatted = append(formatted, f)
	}
	return formatted, nil
}

// Status reports whether Run would regenerate and why, without writing anything
func (o *Orchestrator) Status(root string) (*Result, error) {
	if err := o.checkRoot(root); err != nil {
		return nil, err
	}
	result, err := o.status(root)
	if err != nil {
		return nil, err
	}
	result.State = StateFresh
	if len(result.Changes) > 0 {
		result.State = StateRegenerated
	}
	return result, nil
}

// Preview renders both blueprints for root without writing outputs or the cache
func (o *Orchestrator) Preview(ctx context.Context, root string) ([]RenderedFile, error) {
	if err := o.checkRoot(root); err != nil {
		return nil, err
	}
	project, err := NewProject(o.fs, root, o.layout)
	if err != nil {
		return nil, err
	}
	traits := Traits(project)
	if o.inspector != nil {
		traits = o.inspector.Inspect(ctx, project, traits)
	}
	return o.renderer.Render(project, traits)
}

// ResetCache deletes the stored snapshot of root
func (o *Orchestrator) ResetCache(root string) error {
	if err := o.checkRoot(root); err != nil {
		return err
	}
	project, err := NewProject(o.fs, root, o.layout)
	if err != nil {
		return err
	}
	return o.cache.Reset(project)
}

func (o *Orchestrator) status(root string) (*Result, error) {
	project, err := NewProject(o.fs, root, o.layout)
	if err != nil {
		return nil, err
	}

	changes, err := o.cache.Diff(project)
	if err != nil {
		return nil, err
	}

	if len(changes) == 0 {
		for _, bp := range project.Blueprints() {
			if exists, _ := afero.Exists(o.fs, bp.Output.Path()); !exists {
				changes = append(changes, Change{Path: bp.Output.Path(), Reason: ReasonOutputMissing})
			}
		}
	}
	if len(changes) == 0 && o.force {
		changes = append(changes, Change{Path: project.Root, Reason: ReasonForced})
	}

	return &Result{
		Project: project,
		Traits:  Traits(project),
		Changes: changes,
	}, nil
}

func (o *Orchestrator) checkRoot(root string) error {
	if root == "" {
		return fmt.Errorf("%w: no project directory given", ErrConfiguration)
	}
	isDir, err := afero.IsDir(o.fs, root)
	if err != nil || !isDir {
		return fmt.Errorf("%w: %s is not a valid directory", ErrConfiguration, root)
	}
	return nil
}
