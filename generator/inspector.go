package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/meysamhadeli/traitgen/generator/models"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/spf13/afero"
)

const (
	structQuery = `(struct_specifier name: (type_identifier) @struct body: (field_declaration_list))`
	fieldQuery  = `(field_declaration_list (field_declaration type: (_) @type declarator: (_) @name))`
)

// Inspector extracts the struct name and member declarations of a trait header, so
// blueprints can emit per-field code. Headers it cannot parse simply contribute no fields.
type Inspector struct {
	fs afero.Fs
}

func NewInspector(fs afero.Fs) *Inspector {
	return &Inspector{fs: fs}
}

// Inspect fills StructName and Fields of every trait from its declaration file
func (in *Inspector) Inspect(ctx context.Context, project *models.ProjectDescriptor, traits []models.TraitEntry) []models.TraitEntry {
	byName := make(map[string]models.FileDescriptor, len(project.IncludeFiles))
	for _, f := range project.IncludeFiles {
		byName[f.Name] = f
	}

	for i := range traits {
		f, ok := byName[traits[i].FileStem]
		if !ok {
			continue
		}
		source, err := afero.ReadFile(in.fs, f.Path())
		if err != nil {
			continue
		}
		structName, fields, err := ParseTraitHeader(ctx, source)
		if err != nil {
			continue
		}
		if structName != "" {
			traits[i].StructName = structName
		}
		traits[i].Fields = fields
	}
	return traits
}

// ParseTraitHeader returns the first struct defined in source and its fields in
// declaration order.
func ParseTraitHeader(ctx context.Context, source []byte) (string, []models.TraitField, error) {
	lang := cpp.GetLanguage()
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse header: %w", err)
	}
	defer tree.Close()
	root := tree.RootNode()

	var structName string
	var structNode *sitter.Node
	err = runQuery(lang, root, structQuery, func(captures map[string]*sitter.Node) bool {
		structName = captures["struct"].Content(source)
		structNode = captures["struct"].Parent()
		return false
	})
	if err != nil {
		return "", nil, err
	}
	if structNode == nil {
		return "", nil, nil
	}

	var fields []models.TraitField
	err = runQuery(lang, structNode, fieldQuery, func(captures map[string]*sitter.Node) bool {
		typeNode, nameNode := captures["type"], captures["name"]
		if typeNode == nil || nameNode == nil {
			return true
		}
		fields = append(fields, models.TraitField{
			Type: typeNode.Content(source),
			Name: strings.TrimSpace(nameNode.Content(source)),
		})
		return true
	})
	if err != nil {
		return "", nil, err
	}

	return structName, fields, nil
}

// runQuery calls fn with the named captures of every match until fn returns false
func runQuery(lang *sitter.Language, node *sitter.Node, pattern string, fn func(map[string]*sitter.Node) bool) error {
	query, err := sitter.NewQuery([]byte(pattern), lang)
	if err != nil {
		return fmt.Errorf("failed to compile query: %w", err)
	}
	defer query.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(query, node)

	for {
		match, ok := cursor.NextMatch()
		if !ok {
			return nil
		}
		captures := make(map[string]*sitter.Node, len(match.Captures))
		for _, c := range match.Captures {
			captures[query.CaptureNameForId(c.Index)] = c.Node
		}
		if !fn(captures) {
			return nil
		}
	}
}
