package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/quick"
)

// DetectLanguageFromPath picks a chroma lexer name for a generated file
func DetectLanguageFromPath(path string) string {
	if lexer := lexers.Match(filepath.Base(path)); lexer != nil {
		return lexer.Config().Name
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".h", ".hpp", ".hh", ".cpp", ".cc", ".cxx":
		return "c++"
	}
	return "plaintext"
}

// RenderAndPrintCodeWithContext highlights content line by line so a long preview can be
// interrupted with Ctrl+C.
func RenderAndPrintCodeWithContext(ctx context.Context, w io.Writer, content string, language string, theme string) error {
	lines := strings.Split(content, "\n")

	for i, line := range lines {
		if i%5 == 0 {
			select {
			case <-ctx.Done():
				fmt.Fprintf(w, "\n\n🔄 Output interrupted...\n")
				return ctx.Err()
			default:
			}
		}

		var buf bytes.Buffer
		if err := quick.Highlight(&buf, line+"\n", language, "terminal256", theme); err != nil {
			return err
		}
		fmt.Fprint(w, buf.String())
	}

	return nil
}
