// Package highlight renders code blocks to self-contained HTML.
package highlight

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/guimauveb/guimauve.io/internal/apperr"
	"github.com/guimauveb/guimauve.io/internal/models"
)

// Theme is the fixed dark style applied to every block
const Theme = "monokai"

var (
	style     = styles.Get(Theme)
	formatter = html.New(html.WithClasses(false), html.TabWidth(4))
)

// ErrUnknownLanguage is returned when no syntax definition matches the language
var ErrUnknownLanguage = &apperr.Error{Kind: apperr.KindValidation, Message: "UnknownLanguage"}

// Highlight renders source as an inline-styled <pre> fragment.
// The result only depends on (source, lang).
func Highlight(source string, lang models.Language) (string, error) {
	if !lang.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, string(lang))
	}

	lexer := lexers.Get(strings.ToLower(string(lang)))
	if lexer == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, string(lang))
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, source)
	if err != nil {
		return "", apperr.Internal(err, "tokenise code block")
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, it); err != nil {
		return "", apperr.Internal(err, "format code block")
	}
	return buf.String(), nil
}
