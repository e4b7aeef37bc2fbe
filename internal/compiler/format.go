package compiler

import (
	"fmt"

	"github.com/mark3labs/swagger2client/internal/model"
)

// Formatter renders the serialized placeholder name of a parameter for value
// templates. Collection serialization (delimiters etc.) lives behind this
// interface so emitters can swap in target-language formatting.
type Formatter interface {
	FormatParameter(p model.Parameter) string
}

// templateFormatter is the default: scalar parameters render as their name,
// collections as a join() template over the collection-format delimiter.
type templateFormatter struct{}

func (templateFormatter) FormatParameter(p model.Parameter) string {
	if _, ok := p.Type.(*model.Collection); ok {
		return fmt.Sprintf("join(%s, %q)", p.Name, collectionDelimiter(p.CollectionFormat))
	}
	return p.Name
}

func collectionDelimiter(format string) string {
	switch format {
	case "ssv":
		return " "
	case "tsv":
		return "\t"
	case "pipes":
		return "|"
	default: // csv and unspecified
		return ","
	}
}
