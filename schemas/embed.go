// Package schemas embeds the JSON Schema documents shipped with the binary.
package schemas

import (
	"embed"
	"fmt"
)

//go:embed *.schema.json
var files embed.FS

// VocabularySchema is the schema file name for skills vocabularies.
const VocabularySchema = "vocabulary.schema.json"

// Get returns the named schema document.
func Get(name string) (string, error) {
	data, err := files.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("schema %s not embedded: %w", name, err)
	}
	return string(data), nil
}
