package interview

import (
	"strings"

	"github.com/esnunes/featurechat/internal/models"
)

// Apply converts raw answer text into the value stored in field's slot.
// List fields keep one trimmed entry per non-blank line; scalar fields keep
// the text verbatim.
func Apply(field models.Field, raw string) models.Value {
	if !field.IsList() {
		return models.Scalar(raw)
	}
	items := []string{}
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			items = append(items, line)
		}
	}
	return models.List(items)
}
