package stages

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

// validateSchema checks a stage document against one of the embedded JSON
// Schemas before entity decoding, so shape failures carry field paths.
func validateSchema(stage, schemaName string, doc json.RawMessage) error {
	schemaData, err := schemaFiles.ReadFile("schemas/" + schemaName)
	if err != nil {
		return fmt.Errorf("failed to load embedded schema %s: %w", schemaName, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaData),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return &ValidationError{
			Stage:   stage,
			Message: "schema validation could not run",
			Cause:   err,
		}
	}

	if !result.Valid() {
		var sb strings.Builder
		for i, desc := range result.Errors() {
			if i > 0 {
				sb.WriteString("; ")
			}
			sb.WriteString(fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return &ValidationError{
			Stage:   stage,
			Field:   firstField(result),
			Message: sb.String(),
		}
	}

	return nil
}

func firstField(result *gojsonschema.Result) string {
	errs := result.Errors()
	if len(errs) == 0 {
		return ""
	}
	return errs[0].Field()
}
