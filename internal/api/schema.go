package api

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// matchRequestSchema constrains the inbound body shape before it reaches the
// pipeline. The limit bound matches the engine's configured maximum ceiling.
const matchRequestSchema = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"options": {
			"type": "object",
			"additionalProperties": false,
			"properties": {
				"mentorshipOnly": {"type": "boolean"},
				"industries": {
					"type": "array",
					"items": {"type": "string", "minLength": 1},
					"maxItems": 20
				},
				"limit": {"type": "integer", "maximum": 1000, "minimum": -1000}
			}
		}
	}
}`

var matchSchemaLoader = gojsonschema.NewStringLoader(matchRequestSchema)

// validateMatchRequest returns a human-readable validation failure, or "" if
// the body conforms.
func validateMatchRequest(body []byte) string {
	result, err := gojsonschema.Validate(matchSchemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return "malformed JSON body"
	}
	if result.Valid() {
		return ""
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	return "invalid request: " + strings.Join(msgs, "; ")
}
