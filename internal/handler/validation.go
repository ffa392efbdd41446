package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const maxBodyBytes = 64 << 10

var (
	dispatchRequestSchema = mustSchema(`{
		"type": "object",
		"properties": {
			"limit":   {"type": "integer", "minimum": 0},
			"dryRun":  {"type": "boolean"},
			"dry_run": {"type": "boolean"}
		},
		"additionalProperties": false
	}`)

	enqueueRequestSchema = mustSchema(`{
		"type": "object",
		"required": ["assessment_id"],
		"properties": {
			"assessment_id": {"type": "string", "minLength": 1, "maxLength": 128}
		}
	}`)

	// Client-supplied assessment, day or branch fields are tolerated and ignored.
	noteRequestSchema = mustSchema(`{
		"type": "object",
		"required": ["token"],
		"properties": {
			"token": {"type": "string", "minLength": 1, "maxLength": 2048},
			"note":  {"type": "string"}
		}
	}`)

	inboundSMSRequestSchema = mustSchema(`{
		"type": "object",
		"required": ["from", "body"],
		"properties": {
			"from": {"type": "string", "minLength": 1, "maxLength": 32},
			"body": {"type": "string", "maxLength": 1600}
		}
	}`)
)

func mustSchema(schema string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("invalid request schema: %v", err))
	}
	return s
}

// ValidationError lists why a request body was rejected.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Details, "; ")
}

// decodeJSON validates the body against schema and then decodes it into dst. An empty body
// is validated as an empty object.
func decodeJSON(w http.ResponseWriter, r *http.Request, schema *gojsonschema.Schema, dst interface{}) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return &ValidationError{Details: []string{"request body is too large or unreadable"}}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return &ValidationError{Details: []string{"request body is not valid JSON"}}
	}
	if !result.Valid() {
		details := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			details[i] = desc.String()
		}
		return &ValidationError{Details: details}
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return &ValidationError{Details: []string{err.Error()}}
	}
	return nil
}
