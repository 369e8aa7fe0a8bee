package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"

	"github.com/dshills/codeshift/pkg/security"
)

// Profile describes a reusable migration job: what to migrate, where,
// and how to narrow the file set. Profiles are JSON files validated
// against profileSchema before any field is trusted.
type Profile struct {
	Type   string `json:"type"`
	Root   string `json:"root"`
	Filter string `json:"filter,omitempty"`
	DryRun bool   `json:"dry_run,omitempty"`
}

// profileSchema is the JSON Schema every profile must satisfy.
const profileSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["type", "root"],
	"additionalProperties": false,
	"properties": {
		"type":    {"type": "string", "minLength": 1},
		"root":    {"type": "string", "minLength": 1},
		"filter":  {"type": "string"},
		"dry_run": {"type": "boolean"}
	}
}`

// LoadProfile reads and validates a migration profile. The document is
// checked against the schema first, then the migration type against the
// security allowlist, so a malformed or hostile profile never reaches
// the driver.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse profile JSON: %w", err)
	}

	schemaLoader := gojsonschema.NewStringLoader(profileSchema)
	documentLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("profile schema validation error: %w", err)
	}
	if !result.Valid() {
		var errMsg string
		for i, desc := range result.Errors() {
			if i > 0 {
				errMsg += "; "
			}
			errMsg += fmt.Sprintf("%s: %s", desc.Field(), desc.Description())
		}
		return nil, fmt.Errorf("invalid profile: %s", errMsg)
	}

	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}

	if err := security.ValidateMigrationType(profile.Type); err != nil {
		return nil, err
	}
	if err := security.ValidateFilePath(profile.Root); err != nil {
		return nil, err
	}

	return &profile, nil
}
