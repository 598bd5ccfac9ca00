// Package jsonschema publishes the JSON schema of the extraction profile
// format, derived from the profile types.
package jsonschema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/yzsnstotz/tlvc"
)

// ProfileSchemaID identifies the published schema.
const ProfileSchemaID = "https://github.com/yzsnstotz/tlvc/profile.schema.json"

// ProfileSchema reflects tlvc.Profile into a self-contained schema. Unknown
// properties are rejected and required fields come from jsonschema tags.
func ProfileSchema() *jsonschema.Schema {
	r := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	s := r.Reflect(&tlvc.Profile{})
	s.ID = ProfileSchemaID
	s.Title = "tlvc extraction profile"
	return s
}

// MarshalProfileSchema returns the indented schema document.
func MarshalProfileSchema() ([]byte, error) {
	b, err := json.MarshalIndent(ProfileSchema(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal profile schema: %w", err)
	}
	return append(b, '\n'), nil
}
