// Package utils holds helpers shared by the command line tools.
package utils

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GetSchemaFromConfig reflects the JSON schema of config, honoring its json and
// jsonschema struct tags.
func GetSchemaFromConfig(config any) (string, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true,
	}

	jsonSchemaBytes, err := json.MarshalIndent(reflector.Reflect(config), "", "  ")
	if err != nil {
		return "", err
	}

	return string(jsonSchemaBytes), nil
}
