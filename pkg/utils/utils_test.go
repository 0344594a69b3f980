package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"
)

type UtilsTestSuite struct {
	suite.Suite
}

func TestUtilsSuite(t *testing.T) {
	suite.Run(t, new(UtilsTestSuite))
}

type sweepConfig struct {
	Name    string    `json:"name" jsonschema:"description=Name of the sweep"`
	Values  []float64 `json:"values" jsonschema:"minItems=1"`
	Workers int       `json:"workers,omitempty"`
}

func (suite *UtilsTestSuite) TestGetSchemaFromConfig() {
	schema, err := GetSchemaFromConfig(sweepConfig{})
	suite.Require().NoError(err)

	var result map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(schema), &result))

	suite.Contains(result, "$schema")
	suite.Equal("object", result["type"])

	properties, ok := result["properties"].(map[string]any)
	suite.Require().True(ok)
	suite.Contains(properties, "name")
	suite.Contains(properties, "values")
	suite.Contains(properties, "workers")

	name := properties["name"].(map[string]any)
	suite.Equal("Name of the sweep", name["description"])

	suite.ElementsMatch([]any{"name", "values"}, result["required"])
}

func (suite *UtilsTestSuite) TestGetSchemaFromPointer() {
	fromValue, err := GetSchemaFromConfig(sweepConfig{})
	suite.Require().NoError(err)

	fromPointer, err := GetSchemaFromConfig(&sweepConfig{})
	suite.Require().NoError(err)
	suite.JSONEq(fromValue, fromPointer)
}
