package validation

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed recipe_schema.json
var recipeSchemaJSON []byte

const recipeSchemaURL = "recipe_schema.json"

var (
	compileOnce  sync.Once
	recipeSchema *jsonschema.Schema
	compileErr   error
)

func compiledRecipeSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(recipeSchemaJSON))
		if err != nil {
			compileErr = fmt.Errorf("failed to parse recipe schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(recipeSchemaURL, doc); err != nil {
			compileErr = fmt.Errorf("failed to add recipe schema resource: %w", err)
			return
		}
		recipeSchema, compileErr = compiler.Compile(recipeSchemaURL)
	})
	return recipeSchema, compileErr
}

// ValidateRecipeConfig checks raw recipe configuration bytes against the
// embedded JSON schema. It catches structural mistakes before any value
// level validation runs.
func ValidateRecipeConfig(data []byte) error {
	schema, err := compiledRecipeSchema()
	if err != nil {
		return err
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to parse recipe config: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	validationErr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return fmt.Errorf("validation error: %w", err)
	}
	var messages []string
	collectErrors(validationErr, &messages)
	return fmt.Errorf("recipe config schema validation failed:\n%s", strings.Join(messages, "\n"))
}

func collectErrors(err *jsonschema.ValidationError, messages *[]string) {
	if msg := formatError(err); msg != "" {
		*messages = append(*messages, msg)
	}
	for _, cause := range err.Causes {
		collectErrors(cause, messages)
	}
}

func formatError(err *jsonschema.ValidationError) string {
	location := strings.Join(err.InstanceLocation, "/")
	if location == "" {
		location = "(root)"
	} else {
		location = "/" + location
	}

	keywords := ""
	if err.ErrorKind != nil {
		if keywordPath := err.ErrorKind.KeywordPath(); len(keywordPath) > 0 {
			keywords = strings.Join(keywordPath, ".")
		}
	}

	if keywords != "" {
		return fmt.Sprintf("  - at %s: %s validation failed", location, keywords)
	}
	return fmt.Sprintf("  - at %s: validation failed", location)
}
