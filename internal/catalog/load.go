package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

//go:embed data/robotics.yaml
var defaultYAML []byte

//go:embed data/catalog.schema.json
var schemaJSON []byte

const schemaURL = "schema://forgelabs/catalog.json"

var (
	compiledOnce   sync.Once
	compiledSchema *jsonschema.Schema
	compiledErr    error

	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// document is the on-disk layout of a catalog file.
type document struct {
	Roadmaps []Roadmap `yaml:"roadmaps"`
}

// Default returns the embedded robotics curriculum.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(defaultYAML)
	})
	return defaultCatalog, defaultErr
}

// Load reads and parses a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse validates YAML catalog data against the catalog schema and builds
// the indexed Catalog.
func Parse(data []byte) (*Catalog, error) {
	if err := validateDocument(data); err != nil {
		return nil, err
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(doc.Roadmaps)
}

// validateDocument checks the raw document shape before typed decoding so
// that misspelled keys and wrong types fail loudly instead of silently
// zeroing fields.
func validateDocument(data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse catalog yaml: %w", err)
	}

	// The validator wants JSON-shaped values (json.Number, map[string]any).
	b, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("convert catalog to json: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("convert catalog to json: %w", err)
	}

	sch, err := catalogSchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("catalog schema validation failed: %w", err)
	}
	return nil
}

func catalogSchema() (*jsonschema.Schema, error) {
	compiledOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			compiledErr = fmt.Errorf("parse catalog schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compiledErr = fmt.Errorf("add catalog schema: %w", err)
			return
		}
		compiledSchema, compiledErr = c.Compile(schemaURL)
		if compiledErr != nil {
			compiledErr = fmt.Errorf("compile catalog schema: %w", compiledErr)
		}
	})
	return compiledSchema, compiledErr
}
