package leads

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const datasetSchemaName = "leads.schema.json"

// DatasetValidator checks a decoded dataset before it is accepted.
type DatasetValidator interface {
	Validate(doc *Dataset) error
}

// JSONSchemaValidator validates datasets against the embedded lead schema.
type JSONSchemaValidator struct {
	source []byte

	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5. A nil
// schema selects the embedded lead schema.
func NewJSONSchemaValidator(schema []byte) *JSONSchemaValidator {
	return &JSONSchemaValidator{source: schema}
}

// Validate ensures the dataset satisfies the schema.
func (v *JSONSchemaValidator) Validate(doc *Dataset) error {
	if doc == nil {
		return errNilDataset
	}
	schema, err := v.schema()
	if err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("leads: marshal dataset %s: %w", doc.label(), err)
	}
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("leads: normalize dataset %s: %w", doc.label(), err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("leads: dataset %s failed validation: %w", doc.label(), err)
	}
	return nil
}

func (v *JSONSchemaValidator) schema() (*jsonschema.Schema, error) {
	v.once.Do(func() {
		source := v.source
		if len(source) == 0 {
			source, v.err = embeddedData.ReadFile("data/" + datasetSchemaName)
			if v.err != nil {
				v.err = fmt.Errorf("leads: read schema: %w", v.err)
				return
			}
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(datasetSchemaName, bytes.NewReader(source)); err != nil {
			v.err = fmt.Errorf("leads: load schema: %w", err)
			return
		}
		v.compiled, v.err = compiler.Compile(datasetSchemaName)
		if v.err != nil {
			v.err = fmt.Errorf("leads: compile schema: %w", v.err)
		}
	})
	return v.compiled, v.err
}
