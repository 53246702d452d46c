package leads

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	datasetVersionV1 = "1"
	// DatasetVersion exposes the current dataset format version for tooling.
	DatasetVersion = datasetVersionV1
)

//go:embed data/leads.yaml data/leads.schema.json
var embeddedData embed.FS

var errNilDataset = errors.New("leads: dataset is nil")

// Dataset is the YAML document backing the record store.
type Dataset struct {
	Version string `json:"version" yaml:"version"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Leads   []Lead `json:"leads" yaml:"leads"`
	Source  string `json:"-" yaml:"-"`
}

// DefaultDataset decodes the embedded mock dataset.
func DefaultDataset() (*Dataset, error) {
	f, err := embeddedData.Open("data/leads.yaml")
	if err != nil {
		return nil, fmt.Errorf("leads: open embedded dataset: %w", err)
	}
	defer f.Close()
	doc, err := DecodeDataset(f, nil)
	if err != nil {
		return nil, err
	}
	doc.Source = "embedded"
	return doc, nil
}

// ReadDataset loads a dataset file from disk.
func ReadDataset(path string, validator DatasetValidator) (*Dataset, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("leads: open dataset %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeDataset(f, validator)
	if err != nil {
		return nil, fmt.Errorf("leads: decode dataset %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeDataset reads a dataset from any reader. Unknown fields are rejected.
// A nil validator selects the embedded JSON schema.
func DecodeDataset(r io.Reader, validator DatasetValidator) (*Dataset, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc Dataset
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("leads: dataset is empty")
		}
		return nil, fmt.Errorf("leads: parse dataset: %w", err)
	}
	if err := PrepareDataset(&doc, validator); err != nil {
		return nil, err
	}
	return &doc, nil
}

// PrepareDataset normalizes a decoded document and validates it. A nil
// validator selects the embedded JSON schema.
func PrepareDataset(doc *Dataset, validator DatasetValidator) error {
	if doc == nil {
		return errNilDataset
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return err
	}
	if validator == nil {
		validator = NewJSONSchemaValidator(nil)
	}
	return validator.Validate(doc)
}

// Validate enforces the record invariants the schema cannot express.
func (doc *Dataset) Validate() error {
	if doc.Version != datasetVersionV1 {
		return fmt.Errorf("leads: unsupported dataset version %q", doc.Version)
	}
	seen := make(map[string]struct{}, len(doc.Leads))
	for idx, lead := range doc.Leads {
		if lead.ID == "" {
			return fmt.Errorf("leads: dataset lead at index %d is missing id", idx)
		}
		if _, exists := seen[lead.ID]; exists {
			return fmt.Errorf("leads: dataset duplicates lead id %s", lead.ID)
		}
		seen[lead.ID] = struct{}{}
		if _, ok := ParseStatus(string(lead.Status)); !ok {
			return fmt.Errorf("leads: lead %s has unknown status %q", lead.ID, lead.Status)
		}
		if lead.Value < 0 {
			return fmt.Errorf("leads: lead %s has negative value", lead.ID)
		}
		if lead.LastActivity.IsZero() {
			return fmt.Errorf("leads: lead %s missing last_activity", lead.ID)
		}
	}
	return nil
}

func (doc *Dataset) applyDefaults() {
	if doc.Version == "" {
		doc.Version = datasetVersionV1
	}
	for i := range doc.Leads {
		doc.Leads[i].ID = strings.TrimSpace(doc.Leads[i].ID)
		if status, ok := ParseStatus(string(doc.Leads[i].Status)); ok {
			doc.Leads[i].Status = status
		}
	}
}

func (doc *Dataset) label() string {
	if doc.Source != "" {
		return doc.Source
	}
	if doc.Name != "" {
		return doc.Name
	}
	return "dataset"
}
