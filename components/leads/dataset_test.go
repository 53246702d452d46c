package leads

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDatasetYAML = `version: "1"
name: fixture
leads:
  - id: " LD-1 "
    name: Olivia Bennett
    email: olivia@example.com
    status: new
    assigned_agent: Sarah Jenkins
    value: 300000
    last_activity: 2025-03-04T10:00:00Z
  - id: LD-2
    name: Liam Carter
    email: liam@example.com
    status: Qualified
    assigned_agent: Mike Ross
    value: 500000
    last_activity: 2025-03-02T09:00:00-05:00
`

func TestDefaultDatasetDecodes(t *testing.T) {
	doc, err := DefaultDataset()
	require.NoError(t, err)

	assert.Equal(t, DatasetVersion, doc.Version)
	assert.Equal(t, "embedded", doc.Source)
	assert.Len(t, doc.Leads, 30)

	counts := map[Status]int{}
	for _, lead := range doc.Leads {
		counts[lead.Status]++
		assert.NotEmpty(t, lead.AssignedAgent, lead.ID)
		assert.False(t, lead.LastActivity.IsZero(), lead.ID)
	}
	for _, status := range KnownStatuses {
		assert.Positive(t, counts[status], "dataset covers %s", status)
	}
}

func TestDecodeDatasetNormalizesRecords(t *testing.T) {
	doc, err := DecodeDataset(strings.NewReader(validDatasetYAML), nil)
	require.NoError(t, err)
	require.Len(t, doc.Leads, 2)

	assert.Equal(t, "LD-1", doc.Leads[0].ID)
	assert.Equal(t, StatusNew, doc.Leads[0].Status)
	assert.Equal(t, "2025-03-02", doc.Leads[1].LastActivity.Format("2006-01-02"))
}

func TestDecodeDatasetRejectsInvalidDocuments(t *testing.T) {
	cases := map[string]struct {
		mutate func(string) string
		want   string
	}{
		"duplicate id": {
			mutate: func(s string) string { return strings.Replace(s, "id: LD-2", "id: LD-1", 1) },
			want:   "duplicates lead id LD-1",
		},
		"unknown field": {
			mutate: func(s string) string { return strings.Replace(s, "value: 500000", "value: 500000\n    phone: 555", 1) },
			want:   "field phone not found",
		},
		"unknown status": {
			mutate: func(s string) string { return strings.Replace(s, "status: Qualified", "status: Archived", 1) },
			want:   `unknown status "Archived"`,
		},
		"negative value": {
			mutate: func(s string) string { return strings.Replace(s, "value: 500000", "value: -1", 1) },
			want:   "negative value",
		},
		"unsupported version": {
			mutate: func(s string) string { return strings.Replace(s, `version: "1"`, `version: "2"`, 1) },
			want:   "unsupported dataset version",
		},
		"schema violation": {
			mutate: func(s string) string { return strings.Replace(s, "name: Liam Carter", `name: ""`, 1) },
			want:   "failed validation",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeDataset(strings.NewReader(tc.mutate(validDatasetYAML)), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestDecodeDatasetEmpty(t *testing.T) {
	_, err := DecodeDataset(strings.NewReader(""), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dataset is empty")
}

func TestReadDatasetFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validDatasetYAML), 0o600))

	doc, err := ReadDataset(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Source)

	store := NewRecordStore(doc.Leads)
	assert.Equal(t, 2, store.Len())
	records, err := store.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Liam Carter", records[1].Name)

	records[1].Name = "mutated"
	again, _ := store.Records(context.Background())
	assert.Equal(t, "Liam Carter", again[1].Name, "records are copies")
}

func TestJSONSchemaValidatorCustomSchema(t *testing.T) {
	strict := NewJSONSchemaValidator([]byte(`{"type":"object","properties":{"leads":{"maxItems":1}}}`))

	_, err := DecodeDataset(strings.NewReader(validDatasetYAML), strict)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed validation")

	assert.ErrorIs(t, strict.Validate(nil), errNilDataset)
}
