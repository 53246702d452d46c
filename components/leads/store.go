package leads

import "context"

// RecordStore is an immutable lead collection. Accessors return copies.
type RecordStore struct {
	records []Lead
}

// NewRecordStore snapshots records.
func NewRecordStore(records []Lead) *RecordStore {
	return &RecordStore{records: append([]Lead(nil), records...)}
}

// Records returns every lead in dataset order.
func (s *RecordStore) Records(context.Context) ([]Lead, error) {
	return append([]Lead(nil), s.records...), nil
}

// Len returns the number of leads.
func (s *RecordStore) Len() int {
	return len(s.records)
}
