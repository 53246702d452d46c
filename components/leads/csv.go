package leads

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
)

// ExportFilename is the download name for CSV exports.
const ExportFilename = "zenith-leads-report.csv"

// CSVHeader lists the export columns in order.
var CSVHeader = []string{"ID", "Name", "Email", "Status", "Assigned Agent", "Value", "Last Activity"}

// ToCSV serializes records in order. It returns nil for an empty input so
// callers can surface a warning instead of writing a header-only file.
func ToCSV(records []Lead) ([]byte, error) {
	if len(records) == 0 {
		return nil, nil
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(CSVHeader); err != nil {
		return nil, fmt.Errorf("leads: write csv header: %w", err)
	}
	for _, lead := range records {
		if err := w.Write(csvRow(lead)); err != nil {
			return nil, fmt.Errorf("leads: write csv row %s: %w", lead.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("leads: flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func csvRow(lead Lead) []string {
	return []string{
		lead.ID,
		lead.Name,
		lead.Email,
		string(lead.Status),
		lead.AssignedAgent,
		strconv.FormatFloat(lead.Value, 'f', -1, 64),
		FormatDate(lead.LastActivity),
	}
}
