package adapter

import (
	"bytes"
	"encoding/xml"
	"fmt"

	m "apicheck.dev/pkg/apicheck/internal/model"
)

// ReportStore writes the surviving differences to report files.
type ReportStore interface {
	SaveText(path m.Path, records []m.DifferenceRecord) error
	SaveXML(path m.Path, records []m.DifferenceRecord) error
}

// LocalReportStore writes reports through a SourceFSAdapter.
type LocalReportStore struct {
	fs SourceFSAdapter
}

// NewReportStore creates a report store backed by the given filesystem.
func NewReportStore(fs SourceFSAdapter) *LocalReportStore {
	return &LocalReportStore{fs: fs}
}

// SaveText writes one "SEVERITY: code: class: message" line per record.
func (s *LocalReportStore) SaveText(path m.Path, records []m.DifferenceRecord) error {
	var buf bytes.Buffer

	for _, record := range records {
		fmt.Fprintf(&buf, "%s: %d: %s: %s\n", record.Severity, record.Code, record.AffectedClass, record.Message)
	}

	if err := s.fs.WriteFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write text report %s: %w", path, err)
	}

	return nil
}

// SaveXML writes the records in the comparator's XML report layout.
func (s *LocalReportStore) SaveXML(path m.Path, records []m.DifferenceRecord) error {
	report := xmlDiffReport{Differences: make([]xmlDifference, 0, len(records))}
	for _, record := range records {
		report.Differences = append(report.Differences, toXMLDifference(record))
	}

	content, err := xml.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode xml report: %w", err)
	}

	content = append([]byte(xml.Header), content...)
	content = append(content, '\n')

	if err := s.fs.WriteFile(path, content); err != nil {
		return fmt.Errorf("write xml report %s: %w", path, err)
	}

	return nil
}
