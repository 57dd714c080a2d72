package adapter

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	m "apicheck.dev/pkg/apicheck/internal/model"
)

// DifferenceSource reads the difference records emitted by the comparator.
type DifferenceSource interface {
	Read(path m.Path) ([]m.DifferenceRecord, error)
}

// xmlDiffReport is the comparator's XML report layout.
type xmlDiffReport struct {
	XMLName     xml.Name        `xml:"diffreport"`
	Differences []xmlDifference `xml:"difference"`
}

type xmlDifference struct {
	Code        *int   `xml:"code,attr"`
	Class       string `xml:"class,attr"`
	Method      string `xml:"method,attr,omitempty"`
	Field       string `xml:"field,attr,omitempty"`
	BinSeverity string `xml:"binseverity,attr"`
	SrcSeverity string `xml:"srcseverity,attr"`
	Message     string `xml:",chardata"`
}

// LocalDifferenceSource picks the decoder from the file extension.
type LocalDifferenceSource struct {
	fs SourceFSAdapter
}

// NewDifferenceSource creates a difference source backed by the given filesystem.
func NewDifferenceSource(fs SourceFSAdapter) *LocalDifferenceSource {
	return &LocalDifferenceSource{fs: fs}
}

// Read decodes every record of the file, in file order.
func (s *LocalDifferenceSource) Read(path m.Path) ([]m.DifferenceRecord, error) {
	content, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read differences %s: %w", path, err)
	}

	var records []m.DifferenceRecord

	switch ext := strings.ToLower(filepath.Ext(string(path))); ext {
	case ".yaml", ".yml":
		records, err = decodeYAMLDifferences(content)
	case ".json", ".jsonl":
		records, err = decodeJSONDifferences(content)
	case ".xml":
		records, err = decodeXMLDifferences(content)
	default:
		return nil, fmt.Errorf("read differences %s: unsupported format %q", path, ext)
	}

	if err != nil {
		return nil, fmt.Errorf("decode differences %s: %w", path, err)
	}

	for i, record := range records {
		if err := record.Validate(); err != nil {
			return nil, fmt.Errorf("difference #%d in %s: %w", i, path, err)
		}
	}

	return records, nil
}

// decodeYAMLDifferences accepts a list, a single record, or a stream of
// documents holding either.
func decodeYAMLDifferences(content []byte) ([]m.DifferenceRecord, error) {
	var records []m.DifferenceRecord

	decoder := yaml.NewDecoder(bytes.NewReader(content))

	for {
		var node yaml.Node

		err := decoder.Decode(&node)
		if errors.Is(err, io.EOF) {
			return records, nil
		}

		if err != nil {
			return nil, err
		}

		doc := &node
		if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
			doc = doc.Content[0]
		}

		switch doc.Kind {
		case yaml.SequenceNode:
			var batch []m.DifferenceRecord
			if err := doc.Decode(&batch); err != nil {
				return nil, err
			}

			records = append(records, batch...)
		case yaml.MappingNode:
			var record m.DifferenceRecord
			if err := doc.Decode(&record); err != nil {
				return nil, err
			}

			records = append(records, record)
		default:
			return nil, fmt.Errorf("line %d: expected a difference or a list of differences", doc.Line)
		}
	}
}

// decodeJSONDifferences accepts a JSON array or one object per line.
func decodeJSONDifferences(content []byte) ([]m.DifferenceRecord, error) {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var records []m.DifferenceRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, err
		}

		return records, nil
	}

	var records []m.DifferenceRecord

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	for decoder.More() {
		var record m.DifferenceRecord
		if err := decoder.Decode(&record); err != nil {
			return nil, fmt.Errorf("record %d: %w", len(records), err)
		}

		records = append(records, record)
	}

	return records, nil
}

func decodeXMLDifferences(content []byte) ([]m.DifferenceRecord, error) {
	var report xmlDiffReport
	if err := xml.Unmarshal(content, &report); err != nil {
		return nil, err
	}

	records := make([]m.DifferenceRecord, 0, len(report.Differences))

	for i, diff := range report.Differences {
		if diff.Code == nil {
			return nil, fmt.Errorf("difference #%d: missing code", i)
		}

		severity, err := xmlSeverity(diff)
		if err != nil {
			return nil, fmt.Errorf("difference #%d: %w", i, err)
		}

		records = append(records, m.DifferenceRecord{
			Code:           m.Code(*diff.Code),
			Severity:       severity,
			AffectedClass:  diff.Class,
			AffectedMethod: diff.Method,
			AffectedField:  diff.Field,
			Message:        strings.TrimSpace(diff.Message),
		})
	}

	return records, nil
}

// xmlSeverity keeps the worse of the binary and source severities.
func xmlSeverity(diff xmlDifference) (m.Severity, error) {
	binary, err := m.ParseSeverity(diff.BinSeverity)
	if err != nil {
		return m.SeverityInfo, err
	}

	source, err := m.ParseSeverity(diff.SrcSeverity)
	if err != nil {
		return m.SeverityInfo, err
	}

	return max(binary, source), nil
}

func toXMLDifference(record m.DifferenceRecord) xmlDifference {
	code := int(record.Code)

	return xmlDifference{
		Code:        &code,
		Class:       record.AffectedClass,
		Method:      record.AffectedMethod,
		Field:       record.AffectedField,
		BinSeverity: record.Severity.String(),
		SrcSeverity: record.Severity.String(),
		Message:     record.Message,
	}
}
