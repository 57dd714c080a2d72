package adapter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "apicheck.dev/pkg/apicheck/internal/model"
)

func TestLocalDifferenceSource_Read(t *testing.T) {
	removed := m.DifferenceRecord{
		Code:           m.CodeMethodRemoved,
		Severity:       m.SeverityError,
		AffectedClass:  "com.acme.Widget",
		AffectedMethod: "public void resize(int, int)",
		Message:        "Method 'public void resize(int, int)' has been removed",
	}
	added := m.DifferenceRecord{
		Code:          m.CodeFieldAdded,
		Severity:      m.SeverityInfo,
		AffectedClass: "com.acme.Widget",
		AffectedField: "HEIGHT",
	}

	tests := []struct {
		name    string
		file    string
		content string
		want    []m.DifferenceRecord
	}{
		{
			name: "yaml list",
			file: "diff.yaml",
			content: `- code: 7002
  severity: ERROR
  class: com.acme.Widget
  method: public void resize(int, int)
  message: Method 'public void resize(int, int)' has been removed
- code: 6000
  severity: info
  class: com.acme.Widget
  field: HEIGHT
`,
			want: []m.DifferenceRecord{removed, added},
		},
		{
			name: "yaml documents",
			file: "diff.yml",
			content: `code: 7002
severity: error
class: com.acme.Widget
method: public void resize(int, int)
message: Method 'public void resize(int, int)' has been removed
---
- code: 6000
  class: com.acme.Widget
  field: HEIGHT
`,
			want: []m.DifferenceRecord{removed, added},
		},
		{
			name: "json array",
			file: "diff.json",
			content: `[
  {"code": 7002, "severity": "ERROR", "class": "com.acme.Widget", "method": "public void resize(int, int)", "message": "Method 'public void resize(int, int)' has been removed"},
  {"code": 6000, "severity": "INFO", "class": "com.acme.Widget", "field": "HEIGHT"}
]`,
			want: []m.DifferenceRecord{removed, added},
		},
		{
			name: "json lines",
			file: "diff.jsonl",
			content: `{"code": 7002, "severity": "ERROR", "class": "com.acme.Widget", "method": "public void resize(int, int)", "message": "Method 'public void resize(int, int)' has been removed"}
{"code": 6000, "severity": "INFO", "class": "com.acme.Widget", "field": "HEIGHT"}
`,
			want: []m.DifferenceRecord{removed, added},
		},
		{
			name: "xml report",
			file: "diff.xml",
			content: `<?xml version="1.0" encoding="UTF-8"?>
<diffreport>
  <difference code="7002" class="com.acme.Widget" method="public void resize(int, int)" binseverity="INFO" srcseverity="ERROR">
    Method 'public void resize(int, int)' has been removed
  </difference>
  <difference code="6000" class="com.acme.Widget" field="HEIGHT" binseverity="INFO" srcseverity="INFO"/>
</diffreport>
`,
			want: []m.DifferenceRecord{removed, added},
		},
		{
			name:    "empty json",
			file:    "diff.json",
			content: "\n",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			writeTestFile(t, path, tt.content)

			got, err := NewDifferenceSource(NewLocalSourceFSAdapter()).Read(m.Path(path))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocalDifferenceSource_ReadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"unsupported extension", "diff.csv", "7002,com.acme.Widget\n", "unsupported format"},
		{"method and field", "diff.yaml", "code: 7002\nclass: a.B\nmethod: void run()\nfield: X\n", m.ErrAmbiguousRecord.Error()},
		{"missing class", "diff.json", `[{"code": 8001}]`, "missing affected class"},
		{"unknown severity", "diff.yaml", "code: 7002\nseverity: fatal\nclass: a.B\n", "unknown severity"},
		{"scalar document", "diff.yaml", "just text\n", "expected a difference"},
		{"bad xml severity", "diff.xml", `<diffreport><difference code="1" class="a.B" binseverity="LOUD" srcseverity="INFO"/></diffreport>`, "unknown severity"},
		{"xml without code", "diff.xml", `<diffreport><difference class="a.B" method="public void foo()" binseverity="ERROR" srcseverity="ERROR">Method removed</difference></diffreport>`, "difference #0: missing code"},
		{"yaml without code", "diff.yaml", "class: a.B\nmethod: public void foo()\n", "a.B: missing code"},
		{"broken json line", "diff.jsonl", "{\"code\": 1, \"class\": \"a.B\"}\n{oops\n", "record 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			writeTestFile(t, path, tt.content)

			_, err := NewDifferenceSource(NewLocalSourceFSAdapter()).Read(m.Path(path))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
