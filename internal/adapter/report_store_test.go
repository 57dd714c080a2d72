package adapter

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "apicheck.dev/pkg/apicheck/internal/model"
)

func reportRecords() []m.DifferenceRecord {
	return []m.DifferenceRecord{
		{
			Code:           m.CodeMethodRemoved,
			Severity:       m.SeverityError,
			AffectedClass:  "com.acme.Widget",
			AffectedMethod: "public void resize(int, int)",
			Message:        "Method 'public void resize(int, int)' has been removed",
		},
		{
			Code:          m.CodeFieldAdded,
			Severity:      m.SeverityInfo,
			AffectedClass: "com.acme.Widget",
			AffectedField: "HEIGHT",
			Message:       "Added public field HEIGHT",
		},
	}
}

func TestLocalReportStore_SaveText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "api.txt")

	require.NoError(t, NewReportStore(NewLocalSourceFSAdapter()).SaveText(m.Path(path), reportRecords()))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	want := strings.Join([]string{
		"ERROR: 7002: com.acme.Widget: Method 'public void resize(int, int)' has been removed",
		"INFO: 6000: com.acme.Widget: Added public field HEIGHT",
		"",
	}, "\n")
	assert.Equal(t, want, string(content))
}

func TestLocalReportStore_SaveXMLReadBack(t *testing.T) {
	fs := NewLocalSourceFSAdapter()
	path := m.Path(filepath.Join(t.TempDir(), "api.xml"))

	require.NoError(t, NewReportStore(fs).SaveXML(path, reportRecords()))

	content, err := fs.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "<?xml"))
	assert.Contains(t, string(content), `binseverity="ERROR"`)

	got, err := NewDifferenceSource(fs).Read(path)
	require.NoError(t, err)
	assert.Equal(t, reportRecords(), got)
}

type failingWriteFS struct {
	*LocalSourceFSAdapter
}

func (failingWriteFS) WriteFile(m.Path, []byte) error {
	return errors.New("disk full")
}

func TestLocalReportStore_WriteFailure(t *testing.T) {
	store := NewReportStore(failingWriteFS{NewLocalSourceFSAdapter()})

	err := store.SaveText("api.txt", reportRecords())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write text report api.txt: disk full")

	err = store.SaveXML("api.xml", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write xml report api.xml: disk full")
}
