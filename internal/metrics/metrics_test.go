package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder()

	r.File(FileProcessed)
	r.File(FileProcessed)
	r.File(FileFailed)
	r.Field(FieldAccepted)
	r.Field(FieldRejected)
	r.Field(FieldRejected)
	r.Field(FieldInvalid)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.files.WithLabelValues(FileProcessed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.files.WithLabelValues(FileFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fields.WithLabelValues(FieldAccepted)))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.fields.WithLabelValues(FieldRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fields.WithLabelValues(FieldInvalid)))
}

func TestRecorderRecognition(t *testing.T) {
	r := NewRecorder()
	r.Recognition("clova", 300*time.Millisecond, nil)
	r.Recognition("clova", time.Second, errors.New("boom"))

	assert.Equal(t, 2, testutil.CollectAndCount(r.recognitionSeconds))
}

func TestSeparateRegistries(t *testing.T) {
	a := NewRecorder()
	b := NewRecorder()
	a.File(FileProcessed)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.files.WithLabelValues(FileProcessed)))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.files.WithLabelValues(FileProcessed)))
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.File(FileProcessed)
	r.Field(FieldAccepted)

	path := filepath.Join(t.TempDir(), "run.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.True(t, strings.Contains(out, `clovaocr2tds_files_total{status="processed"} 1`), out)
	assert.True(t, strings.Contains(out, `clovaocr2tds_fields_total{outcome="accepted"} 1`), out)
}
