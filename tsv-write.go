package main

import (
	"bytes"
	"encoding/csv"
	"path"
)

const manifestPrefix = "provisioning"

func NewTSVWriter(buf *bytes.Buffer) *csv.Writer {
	w := csv.NewWriter(buf)
	w.Comma = '\t'
	return w
}

// manifestKey is where the manifest for a run lands in the Athena bucket.
func manifestKey(s Summary) string {
	return path.Join(manifestPrefix, s.Date+"-"+s.Buckets.Primary+".tsv")
}

// WriteManifest renders s as resource/name rows.
func WriteManifest(s Summary) (*bytes.Buffer, error) {

	buf := new(bytes.Buffer)
	w := NewTSVWriter(buf)

	for _, row := range summaryRows(s) {
		if err := w.Write(row[:]); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf, nil
}
