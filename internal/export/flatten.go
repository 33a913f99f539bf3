package export

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pennlinc/fw-tabulate/internal/flywheel"
)

// baseColumns are always present, in this order. Extra info-key columns from
// the tabulation config follow them.
var baseColumns = []string{
	"FlywheelFileId",
	"SubjectId",
	"SessionId",
	"AcqLabel",
	"Filename",
	"SeriesNumber",
	"Timestamp",
}

// Row is one CSV row: a file's identity plus the copied-down metadata of its
// parent acquisition, session and subject.
type Row struct {
	FileID       string
	SubjectLabel string
	SessionLabel string
	AcqLabel     string
	Filename     string
	SeriesNumber string
	Timestamp    string

	// Extra holds the configured file-info fields, keyed by column name.
	// Absent fields are simply missing from the map.
	Extra map[string]string
}

// Columns returns the full header for a run: base columns plus one column per
// configured info key. The set is fixed before any row is produced.
func Columns(tc TabConfig) []string {
	cols := make([]string, 0, len(baseColumns)+len(tc.InfoKeys))
	cols = append(cols, baseColumns...)
	cols = append(cols, tc.InfoKeys...)
	return cols
}

// Record serializes the row against the run's column set. Missing extra
// fields become empty cells, never omitted columns.
func (r Row) Record(tc TabConfig) []string {
	rec := []string{
		r.FileID,
		r.SubjectLabel,
		r.SessionLabel,
		r.AcqLabel,
		r.Filename,
		r.SeriesNumber,
		r.Timestamp,
	}
	for _, key := range tc.InfoKeys {
		rec = append(rec, r.Extra[key])
	}
	return rec
}

// FlattenAcquisition produces one row per matching file in the acquisition.
func FlattenAcquisition(sub flywheel.Subject, ses flywheel.Session, acq flywheel.Acquisition, tc TabConfig) []Row {
	var rows []Row
	for _, f := range acq.Files {
		if !matchesType(f.Type, tc.FileTypes) {
			continue
		}

		row := Row{
			FileID:       f.ID,
			SubjectLabel: sub.Label,
			SessionLabel: ses.Label,
			AcqLabel:     acq.Label,
			Filename:     f.Name,
			SeriesNumber: infoString(f.Info["SeriesNumber"]),
			Timestamp:    fileTimestamp(f, acq),
		}

		if len(tc.InfoKeys) > 0 {
			row.Extra = make(map[string]string, len(tc.InfoKeys))
			for _, key := range tc.InfoKeys {
				if v, ok := f.Info[key]; ok {
					row.Extra[key] = infoString(v)
				}
			}
		}

		rows = append(rows, row)
	}
	return rows
}

// fileTimestamp resolves a file's timestamp: the DICOM AcquisitionDateTime
// field when present, else AcquisitionDate, else the acquisition's upload
// time, else empty.
func fileTimestamp(f flywheel.File, acq flywheel.Acquisition) string {
	if v, ok := f.Info["AcquisitionDateTime"]; ok {
		return infoString(v)
	}
	if v, ok := f.Info["AcquisitionDate"]; ok {
		return infoString(v)
	}
	if !acq.Created.IsZero() {
		return acq.Created.UTC().Format(time.RFC3339)
	}
	return ""
}

func matchesType(fileType string, allowed []string) bool {
	for _, t := range allowed {
		if fileType == t {
			return true
		}
	}
	return false
}

// infoString renders a decoded JSON info value as a CSV cell. Whole-number
// floats print without a fractional part, so SeriesNumber 16 stays "16".
func infoString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
