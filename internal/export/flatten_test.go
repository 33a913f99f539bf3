package export_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/pennlinc/fw-tabulate/internal/export"
	"github.com/pennlinc/fw-tabulate/internal/flywheel"
)

func testAcquisition() flywheel.Acquisition {
	return flywheel.Acquisition{
		ID:      "acq1",
		Label:   "T1w_MPR",
		Created: time.Date(2020, 11, 3, 9, 15, 0, 0, time.UTC),
		Files: []flywheel.File{
			{
				ID:   "file-a",
				Name: "t1.nii.gz",
				Type: "nifti",
				Info: map[string]any{
					"AcquisitionDateTime": "2020-11-03T09:20:11+00:00",
					"SeriesNumber":        float64(4),
				},
			},
			{ID: "file-b", Name: "t1.dicom.zip", Type: "dicom"},
			{ID: "file-c", Name: "t1_run2.nii.gz", Type: "nifti"},
		},
	}
}

// TestFlattenAcquisition_OneRowPerMatchingFile verifies that only files of a
// configured type produce rows and that parent metadata is copied down.
func TestFlattenAcquisition_OneRowPerMatchingFile(t *testing.T) {
	sub := flywheel.Subject{ID: "s1", Label: "sub-001"}
	ses := flywheel.Session{ID: "x1", Label: "ses-01"}

	rows := export.FlattenAcquisition(sub, ses, testAcquisition(), export.DefaultTabConfig())
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows (nifti only), got %d", len(rows))
	}

	first := rows[0]
	if first.FileID != "file-a" || first.Filename != "t1.nii.gz" {
		t.Errorf("unexpected file identity: %+v", first)
	}
	if first.SubjectLabel != "sub-001" || first.SessionLabel != "ses-01" || first.AcqLabel != "T1w_MPR" {
		t.Errorf("parent metadata not copied down: %+v", first)
	}
	if first.SeriesNumber != "4" {
		t.Errorf("expected SeriesNumber 4, got %q", first.SeriesNumber)
	}
}

// TestFlatten_TimestampFallback checks the resolution order: file
// AcquisitionDateTime, then AcquisitionDate, then acquisition created time,
// then empty.
func TestFlatten_TimestampFallback(t *testing.T) {
	sub := flywheel.Subject{Label: "sub-001"}
	ses := flywheel.Session{Label: "ses-01"}
	tc := export.DefaultTabConfig()

	cases := []struct {
		name    string
		info    map[string]any
		created time.Time
		want    string
	}{
		{
			name:    "datetime field wins",
			info:    map[string]any{"AcquisitionDateTime": "2020-11-03T09:20:11+00:00", "AcquisitionDate": "2020-11-03"},
			created: time.Date(2020, 11, 3, 9, 15, 0, 0, time.UTC),
			want:    "2020-11-03T09:20:11+00:00",
		},
		{
			name:    "date field second",
			info:    map[string]any{"AcquisitionDate": "2020-11-03"},
			created: time.Date(2020, 11, 3, 9, 15, 0, 0, time.UTC),
			want:    "2020-11-03",
		},
		{
			name:    "acquisition created third",
			info:    nil,
			created: time.Date(2020, 11, 3, 9, 15, 0, 0, time.UTC),
			want:    "2020-11-03T09:15:00Z",
		},
		{
			name: "empty when nothing known",
			info: nil,
			want: "",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			acq := flywheel.Acquisition{
				Label:   "T1w",
				Created: c.created,
				Files:   []flywheel.File{{ID: "f", Name: "f.nii.gz", Type: "nifti", Info: c.info}},
			}
			rows := export.FlattenAcquisition(sub, ses, acq, tc)
			if len(rows) != 1 {
				t.Fatalf("expected 1 row, got %d", len(rows))
			}
			if rows[0].Timestamp != c.want {
				t.Errorf("expected timestamp %q, got %q", c.want, rows[0].Timestamp)
			}
		})
	}
}

// TestRecord_ExtraInfoColumns verifies that configured info keys become fixed
// columns with empty cells for missing values.
func TestRecord_ExtraInfoColumns(t *testing.T) {
	tc := export.TabConfig{
		FileTypes: []string{"nifti"},
		InfoKeys:  []string{"RepetitionTime", "EchoTime"},
	}

	acq := flywheel.Acquisition{
		Label: "bold",
		Files: []flywheel.File{{
			ID:   "f",
			Name: "bold.nii.gz",
			Type: "nifti",
			Info: map[string]any{"RepetitionTime": float64(2.5)},
		}},
	}

	rows := export.FlattenAcquisition(flywheel.Subject{}, flywheel.Session{}, acq, tc)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}

	cols := export.Columns(tc)
	rec := rows[0].Record(tc)
	if len(rec) != len(cols) {
		t.Fatalf("record has %d cells for %d columns", len(rec), len(cols))
	}

	byName := map[string]string{}
	for i, col := range cols {
		byName[col] = rec[i]
	}
	if byName["RepetitionTime"] != "2.5" {
		t.Errorf("expected RepetitionTime 2.5, got %q", byName["RepetitionTime"])
	}
	if byName["EchoTime"] != "" {
		t.Errorf("expected empty EchoTime cell, got %q", byName["EchoTime"])
	}
}

func TestColumns_BaseSet(t *testing.T) {
	want := []string{
		"FlywheelFileId", "SubjectId", "SessionId", "AcqLabel",
		"Filename", "SeriesNumber", "Timestamp",
	}
	got := export.Columns(export.DefaultTabConfig())
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Columns() = %v, want %v", got, want)
	}
}
