package flywheel

import "time"

// Project is a named container of imaging sessions on Flywheel.
type Project struct {
	ID      string    `json:"_id"`
	Label   string    `json:"label"`
	Group   string    `json:"group"`
	Created time.Time `json:"created"`
}

// Subject is one study participant within a project.
type Subject struct {
	ID    string `json:"_id"`
	Label string `json:"label"`
}

// Session is one scanning visit belonging to a subject.
type Session struct {
	ID    string `json:"_id"`
	Label string `json:"label"`
}

// Acquisition is one scan event within a session. Files hold the
// imaging data produced by the scan.
type Acquisition struct {
	ID      string    `json:"_id"`
	Label   string    `json:"label"`
	Created time.Time `json:"created"`
	Files   []File    `json:"files"`
}

// File is a single file attached to an acquisition. Info carries the
// DICOM-derived metadata fields; not every field is present on every file.
type File struct {
	ID   string         `json:"file_id"`
	Name string         `json:"name"`
	Type string         `json:"type"`
	Info map[string]any `json:"info"`
}
