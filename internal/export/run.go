package export

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/pennlinc/fw-tabulate/internal/flywheel"
)

// Run executes one export: resolve the ambient Flywheel session, walk the
// project's subject/session/acquisition tree, flatten matching files into
// rows, and write the CSV. Any error is terminal.
func Run(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	tc := DefaultTabConfig()
	if cfg.TabConfigPath != "" {
		var err error
		tc, err = LoadTabConfig(cfg.TabConfigPath)
		if err != nil {
			return err
		}
	}

	cred, err := flywheel.ResolveCredential()
	if err != nil {
		return err
	}
	client := flywheel.NewClient(cred, cfg.RPS)

	project, err := client.LookupProject(ctx, cfg.Project)
	if err != nil {
		return err
	}
	log.Printf("[export] gathering metadata from Flywheel project %s", project.Label)

	rows, err := gather(ctx, client, project, cfg.MinDate, tc)
	if err != nil {
		return err
	}

	// Remote listing order is not stable; sort so identical inputs
	// produce byte-identical output.
	sort.Slice(rows, func(i, j int) bool { return rows[i].FileID < rows[j].FileID })

	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.Record(tc))
	}

	name := DerivedFilename(project.Label, time.Now())
	path, err := WriteCSV(cfg.OutputDir, name, Columns(tc), records)
	if err != nil {
		return err
	}

	log.Printf("[export] wrote %d rows to %s", len(rows), path)
	return nil
}

// gather walks every subject, session and acquisition in the project and
// flattens matching files. Acquisitions created before minDate are skipped;
// a zero minDate keeps everything.
func gather(ctx context.Context, client *flywheel.Client, project flywheel.Project, minDate time.Time, tc TabConfig) ([]Row, error) {
	subjects, err := client.Subjects(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	log.Printf("[export] project %s has %d subjects", project.Label, len(subjects))

	var rows []Row
	for _, sub := range subjects {
		sessions, err := client.Sessions(ctx, sub.ID)
		if err != nil {
			return nil, err
		}

		count := 0
		for _, ses := range sessions {
			acqs, err := client.Acquisitions(ctx, ses.ID)
			if err != nil {
				return nil, err
			}

			for _, acq := range acqs {
				if !minDate.IsZero() && acq.Created.Before(minDate) {
					continue
				}
				flat := FlattenAcquisition(sub, ses, acq, tc)
				rows = append(rows, flat...)
				count += len(flat)
			}
		}
		log.Printf("[export] subject %s: %d files", sub.Label, count)
	}
	return rows, nil
}
