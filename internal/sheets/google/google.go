package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"worklens/internal/core"
	ports "worklens/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client reads timesheet rows from a Google Sheets workbook. The sheet is
// an import source only; edits and deletes happen against local storage.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	recordsSheet  string
}

// Ensure interface conformance
var (
	_ ports.RecordSource   = (*Client)(nil)
	_ ports.TaxonomyReader = (*Client)(nil)
)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID. Optional: GOOGLE_SHEET_NAME (default
// "Timesheet"). Credentials come from GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Timesheet"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		recordsSheet:  sheetName,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// SourcePath identifies rows imported from this sheet in local storage.
func (c *Client) SourcePath() string {
	return c.recordsSheet
}

// ListRecords fetches and parses the whole records sheet. Unformatted
// values keep date cells as serials, which core.ParseMonth understands.
func (c *Client) ListRecords(ctx context.Context) ([]core.TimesheetRecord, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.recordsSheet).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", c.recordsSheet, err)
	}

	records, skipped := parseRecords(resp.Values, c.recordsSheet)
	if skipped > 0 {
		slog.InfoContext(ctx, "Skipped unusable timesheet rows",
			"sheet", c.recordsSheet, "skipped", skipped, "parsed", len(records))
	}
	return records, nil
}

// ListCategories derives the category taxonomy from the sheet contents.
func (c *Client) ListCategories(ctx context.Context) ([]string, []string, error) {
	records, err := c.ListRecords(ctx)
	if err != nil {
		return nil, nil, err
	}
	return distinctLabels(records, func(r core.TimesheetRecord) string { return r.DealCategory }),
		distinctLabels(records, func(r core.TimesheetRecord) string { return r.WorkCategory }),
		nil
}

func distinctLabels(records []core.TimesheetRecord, field func(core.TimesheetRecord) string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, r := range records {
		raw := field(r)
		key := core.Key(raw)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, core.Display(raw))
	}
	return out
}
