package sheets

import (
	"context"

	"worklens/internal/core"
)

// Ports for outbound adapters.
type (
	RecordWriter interface {
		Append(ctx context.Context, r core.TimesheetRecord) (id string, err error)
	}

	// RecordSource returns the full record set for analytics; period
	// filtering happens in core, not at the source.
	RecordSource interface {
		ListRecords(ctx context.Context) ([]core.TimesheetRecord, error)
	}

	// RecordEditor applies the detail-dialog edit semantics: the row to
	// change is identified by its original field values and replaced
	// wholesale.
	RecordEditor interface {
		ReplaceRecord(ctx context.Context, original, updated core.TimesheetRecord) error
	}

	RecordDeleter interface {
		DeleteRecords(ctx context.Context, ids []string) (int, error)
	}

	// TaxonomyReader lists the distinct deal and work categories present
	// in the data, in canonical display form.
	TaxonomyReader interface {
		ListCategories(ctx context.Context) (dealCategories []string, workCategories []string, err error)
	}
)
