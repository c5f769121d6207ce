package reporting

import "github.com/pkg/errors"

var (
	// ErrDraftNotFound is returned when an upload or edit targets a period
	// without a seeded draft. Uploads never create reports implicitly.
	ErrDraftNotFound = errors.New("no draft exists for this customer and period")

	ErrReportNotFound   = errors.New("report not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrCustomerInactive = errors.New("customer is inactive")
	ErrEmptyUpload      = errors.New("upload produced no recognizable tables")
)
