package pipeline

import "time"

// Default values for normalization and summaries.
// These can be overridden via configuration (see internal/config).
const (
	// UnknownDescription replaces missing descriptions.
	UnknownDescription = "Unknown"

	// DefaultTopMerchants is the merchant ranking length used when none is given.
	DefaultTopMerchants = 10

	// DefaultTopCustomers is the customer ranking length used when none is given.
	DefaultTopCustomers = 15
)

// DefaultDateLayouts are tried in order by the tolerant date parser.
// Month and day may be unpadded. Slash dates are read month-first.
var DefaultDateLayouts = []string{
	"2006-1-2",
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	"2006-1-2T15:04:05",
	time.RFC3339,
	"2006/1/2",
	"1/2/2006",
	"1/2/06",
	"02-Jan-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"20060102",
}
