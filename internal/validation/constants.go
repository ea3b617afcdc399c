package validation

import "regexp"

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^(\+9665|05)[0-9]{8}$`)

	// Saudi national/iqama IDs: ten digits starting with 1 or 2.
	nationalIDRegex = regexp.MustCompile(`^[12][0-9]{9}$`)
)

const (
	// Password requirements
	MinPasswordLength = 8
	MaxPasswordLength = 72

	// String lengths
	MaxReasonLength = 500
	MaxNotesLength  = 1000
	MaxItemsPerSale = 100
)
