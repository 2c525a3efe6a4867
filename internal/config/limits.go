package config

import "time"

const (
	// Submission
	TitleMaxLength       = 200
	DescriptionMaxLength = 5000
	AreaMaxLength        = 200
	ContactPhoneMaxLen   = 32
	CommentMaxLength     = 5000

	// Identity
	UsernameMinLength = 3
	UsernameMaxLength = 50
	PasswordMinLength = 8

	// Listings
	FeedPageSize  = 50
	AdminPageSize = 20
	MaxPageSize   = 100

	// Views
	DefaultViewSessionTTL = 12 * time.Hour

	// Report numbers
	ReportNumberPrefix   = "CP-"
	ReportNumberSequence = "report_number_seq"
)
