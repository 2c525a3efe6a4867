package report

import (
	"errors"
	"fmt"
	"strings"

	"citizenpulse/backend/internal/apperr"
	"citizenpulse/backend/internal/catalog"
	"citizenpulse/backend/internal/config"
	"citizenpulse/backend/internal/models"
	"citizenpulse/backend/internal/validation"

	"github.com/lib/pq"
)

// Draft is a report as submitted, before it is validated and numbered.
type Draft struct {
	ReportType    models.ReportType      `json:"report_type"`
	Category      string                 `json:"category"`
	Title         string                 `json:"title"`
	Description   string                 `json:"description"`
	AffectedAreas []string               `json:"affected_areas"`
	Priority      *models.ReportPriority `json:"priority"`
	IsAnonymous   bool                   `json:"is_anonymous"`
	ContactPhone  *string                `json:"contact_phone" validate:"omitempty,max=32"`
	ContactEmail  *string                `json:"contact_email" validate:"omitempty,email"`
	Latitude      *float64               `json:"latitude" validate:"omitempty,latitude"`
	Longitude     *float64               `json:"longitude" validate:"omitempty,longitude"`
}

// normalize trims free text, drops blank and repeated areas and turns blank optional fields into nil.
func (d Draft) normalize() Draft {
	d.Category = strings.TrimSpace(d.Category)
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)

	areas := make([]string, 0, len(d.AffectedAreas))
	seen := make(map[string]struct{}, len(d.AffectedAreas))
	for _, a := range d.AffectedAreas {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		areas = append(areas, a)
	}
	d.AffectedAreas = areas

	d.ContactPhone = blankToNil(d.ContactPhone)
	d.ContactEmail = blankToNil(d.ContactEmail)
	if d.Priority != nil && *d.Priority == "" {
		d.Priority = nil
	}
	return d
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// validate checks every field and reports all violations at once.
func (d Draft) validate(cat *catalog.Catalog) error {
	verr := &apperr.ValidationError{}

	if err := validation.Struct(d); err != nil {
		var tagged *apperr.ValidationError
		if !errors.As(err, &tagged) {
			return err
		}
		verr.Fields = append(verr.Fields, tagged.Fields...)
	}

	if !d.ReportType.Valid() {
		verr.Add("report_type", "must be one of: issue, compliment, suggestion, request")
	}
	if d.Category == "" {
		verr.Add("category", "is required")
	} else if !cat.IsCategory(d.Category) {
		verr.Add("category", "is not a known category")
	}
	validation.Length(verr, "title", d.Title, 1, config.TitleMaxLength)
	validation.Length(verr, "description", d.Description, 1, config.DescriptionMaxLength)

	if len(d.AffectedAreas) == 0 {
		verr.Add("affected_areas", "at least one area is required")
	}
	for _, a := range d.AffectedAreas {
		if len([]rune(a)) > config.AreaMaxLength {
			verr.Add("affected_areas", fmt.Sprintf("each area must be at most %d characters", config.AreaMaxLength))
			break
		}
	}

	if d.Priority != nil {
		switch {
		case !d.Priority.Valid():
			verr.Add("priority", "must be one of: low, medium, high, urgent")
		case d.ReportType != models.ReportTypeIssue:
			verr.Add("priority", "can only be set on issue reports")
		}
	}

	if (d.Latitude == nil) != (d.Longitude == nil) {
		verr.Add("location", "latitude and longitude must be set together")
	}

	return verr.OrNil()
}

// toReport builds the record to insert. Status and counters are never taken from input.
func (d Draft) toReport(userID *string, anonymous bool) *models.Report {
	return &models.Report{
		UserID:        userID,
		ReportType:    d.ReportType,
		Category:      d.Category,
		Title:         d.Title,
		Description:   d.Description,
		AffectedAreas: pq.StringArray(d.AffectedAreas),
		Priority:      d.Priority,
		Status:        models.StatusNew,
		IsAnonymous:   anonymous,
		ContactPhone:  d.ContactPhone,
		ContactEmail:  d.ContactEmail,
		Latitude:      d.Latitude,
		Longitude:     d.Longitude,
	}
}
