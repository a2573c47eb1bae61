package report

import (
	"context"
	"strings"

	"backend-safewalk/internal/db"
	"backend-safewalk/internal/shared/apperr"
	"backend-safewalk/internal/shared/geo"

	"github.com/google/uuid"
)

const DefaultRadiusKm = 1.0

var ErrNotFound = apperr.NotFound("report not found")

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func KnownIssueType(id string) bool {
	for _, t := range IssueTypes {
		if t.ID == id {
			return true
		}
	}
	return false
}

func CanSubmit(form Form) bool {
	return form.IssueType != ""
}

func Validate(form Form, variant string) error {
	if variant != VariantMobile && variant != VariantWeb {
		return apperr.Invalid("Unknown form variant: " + variant)
	}
	if !CanSubmit(form) {
		return apperr.Invalid("Please select an issue type")
	}
	if !KnownIssueType(form.IssueType) {
		return apperr.Invalid("Unknown issue type: " + form.IssueType)
	}
	if strings.TrimSpace(form.Description) == "" {
		return apperr.Invalid("Please describe the issue")
	}
	if form.Lat == nil || form.Lng == nil {
		return apperr.Invalid("lat and lng required")
	}
	if err := (geo.Point{Lat: *form.Lat, Lng: *form.Lng}).Validate(); err != nil {
		return apperr.Invalid(err.Error())
	}
	return nil
}

// Submit validates and stores a report. userID is dropped for anonymous
// reports.
func (s *Service) Submit(ctx context.Context, form Form, userID string) (Report, error) {
	variant := form.Variant
	if variant == "" {
		variant = VariantMobile
	}
	if err := Validate(form, variant); err != nil {
		return Report{}, err
	}

	r := Report{
		ID:          uuid.NewString(),
		IssueType:   form.IssueType,
		Description: strings.TrimSpace(form.Description),
		Lat:         *form.Lat,
		Lng:         *form.Lng,
		Anonymous:   form.Anonymous == nil || *form.Anonymous,
	}
	if !r.Anonymous && userID != "" {
		r.UserID = &userID
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO safety_reports (id, issue_type, description, location, user_id, anonymous)
		VALUES ($1,$2,$3, ST_SetSRID(ST_MakePoint($4,$5), 4326)::geography, $6, $7)
		RETURNING created_at
	`, r.ID, r.IssueType, r.Description, r.Lng, r.Lat, r.UserID, r.Anonymous)
	if err := row.Scan(&r.CreatedAt); err != nil {
		return Report{}, apperr.Wrap("insert report", err)
	}
	return r, nil
}

func (s *Service) Get(ctx context.Context, id string) (Report, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Report{}, ErrNotFound
	}
	row := s.db.QueryRow(ctx, `
		SELECT id, issue_type, description, ST_Y(location::geometry), ST_X(location::geometry),
		       user_id, anonymous, created_at
		FROM safety_reports WHERE id=$1
	`, id)
	var r Report
	if err := row.Scan(&r.ID, &r.IssueType, &r.Description, &r.Lat, &r.Lng, &r.UserID, &r.Anonymous, &r.CreatedAt); err != nil {
		if db.IsNoRows(err) {
			return Report{}, ErrNotFound
		}
		return Report{}, apperr.Wrap("get report", err)
	}
	return r, nil
}

func (s *Service) Nearby(ctx context.Context, p geo.Point, radiusKm float64) ([]Report, error) {
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, issue_type, description, ST_Y(location::geometry), ST_X(location::geometry),
		       user_id, anonymous, created_at
		FROM safety_reports
		WHERE ST_DWithin(location, ST_SetSRID(ST_MakePoint($1,$2), 4326)::geography, $3)
		ORDER BY created_at DESC
	`, p.Lng, p.Lat, radiusKm*1000)
	if err != nil {
		return nil, apperr.Wrap("nearby reports", err)
	}
	defer rows.Close()

	results := []Report{}
	for rows.Next() {
		var r Report
		if err := rows.Scan(&r.ID, &r.IssueType, &r.Description, &r.Lat, &r.Lng, &r.UserID, &r.Anonymous, &r.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
