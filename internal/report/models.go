package report

import "time"

type IssueType struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var IssueTypes = []IssueType{
	{ID: "lighting", Label: "Poor Lighting"},
	{ID: "crowd", Label: "Suspicious Activity"},
	{ID: "hazard", Label: "Physical Hazard"},
	{ID: "other", Label: "Other"},
}

// Form variants. Both screens require an issue type and a description.
const (
	VariantMobile = "mobile"
	VariantWeb    = "web"
)

type Report struct {
	ID          string    `json:"id"`
	IssueType   string    `json:"issueType"`
	Description string    `json:"description"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	UserID      *string   `json:"userId,omitempty"`
	Anonymous   bool      `json:"anonymous"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Form is the submitted report. Anonymous defaults to true when omitted.
type Form struct {
	IssueType   string   `json:"issueType"`
	Description string   `json:"description"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Anonymous   *bool    `json:"anonymous"`
	Variant     string   `json:"variant"`
}
