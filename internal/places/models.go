package places

type StructuredFormatting struct {
	MainText      string `json:"main_text"`
	SecondaryText string `json:"secondary_text"`
}

type Prediction struct {
	PlaceID              string               `json:"place_id"`
	Description          string               `json:"description"`
	StructuredFormatting StructuredFormatting `json:"structured_formatting"`
}

// Result is the autocomplete answer. Valid is nil when validity is unknown.
type Result struct {
	Predictions []Prediction `json:"predictions"`
	Valid       *bool        `json:"valid"`
	Source      string       `json:"source"`
}

const (
	SourceMock   = "mock"
	SourceGoogle = "google"
)

func seed(id, main, secondary string) Prediction {
	return Prediction{
		PlaceID:     id,
		Description: main + ", " + secondary,
		StructuredFormatting: StructuredFormatting{
			MainText:      main,
			SecondaryText: secondary,
		},
	}
}

// campusPlaces is served when no Places API key is configured.
var campusPlaces = []Prediction{
	seed("1", "Suzzallo Library", "University of Washington"),
	seed("2", "McMahon Hall", "University of Washington"),
	seed("3", "Allen Library", "University of Washington"),
	seed("4", "The Ave", "University District, Seattle"),
	seed("5", "Red Square", "University of Washington"),
	seed("6", "Drumheller Fountain", "University of Washington"),
	seed("7", "Husky Stadium", "University of Washington"),
}
