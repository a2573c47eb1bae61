package contact

import "time"

const StatusWatching = "watching"

type Contact struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	Channel   string    `json:"channel"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
}

// Companion is a contact as shown on the active walk screen.
type Companion struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Avatar string `json:"avatar"`
}

func DemoCompanions() []Companion {
	return []Companion{
		{Name: "Mom", Status: StatusWatching, Avatar: "👩"},
		{Name: "Sarah", Status: StatusWatching, Avatar: "👱‍♀️"},
	}
}
