package domain

// Route represents a transit route from the static GTFS dataset
type Route struct {
	ID        string `json:"id"`
	ShortName string `json:"short_name"`
	LongName  string `json:"long_name"`
	Color     string `json:"color,omitempty"`
	TextColor string `json:"text_color,omitempty"`
}

// ShapePoint represents a single point in a route shape
type ShapePoint struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Sequence int     `json:"sequence"`
}

// Shape represents the geographic path of a route
type Shape struct {
	ID     string       `json:"id"`
	Points []ShapePoint `json:"points"`
}
