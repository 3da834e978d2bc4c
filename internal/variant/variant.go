// Package variant maps a route plus an optional feed-provided direction
// signal to the aggregation bucket used by the leaderboard and live view.
package variant

// Direction suffixes. U marks a report with no feed-provided direction.
const (
	SuffixNorth       = "N"
	SuffixSouth       = "S"
	SuffixUnspecified = "U"
)

// Variant is one aggregation bucket. Two variants sharing a route ID but
// differing in suffix are never averaged together.
type Variant struct {
	Key     string
	Suffix  string
	Display string
}

// Classify derives the variant from the feed's direction signal only.
// Computed or estimated bearings must never reach this decision: an earlier
// revision of the system inferred direction from bearing and produced
// unreliable guessed labels.
func Classify(routeID, shortName string, directionID *uint32) Variant {
	base := shortName
	if base == "" {
		base = routeID
	}

	suffix := SuffixUnspecified
	display := base
	if directionID != nil {
		switch *directionID {
		case 0:
			suffix = SuffixNorth
			display = base + SuffixNorth
		case 1:
			suffix = SuffixSouth
			display = base + SuffixSouth
		}
	}

	return Variant{
		Key:     routeID + ":" + suffix,
		Suffix:  suffix,
		Display: display,
	}
}
