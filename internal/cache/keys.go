package cache

const (
	KeyLeaderboard = "leaderboard"

	keyShapePrefix       = "shape:"
	KeyRouteShapePattern = keyShapePrefix + "*"
)

func KeyRouteShape(routeID string) string {
	return keyShapePrefix + routeID
}
