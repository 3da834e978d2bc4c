package gtfs

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"buspulse/internal/domain"
)

// ParseResult is the reference data the engine needs from a schedule ZIP:
// route display names and route path geometry. Stops and timetables are not
// part of this service's surface.
type ParseResult struct {
	Routes      map[string]*domain.Route
	Shapes      map[string]*domain.Shape
	RouteShapes map[string][]string // route_id -> []shape_id
}

type Parser struct {
	logger *slog.Logger
}

func NewParser(logger *slog.Logger) *Parser {
	return &Parser{
		logger: logger.With("component", "gtfs_parser"),
	}
}

func (p *Parser) Parse(reader *zip.Reader) (*ParseResult, error) {
	totalStart := time.Now()
	p.logger.Info("starting GTFS parsing")

	result := &ParseResult{
		Routes:      make(map[string]*domain.Route),
		Shapes:      make(map[string]*domain.Shape),
		RouteShapes: make(map[string][]string),
	}

	fileMap := make(map[string]*zip.File)
	for _, file := range reader.File {
		fileMap[file.Name] = file
	}

	if file, ok := fileMap["routes.txt"]; ok {
		start := time.Now()
		if err := p.parseRoutes(file, result); err != nil {
			return nil, fmt.Errorf("parse routes: %w", err)
		}
		p.logger.Info("parsed routes.txt",
			"count", len(result.Routes),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	if file, ok := fileMap["shapes.txt"]; ok {
		start := time.Now()
		if err := p.parseShapes(file, result); err != nil {
			return nil, fmt.Errorf("parse shapes: %w", err)
		}
		totalPoints := 0
		for _, s := range result.Shapes {
			totalPoints += len(s.Points)
		}
		p.logger.Info("parsed shapes.txt",
			"shapes_count", len(result.Shapes),
			"total_points", totalPoints,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	if file, ok := fileMap["trips.txt"]; ok {
		start := time.Now()
		if err := p.parseTrips(file, result); err != nil {
			return nil, fmt.Errorf("parse trips: %w", err)
		}
		p.logger.Info("parsed trips.txt",
			"route_shapes_count", len(result.RouteShapes),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	p.logger.Info("GTFS parsing completed",
		"total_duration_ms", time.Since(totalStart).Milliseconds(),
		"routes", len(result.Routes),
		"shapes", len(result.Shapes),
	)

	return result, nil
}

func (p *Parser) parseRoutes(file *zip.File, result *ParseResult) error {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	r := csv.NewReader(rc)
	header, err := r.Read()
	if err != nil {
		return err
	}

	idx := makeIndex(header)

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		route := &domain.Route{
			ID:        getField(record, idx, "route_id"),
			ShortName: getField(record, idx, "route_short_name"),
			LongName:  getField(record, idx, "route_long_name"),
			Color:     getField(record, idx, "route_color"),
			TextColor: getField(record, idx, "route_text_color"),
		}
		if route.ID == "" {
			continue
		}

		result.Routes[route.ID] = route
	}

	return nil
}

func (p *Parser) parseShapes(file *zip.File, result *ParseResult) error {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	r := csv.NewReader(rc)
	header, err := r.Read()
	if err != nil {
		return err
	}

	idx := makeIndex(header)

	points := make(map[string][]domain.ShapePoint)

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		shapeID := getField(record, idx, "shape_id")
		if shapeID == "" {
			continue
		}

		lat, _ := strconv.ParseFloat(getField(record, idx, "shape_pt_lat"), 64)
		lon, _ := strconv.ParseFloat(getField(record, idx, "shape_pt_lon"), 64)
		seq, _ := strconv.Atoi(getField(record, idx, "shape_pt_sequence"))

		points[shapeID] = append(points[shapeID], domain.ShapePoint{
			Lat:      lat,
			Lon:      lon,
			Sequence: seq,
		})
	}

	for shapeID, pts := range points {
		sort.Slice(pts, func(i, j int) bool {
			return pts[i].Sequence < pts[j].Sequence
		})

		result.Shapes[shapeID] = &domain.Shape{
			ID:     shapeID,
			Points: pts,
		}
	}

	return nil
}

// parseTrips links routes to the shapes their trips follow. Each shape is
// recorded once per route, in first-seen order.
func (p *Parser) parseTrips(file *zip.File, result *ParseResult) error {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	r := csv.NewReader(rc)
	header, err := r.Read()
	if err != nil {
		return err
	}

	idx := makeIndex(header)

	seen := make(map[string]map[string]struct{})

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		routeID := getField(record, idx, "route_id")
		shapeID := getField(record, idx, "shape_id")
		if routeID == "" || shapeID == "" {
			continue
		}
		if _, ok := result.Shapes[shapeID]; !ok {
			continue
		}

		if seen[routeID] == nil {
			seen[routeID] = make(map[string]struct{})
		}
		if _, ok := seen[routeID][shapeID]; ok {
			continue
		}
		seen[routeID][shapeID] = struct{}{}

		result.RouteShapes[routeID] = append(result.RouteShapes[routeID], shapeID)
	}

	return nil
}

func makeIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	return idx
}

func getField(record []string, idx map[string]int, field string) string {
	if i, ok := idx[field]; ok && i < len(record) {
		return record[i]
	}
	return ""
}
