// Package gtfsrt fetches and decodes a GTFS-Realtime VehiclePositions feed
// into raw per-vehicle reports.
package gtfsrt

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"buspulse/internal/domain"
)

type Client struct {
	url        string
	httpClient *http.Client
}

func New(url string) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Feed is one decoded poll of the upstream feed.
type Feed struct {
	HeaderTime *time.Time
	Reports    []*domain.RawReport
	// Dropped counts entities discarded for missing route or coordinates.
	Dropped int
}

// Fetch downloads and decodes the current feed contents. Entities without a
// route identifier or position are dropped here and never reach the
// resolver; everything else is passed through with absent fields kept nil.
func (c *Client) Fetch(ctx context.Context) (*Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var msg gtfs.FeedMessage
	if err := proto.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("decoding feed: %w", err)
	}

	return c.toFeed(&msg), nil
}

func (c *Client) toFeed(msg *gtfs.FeedMessage) *Feed {
	feed := &Feed{}

	if h := msg.GetHeader(); h != nil && h.Timestamp != nil {
		t := time.Unix(int64(h.GetTimestamp()), 0)
		feed.HeaderTime = &t
	}

	for _, entity := range msg.GetEntity() {
		vp := entity.GetVehicle()
		if vp == nil {
			continue
		}

		routeID := vp.GetTrip().GetRouteId()
		pos := vp.GetPosition()
		if routeID == "" || pos == nil || pos.Latitude == nil || pos.Longitude == nil {
			feed.Dropped++
			continue
		}

		vehicleID := vp.GetVehicle().GetId()
		if vehicleID == "" {
			vehicleID = entity.GetId()
		}
		if vehicleID == "" {
			feed.Dropped++
			continue
		}

		rep := &domain.RawReport{
			RouteID:   routeID,
			VehicleID: vehicleID,
			Label:     vp.GetVehicle().GetLabel(),
			Lat:       float64(pos.GetLatitude()),
			Lon:       float64(pos.GetLongitude()),
		}

		if trip := vp.GetTrip(); trip != nil && trip.DirectionId != nil {
			dir := trip.GetDirectionId()
			rep.DirectionID = &dir
		}
		if pos.Speed != nil {
			speed := float64(pos.GetSpeed())
			rep.SpeedMps = &speed
		}
		if pos.Bearing != nil {
			bearing := float64(pos.GetBearing())
			rep.BearingDeg = &bearing
		}
		if vp.Timestamp != nil {
			ts := int64(vp.GetTimestamp())
			rep.Timestamp = &ts
		}

		feed.Reports = append(feed.Reports, rep)
	}

	return feed
}
