package gtfs

import (
	"archive/zip"
	"bytes"
	"io"
	"log/slog"
	"testing"
)

func buildZip(t *testing.T, files map[string]string) *zip.Reader {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	r, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	return r
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParse(t *testing.T) {
	reader := buildZip(t, map[string]string{
		"routes.txt": "route_id,route_short_name,route_long_name,route_color\n" +
			"520,7,Bathurst,FF0000\n" +
			"521,41,Keele,00FF00\n",
		"shapes.txt": "shape_id,shape_pt_lat,shape_pt_lon,shape_pt_sequence\n" +
			"sh1,43.60,-79.40,2\n" +
			"sh1,43.61,-79.41,1\n" +
			"sh2,43.70,-79.50,1\n",
		"trips.txt": "route_id,service_id,trip_id,shape_id\n" +
			"520,weekday,t1,sh1\n" +
			"520,weekday,t2,sh1\n" +
			"521,weekday,t3,sh2\n" +
			"521,weekday,t4,missing\n",
	})

	result, err := NewParser(testLogger()).Parse(reader)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if len(result.Routes) != 2 {
		t.Errorf("routes = %d, want 2", len(result.Routes))
	}
	if got := result.Routes["520"].ShortName; got != "7" {
		t.Errorf("route 520 short name = %q, want 7", got)
	}

	// Shape points sorted by sequence despite file order.
	sh1 := result.Shapes["sh1"]
	if sh1 == nil || len(sh1.Points) != 2 {
		t.Fatalf("shape sh1 missing or wrong size")
	}
	if sh1.Points[0].Sequence != 1 || sh1.Points[1].Sequence != 2 {
		t.Error("shape points not sorted by sequence")
	}

	// Duplicate trips collapse; unknown shape ids dropped.
	if got := result.RouteShapes["520"]; len(got) != 1 || got[0] != "sh1" {
		t.Errorf("route 520 shapes = %v, want [sh1]", got)
	}
	if got := result.RouteShapes["521"]; len(got) != 1 || got[0] != "sh2" {
		t.Errorf("route 521 shapes = %v, want [sh2]", got)
	}
}

func TestParseEmptyArchive(t *testing.T) {
	reader := buildZip(t, map[string]string{})

	result, err := NewParser(testLogger()).Parse(reader)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(result.Routes) != 0 || len(result.Shapes) != 0 {
		t.Error("expected empty result for empty archive")
	}
}

func TestParseCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()

	reader := buildZip(t, map[string]string{
		"routes.txt": "route_id,route_short_name,route_long_name\n520,7,Bathurst\n",
	})
	result, err := NewParser(testLogger()).Parse(reader)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	fingerprint := DataFingerprint([]byte("zip-bytes"))
	if _, err := SaveParsedResult(dir, fingerprint, result); err != nil {
		t.Fatalf("SaveParsedResult() error: %v", err)
	}

	loaded, _, err := LoadParsedResult(dir, fingerprint)
	if err != nil {
		t.Fatalf("LoadParsedResult() error: %v", err)
	}
	if loaded.Routes["520"] == nil || loaded.Routes["520"].ShortName != "7" {
		t.Error("cached result does not round-trip")
	}

	if _, _, err := LoadParsedResult(dir, DataFingerprint([]byte("other"))); err == nil {
		t.Error("expected a miss for an unknown fingerprint")
	}
}
