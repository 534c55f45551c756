package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const socrataBody = `[
 {"name":"Nob Hill","the_geom":{"type":"MultiPolygon","coordinates":[[[[-122.42,37.78],[-122.40,37.78],[-122.40,37.80],[-122.42,37.80],[-122.42,37.78]]]]}},
 {"name":"Broken","the_geom":{"type":"Point","coordinates":[-122.4,37.7]}},
 {"name":"Mission","the_geom":{"type":"Polygon","coordinates":[[[-122.43,37.74],[-122.40,37.74],[-122.40,37.77],[-122.43,37.77],[-122.43,37.74]]]}}
]`

func TestSocrataLoader_Load(t *testing.T) {
	var gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("$limit")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(socrataBody))
	}))
	defer srv.Close()

	set, err := NewSocrataLoader(srv.URL+"/resource/gfpk-269f.json", 2000, 2*time.Second, nil).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2000", gotLimit)
	assert.Equal(t, []string{"Nob Hill", "Mission"}, set.Names())

	name, ok := set.Resolve(Point{Lat: 37.75, Lng: -122.41})
	assert.True(t, ok)
	assert.Equal(t, "Mission", name)
}

func TestSocrataLoader_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewSocrataLoader(srv.URL, 10, time.Second, nil).Load(context.Background())
	assert.Error(t, err)
}

func TestParseGeoJSON(t *testing.T) {
	_, err := ParseGeoJSON(nil)
	assert.Error(t, err)

	_, err = ParseGeoJSON([]byte(`{"type":"Polygon","coordinates":[[[0,0],[1,1]]]}`))
	assert.Error(t, err)

	_, err = ParseGeoJSON([]byte(`{"type":"Point","coordinates":[-122.4,37.7]}`))
	assert.Error(t, err)

	polys, err := ParseGeoJSON([]byte(`{"type":"Polygon","coordinates":[[[0,0],[2,0],[2,2],[0,2],[0,0]]]}`))
	require.NoError(t, err)
	require.Len(t, polys, 1)
	assert.Equal(t, orb.Point{2, 0}, polys[0][0][1])

	polys, err = ParseGeoJSON([]byte(`{"type":"MultiPolygon","coordinates":[[[[0,0],[1,0],[1,1],[0,0]]],[[[5,5],[6,5],[6,6],[5,5]]]]}`))
	require.NoError(t, err)
	assert.Len(t, polys, 2)
}

func TestShapefileLoader_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "neighborhoods.shp")

	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{shp.StringField("NHOOD", 40)}))

	outer := []shp.Point{{X: -122.43, Y: 37.74}, {X: -122.43, Y: 37.77}, {X: -122.40, Y: 37.77}, {X: -122.40, Y: 37.74}, {X: -122.43, Y: 37.74}}
	hole := []shp.Point{{X: -122.42, Y: 37.75}, {X: -122.41, Y: 37.75}, {X: -122.41, Y: 37.76}, {X: -122.42, Y: 37.76}, {X: -122.42, Y: 37.75}}
	poly := shp.Polygon(*shp.NewPolyLine([][]shp.Point{outer, hole}))
	w.Write(&poly)
	require.NoError(t, w.WriteAttribute(0, 0, "Mission"))
	w.Close()

	// go-shp v0.1.1 writes the attribute table without the dot before "dbf".
	base := strings.TrimSuffix(path, ".shp")
	require.NoError(t, os.Rename(base+"dbf", base+".dbf"))

	set, err := NewShapefileLoader(path, "nhood", nil).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())

	name, ok := set.Resolve(Point{Lat: 37.745, Lng: -122.405})
	assert.True(t, ok)
	assert.Equal(t, "Mission", name)

	_, ok = set.Resolve(Point{Lat: 37.755, Lng: -122.415})
	assert.False(t, ok, "point inside the hole")

	_, err = NewShapefileLoader(path, "missing_field", nil).Load(context.Background())
	assert.Error(t, err)
}

func TestShapePolygons(t *testing.T) {
	cw := func(minX, minY, maxX, maxY float64) []shp.Point {
		return []shp.Point{{X: minX, Y: minY}, {X: minX, Y: maxY}, {X: maxX, Y: maxY}, {X: maxX, Y: minY}, {X: minX, Y: minY}}
	}
	ccw := func(minX, minY, maxX, maxY float64) []shp.Point {
		return []shp.Point{{X: minX, Y: minY}, {X: maxX, Y: minY}, {X: maxX, Y: maxY}, {X: minX, Y: maxY}, {X: minX, Y: minY}}
	}

	tests := []struct {
		name      string
		parts     [][]shp.Point
		wantPolys int
		wantRings []int
	}{
		{"single outer", [][]shp.Point{cw(0, 0, 1, 1)}, 1, []int{1}},
		{"outer with hole", [][]shp.Point{cw(0, 0, 4, 4), ccw(1, 1, 2, 2)}, 1, []int{2}},
		{"two islands", [][]shp.Point{cw(0, 0, 1, 1), cw(5, 5, 6, 6)}, 2, []int{1, 1}},
		{"degenerate part dropped", [][]shp.Point{cw(0, 0, 1, 1), {{X: 3, Y: 3}, {X: 4, Y: 4}}}, 1, []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			poly := shp.Polygon(*shp.NewPolyLine(tt.parts))
			got := shapePolygons(&poly)
			require.Len(t, got, tt.wantPolys)
			for i, n := range tt.wantRings {
				assert.Len(t, got[i], n)
			}
		})
	}
}
