package ctdf

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/travigo/bustracker/pkg/util"
	"gopkg.in/yaml.v3"
)

//go:embed routes.yaml
var defaultRoutesFile []byte

const ScheduleTimeFormat = "15:04"

type Coordinates struct {
	Latitude  float64 `json:"lat" yaml:"lat" groups:"basic"`
	Longitude float64 `json:"lng" yaml:"lng" groups:"basic"`
}

type RouteStop struct {
	Name      string  `json:"name" yaml:"name" groups:"basic"`
	Latitude  float64 `json:"lat" yaml:"lat" groups:"basic"`
	Longitude float64 `json:"lng" yaml:"lng" groups:"basic"`
}

type RouteDefinition struct {
	PrimaryIdentifier string `json:"bus_number" yaml:"id" groups:"basic"`

	From string `json:"from" yaml:"from" groups:"basic"`
	To   string `json:"to" yaml:"to" groups:"basic"`

	FromCoords Coordinates `json:"from_coords" yaml:"from_coords" groups:"basic"`
	ToCoords   Coordinates `json:"to_coords" yaml:"to_coords" groups:"basic"`

	Stops    []RouteStop `json:"stops" yaml:"stops" groups:"detailed"`
	Schedule []string    `json:"schedule" yaml:"schedule" groups:"detailed"`

	ImageRef         string `json:"image_ref" yaml:"image" groups:"internal"`
	DetectedImageRef string `json:"detected_image_ref" yaml:"detected_image" groups:"internal"`
}

// ScheduledDepartures returns the schedule entries on the given day. Entries
// that are not valid HH:MM times are skipped.
func (r *RouteDefinition) ScheduledDepartures(day time.Time) []time.Time {
	departures := []time.Time{}

	for _, entry := range r.Schedule {
		parsed, err := time.Parse(ScheduleTimeFormat, entry)
		if err != nil {
			continue
		}

		departures = append(departures, util.AddTimeToDate(day, parsed))
	}

	return departures
}

// RouteTable is the fixed set of known bus lines in definition order
type RouteTable struct {
	Routes []*RouteDefinition

	index map[string]*RouteDefinition
}

func NewRouteTable(routes []*RouteDefinition) (*RouteTable, error) {
	table := &RouteTable{
		Routes: routes,
		index:  map[string]*RouteDefinition{},
	}

	for _, route := range routes {
		if route.PrimaryIdentifier == "" {
			return nil, errors.New("route is missing an id")
		}

		key := strings.ToUpper(route.PrimaryIdentifier)
		if _, exists := table.index[key]; exists {
			return nil, fmt.Errorf("duplicate route id %s", route.PrimaryIdentifier)
		}
		table.index[key] = route
	}

	return table, nil
}

// Get looks up a route by id, ignoring case
func (t *RouteTable) Get(identifier string) *RouteDefinition {
	return t.index[strings.ToUpper(identifier)]
}

func (t *RouteTable) Len() int {
	return len(t.Routes)
}

// Map returns the routes keyed by their id
func (t *RouteTable) Map() map[string]*RouteDefinition {
	routes := make(map[string]*RouteDefinition, len(t.Routes))
	for _, route := range t.Routes {
		routes[route.PrimaryIdentifier] = route
	}

	return routes
}

type routesFile struct {
	Routes []*RouteDefinition `yaml:"routes"`
}

func ParseRouteTable(data []byte) (*RouteTable, error) {
	var file routesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse routes: %w", err)
	}

	return NewRouteTable(file.Routes)
}

// LoadRouteTable reads the route table from path, or the built in table when
// path is empty
func LoadRouteTable(path string) (*RouteTable, error) {
	if path == "" {
		return ParseRouteTable(defaultRoutesFile)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return ParseRouteTable(data)
}
