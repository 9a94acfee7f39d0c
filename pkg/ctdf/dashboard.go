package ctdf

type TrafficStatus string

const (
	TrafficStatusSmooth   TrafficStatus = "SMOOTH"
	TrafficStatusModerate TrafficStatus = "MODERATE"
	TrafficStatusHeavy    TrafficStatus = "HEAVY"
)

type RouteCount struct {
	RouteKey string `json:"route_key"`
	Count    int    `json:"count"`
}

type HourActivity struct {
	Hour          string `json:"hour"`
	ActivityCount int    `json:"activity_count"`
}

type DashboardMetrics struct {
	TotalRoutes         int            `json:"total_routes"`
	BusiestRoutes       []RouteCount   `json:"busiest_routes"`
	PeakHours           []HourActivity `json:"peak_hours"`
	AverageSpeedKmph    float64        `json:"average_speed_kmph"`
	AverageDelayMinutes float64        `json:"average_delay_minutes"`
	TrafficStatus       TrafficStatus  `json:"traffic_status"`
}
