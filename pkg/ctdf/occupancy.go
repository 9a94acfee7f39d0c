package ctdf

type OccupancyStatus string

const (
	OccupancyStatusAlmostFull OccupancyStatus = "ALMOST_FULL"
	OccupancyStatusNormal     OccupancyStatus = "NORMAL"
	OccupancyStatusPlenty     OccupancyStatus = "PLENTY"
	OccupancyStatusError      OccupancyStatus = "ERROR"
)

func (s OccupancyStatus) Description() string {
	switch s {
	case OccupancyStatusAlmostFull:
		return "Bus is almost full"
	case OccupancyStatusPlenty:
		return "Bus has plenty of seats"
	case OccupancyStatusNormal:
		return "Normal occupancy"
	default:
		return "Error"
	}
}

type OccupancyResult struct {
	EmptySeats int             `json:"empty_seats"`
	Status     OccupancyStatus `json:"status"`
	ImageURL   *string         `json:"image_url"`
	Error      *string         `json:"error"`
}

func (r OccupancyResult) Failed() bool {
	return r.Error != nil
}
