package ctdf

import "time"

type Notification struct {
	Type NotificationType

	Title   string
	Message string

	BusID     string
	Timestamp time.Time
}

type NotificationType string

const (
	NotificationTypeLocationUpdated NotificationType = "LocationUpdated"
	NotificationTypeBusSearch       NotificationType = "BusSearch"
)
