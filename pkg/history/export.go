package history

import (
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/travigo/bustracker/pkg/ctdf"
)

type searchEventRow struct {
	Timestamp     string `csv:"timestamp"`
	From          string `csv:"from"`
	To            string `csv:"to"`
	RouteKey      string `csv:"route_key"`
	MatchedBusIDs string `csv:"matched_bus_ids"`
	MatchedCount  int    `csv:"matched_count"`
}

// WriteSearchCSV writes the events as CSV with a header row. Matched bus ids
// are joined with semicolons.
func WriteSearchCSV(w io.Writer, events []ctdf.SearchEvent) error {
	rows := make([]*searchEventRow, 0, len(events))
	for i := range events {
		event := &events[i]

		rows = append(rows, &searchEventRow{
			Timestamp:     event.Timestamp,
			From:          event.From,
			To:            event.To,
			RouteKey:      event.RouteKey(),
			MatchedBusIDs: strings.Join(event.MatchedBusIDs, ";"),
			MatchedCount:  len(event.MatchedBusIDs),
		})
	}

	return gocsv.Marshal(rows, w)
}
