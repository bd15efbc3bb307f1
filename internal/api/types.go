package api

import (
	"time"

	"turnstile/internal/broadcast"
	"turnstile/internal/queue"
)

// StationStatus describes one station's queue in a transport-friendly format.
type StationStatus struct {
	Station              string   `json:"station"`
	Current              *string  `json:"current"`
	Waiting              []string `json:"waiting"`
	EstimatedWaitMinutes int      `json:"estimatedWaitMinutes"`
}

// StatusResponse reports every station plus the global counters.
type StatusResponse struct {
	Stations     []StationStatus `json:"stations"`
	Announcement string          `json:"announcement"`
	TotalServed  int             `json:"totalServed"`
}

// TicketResponse carries an issued ticket number.
type TicketResponse struct {
	Number string `json:"number"`
}

// CallResponse carries the result of a call-next operation. Current is null
// when no ticket was waiting.
type CallResponse struct {
	Current *string `json:"current"`
}

// RecallResponse carries the re-announced ticket number.
type RecallResponse struct {
	LastNumber string `json:"lastNumber"`
}

// AnnouncementResponse carries the current announcement text.
type AnnouncementResponse struct {
	Announcement string `json:"announcement"`
}

// ExportRow is one waiting ticket in the export listing.
type ExportRow struct {
	Service string `json:"service"`
	Number  string `json:"number"`
}

// Event is one broadcast line with its stream position.
type Event struct {
	Sequence  uint64 `json:"seq"`
	Timestamp string `json:"ts"`
	Text      string `json:"text"`
}

// EventsResponse carries a batch of broadcast events plus the cursor for the
// next fetch.
type EventsResponse struct {
	Events []Event `json:"events"`
	Next   uint64  `json:"next"`
}

// FromStationStatuses converts engine station views into DTOs.
func FromStationStatuses(statuses []queue.StationStatus) []StationStatus {
	out := make([]StationStatus, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, StationStatus{
			Station:              status.Station,
			Current:              status.Current,
			Waiting:              append([]string(nil), status.Waiting...),
			EstimatedWaitMinutes: int(status.EstimatedWait.Minutes()),
		})
	}
	return out
}

// FromExportRows converts engine export rows into DTOs.
func FromExportRows(rows []queue.ExportRow) []ExportRow {
	out := make([]ExportRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, ExportRow{Service: row.Service, Number: row.Number})
	}
	return out
}

// FromMessages converts broadcast messages into DTOs.
func FromMessages(messages []broadcast.Message) []Event {
	if len(messages) == 0 {
		return nil
	}
	out := make([]Event, 0, len(messages))
	for _, msg := range messages {
		out = append(out, Event{
			Sequence:  msg.Sequence,
			Timestamp: msg.Timestamp.UTC().Format(time.RFC3339Nano),
			Text:      msg.Text,
		})
	}
	return out
}
