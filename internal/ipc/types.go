package ipc

import "turnstile/internal/api"

// StationStatus mirrors the HTTP API station DTO for internal IPC callers.
type StationStatus = api.StationStatus

// ExportRow mirrors the HTTP API export DTO.
type ExportRow = api.ExportRow

// Event mirrors the HTTP API broadcast event DTO.
type Event = api.Event

// StatusRequest fetches daemon and queue status.
type StatusRequest struct{}

// StatusResponse represents combined daemon and queue status information.
type StatusResponse struct {
	Running          bool            `json:"running"`
	PID              int             `json:"pid"`
	LockPath         string          `json:"lock_path"`
	SnapshotPath     string          `json:"snapshot_path"`
	APIAddr          string          `json:"api_addr"`
	Subscribers      int             `json:"subscribers"`
	Stations         []StationStatus `json:"stations"`
	Announcement     string          `json:"announcement"`
	TotalWaiting     int             `json:"total_waiting"`
	TotalServed      int             `json:"total_served"`
	TotalWaitMinutes int             `json:"total_wait_minutes"`
}

// TakeRequest issues a ticket for a station.
type TakeRequest struct {
	Station string `json:"station"`
}

// TakeResponse carries the issued ticket number.
type TakeResponse struct {
	Number string `json:"number"`
}

// CallRequest calls the next waiting ticket at a station.
type CallRequest struct {
	Station string `json:"station"`
}

// CallResponse carries the called ticket number, or nil when the queue was
// empty.
type CallResponse struct {
	Current *string `json:"current"`
}

// RecallRequest re-announces the last served ticket at a station.
type RecallRequest struct {
	Station string `json:"station"`
}

// RecallResponse carries the re-announced ticket number.
type RecallResponse struct {
	LastNumber string `json:"last_number"`
}

// GetAnnouncementRequest fetches the current announcement.
type GetAnnouncementRequest struct{}

// GetAnnouncementResponse carries the current announcement text.
type GetAnnouncementResponse struct {
	Announcement string `json:"announcement"`
}

// SetAnnouncementRequest overwrites the announcement.
type SetAnnouncementRequest struct {
	Text string `json:"text"`
}

// SetAnnouncementResponse echoes the stored announcement.
type SetAnnouncementResponse struct {
	Announcement string `json:"announcement"`
}

// ResetRequest clears all queues, counters, and the persisted snapshot.
type ResetRequest struct{}

// ResetResponse indicates the reset completed.
type ResetResponse struct {
	Reset bool `json:"reset"`
}

// ExportRequest lists every waiting ticket across stations.
type ExportRequest struct{}

// ExportResponse contains the waiting ticket listing.
type ExportResponse struct {
	Rows []ExportRow `json:"rows"`
}

// EventsRequest fetches broadcast lines based on cursor and follow semantics.
type EventsRequest struct {
	Since      uint64 `json:"since"`
	Limit      int    `json:"limit"`
	Follow     bool   `json:"follow"`
	WaitMillis int64  `json:"wait_millis"`
	Tail       bool   `json:"tail"`
}

// EventsResponse contains broadcast lines plus the cursor for the next fetch.
type EventsResponse struct {
	Events []Event `json:"events"`
	Next   uint64  `json:"next"`
}

// StopRequest stops the daemon surfaces.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// TestNotificationRequest triggers a test push notification.
type TestNotificationRequest struct{}

// TestNotificationResponse reports the test notification outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
