package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Status retrieves combined daemon and queue status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Turnstile.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Take issues a ticket at the given station.
func (c *Client) Take(station string) (*TakeResponse, error) {
	var resp TakeResponse
	if err := c.client.Call("Turnstile.Take", TakeRequest{Station: station}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Call moves the next waiting ticket into service at the given station.
func (c *Client) Call(station string) (*CallResponse, error) {
	var resp CallResponse
	if err := c.client.Call("Turnstile.Call", CallRequest{Station: station}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Recall re-announces the last served ticket at the given station.
func (c *Client) Recall(station string) (*RecallResponse, error) {
	var resp RecallResponse
	if err := c.client.Call("Turnstile.Recall", RecallRequest{Station: station}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAnnouncement retrieves the current announcement text.
func (c *Client) GetAnnouncement() (*GetAnnouncementResponse, error) {
	var resp GetAnnouncementResponse
	if err := c.client.Call("Turnstile.GetAnnouncement", GetAnnouncementRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetAnnouncement overwrites the announcement text.
func (c *Client) SetAnnouncement(text string) (*SetAnnouncementResponse, error) {
	var resp SetAnnouncementResponse
	if err := c.client.Call("Turnstile.SetAnnouncement", SetAnnouncementRequest{Text: text}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Reset clears all queues and counters.
func (c *Client) Reset() (*ResetResponse, error) {
	var resp ResetResponse
	if err := c.client.Call("Turnstile.Reset", ResetRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Export lists every waiting ticket across stations.
func (c *Client) Export() (*ExportResponse, error) {
	var resp ExportResponse
	if err := c.client.Call("Turnstile.Export", ExportRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Events fetches broadcast lines from the daemon.
func (c *Client) Events(req EventsRequest) (*EventsResponse, error) {
	var resp EventsResponse
	if err := c.client.Call("Turnstile.Events", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop requests the daemon to shut down its surfaces.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Turnstile.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.client.Call("Turnstile.TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
