package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"log/slog"

	"turnstile/internal/api"
	"turnstile/internal/daemon"
	"turnstile/internal/logging"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Turnstile", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed", logging.Error(err))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String("component", "ipc"))
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Running = status.Running
	resp.PID = status.PID
	resp.LockPath = status.LockFilePath
	resp.SnapshotPath = status.SnapshotPath
	resp.APIAddr = status.APIAddr
	resp.Subscribers = status.Subscribers
	resp.Stations = api.FromStationStatuses(s.daemon.Engine().Status())
	resp.Announcement = status.Queue.Announcement
	resp.TotalWaiting = status.Queue.TotalWaiting
	resp.TotalServed = status.Queue.TotalServed
	resp.TotalWaitMinutes = int(status.Queue.TotalWaitTime.Minutes())
	return nil
}

func (s *service) Take(req TakeRequest, resp *TakeResponse) error {
	ticket, err := s.daemon.Engine().Enqueue(s.ctx, req.Station)
	if err != nil {
		return err
	}
	resp.Number = ticket.Number
	s.log().Info("ticket issued via IPC",
		logging.String("station", req.Station),
		logging.String("number", ticket.Number))
	return nil
}

func (s *service) Call(req CallRequest, resp *CallResponse) error {
	ticket, err := s.daemon.Engine().CallNext(s.ctx, req.Station)
	if err != nil {
		return err
	}
	if ticket != nil {
		number := ticket.Number
		resp.Current = &number
	}
	return nil
}

func (s *service) Recall(req RecallRequest, resp *RecallResponse) error {
	ticket, err := s.daemon.Engine().Recall(s.ctx, req.Station)
	if err != nil {
		return err
	}
	resp.LastNumber = ticket.Number
	return nil
}

func (s *service) GetAnnouncement(_ GetAnnouncementRequest, resp *GetAnnouncementResponse) error {
	resp.Announcement = s.daemon.Engine().Announcement()
	return nil
}

func (s *service) SetAnnouncement(req SetAnnouncementRequest, resp *SetAnnouncementResponse) error {
	engine := s.daemon.Engine()
	engine.SetAnnouncement(s.ctx, req.Text)
	resp.Announcement = engine.Announcement()
	s.log().Info("announcement updated via IPC")
	return nil
}

func (s *service) Reset(_ ResetRequest, resp *ResetResponse) error {
	s.log().Debug("queue reset requested")
	s.daemon.Engine().ResetAll(s.ctx)
	resp.Reset = true
	s.log().Info("queues reset via IPC")
	return nil
}

func (s *service) Export(_ ExportRequest, resp *ExportResponse) error {
	rows, err := s.daemon.Engine().ExportWaiting()
	if err != nil {
		return err
	}
	resp.Rows = api.FromExportRows(rows)
	return nil
}

func (s *service) Events(req EventsRequest, resp *EventsResponse) error {
	hub := s.daemon.Hub()
	limit := req.Limit
	if limit <= 0 {
		limit = 200
	}

	if req.Tail && req.Since == 0 && !req.Follow {
		messages, next := hub.Tail(limit)
		resp.Events = api.FromMessages(messages)
		resp.Next = next
		return nil
	}

	ctx := s.ctx
	if req.Follow {
		wait := time.Duration(req.WaitMillis) * time.Millisecond
		if wait <= 0 {
			wait = time.Second
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, wait)
		defer cancel()
	}

	messages, next, err := hub.Fetch(ctx, req.Since, limit, req.Follow)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	resp.Events = api.FromMessages(messages)
	resp.Next = next
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.log().Debug("daemon stop requested")
	s.daemon.Stop()
	resp.Stopped = true
	s.log().Info("daemon stopped via IPC")
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	sent, message, err := s.daemon.TestNotification(s.ctx)
	resp.Sent = sent
	resp.Message = message
	return err
}
