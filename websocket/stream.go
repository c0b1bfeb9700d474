package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/roidfield/roidfield/modules/octree"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

const (
	// ErrTypeSendFailed is the error type of failed snapshot writes.
	ErrTypeSendFailed = "snapshot_send_failed"

	requestChanSize = 8
)

// OctreeStream streams the tree of an index to a connected visualizer.
//
// A snapshot is sent when the client connects, each time the index swaps in
// a new tree, and whenever the client sends a message.
type OctreeStream struct {
	Index octree.SpatialIndex

	// The interval between two checks for a new tree.
	PollInterval time.Duration

	// The time allowed to write a snapshot. Unlimited when zero.
	WriteTimeout time.Duration
}

// Handle streams snapshots on conn until ctx is done or the client
// disconnects.
func (s *OctreeStream) Handle(ctx context.Context, conn *websocket.Conn) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	remoteAddr := conn.Request().RemoteAddr
	wsConnectedClients.Inc()
	defer wsConnectedClients.Dec()

	logs.WithTag("remote_addr", remoteAddr).Info("new client is connected")

	requests := make(chan struct{}, requestChanSize)
	disconnect := make(chan error, 1)

	var wg sync.WaitGroup
	defer wg.Wait()
	defer conn.Close()

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.receive(ctx, conn, requests, disconnect)
	}()

	ticker := time.NewTicker(s.PollInterval)
	defer ticker.Stop()

	var generation uint64
	send := func(force bool) error {
		info := s.Index.DebugInfo()
		if !force && info.Generation == generation {
			return nil
		}
		generation = info.Generation
		return s.send(conn, info)
	}

	err := send(true)
	for err == nil {
		select {
		case <-ctx.Done():
			err = ctx.Err()

		case err = <-disconnect:

		case <-requests:
			err = send(true)

		case <-ticker.C:
			err = send(false)
		}
	}

	entry := logs.WithTag("remote_addr", remoteAddr).
		WithTag("generation", generation)

	switch errors.Type(err) {
	case ErrTypeSendFailed:
		entry.Warn(err)

	default:
		entry.Info("client is disconnected")
	}
}

func (s *OctreeStream) receive(ctx context.Context, conn *websocket.Conn, requests chan<- struct{}, disconnect chan<- error) {
	for {
		var msg string
		if err := websocket.Message.Receive(conn, &msg); err != nil {
			disconnect <- err
			return
		}
		wsReceivedMsgs.Inc()

		select {
		case <-ctx.Done():
			return

		case requests <- struct{}{}:

		default:
			// A snapshot is already pending.
		}
	}
}

func (s *OctreeStream) send(conn *websocket.Conn, info octree.DebugInfo) error {
	b, err := json.Marshal(info)
	if err != nil {
		return errors.New("encoding snapshot failed").
			WithType(ErrTypeSendFailed).
			Wrap(err)
	}

	if s.WriteTimeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(s.WriteTimeout))
	}

	if err := websocket.Message.Send(conn, string(b)); err != nil {
		wsSendErrors.Inc()
		return errors.New("sending snapshot failed").
			WithType(ErrTypeSendFailed).
			WithTag("generation", info.Generation).
			Wrap(err)
	}

	wsSentMsgs.Inc()
	wsSentBytes.Add(float64(len(b)))
	return nil
}
