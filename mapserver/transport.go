package mapserver

import (
	"context"
	"encoding/json"

	"github.com/edaniels/golog"
	"github.com/go-zeromq/zmq4"
	"github.com/pkg/errors"
)

// Topics the broadcaster publishes the frozen snapshot on.
const (
	TopicBinaryMap     = "octomap_binary"
	TopicOccupiedCells = "occupied_cells_vis_array"
)

// encodeMap frames the binary map payload for the wire: the frame tag
// followed by the opaque serialized tree.
func encodeMap(m BinaryMap) [][]byte {
	return [][]byte{[]byte(m.FrameID), m.Data}
}

// encodeOccupiedCells marshals the marker array for the wire.
func encodeOccupiedCells(snap *Snapshot) ([]byte, error) {
	return json.Marshal(snap.Markers)
}

// Broadcaster publishes the snapshot once over a PUB socket for any
// rendering consumers subscribed at startup.
type Broadcaster struct {
	pub    zmq4.Socket
	logger golog.Logger
}

// NewBroadcaster binds a PUB socket on address.
func NewBroadcaster(ctx context.Context, address string, logger golog.Logger) (*Broadcaster, error) {
	pub := zmq4.NewPub(ctx)
	if err := pub.Listen(address); err != nil {
		return nil, errors.Wrapf(err, "error binding visualization publisher on %s", address)
	}
	logger.Infof("visualization publisher listening on %s", address)
	return &Broadcaster{pub: pub, logger: logger}, nil
}

// Publish sends the binary map and the occupied-cells markers, each on its
// own topic.
func (b *Broadcaster) Publish(snap *Snapshot) error {
	mapFrames := append([][]byte{[]byte(TopicBinaryMap)}, encodeMap(snap.Map)...)
	if err := b.pub.Send(zmq4.NewMsgFrom(mapFrames...)); err != nil {
		return errors.Wrap(err, "error publishing binary map")
	}
	cells, err := encodeOccupiedCells(snap)
	if err != nil {
		return errors.Wrap(err, "error encoding occupied cells")
	}
	if err := b.pub.Send(zmq4.NewMsgFrom([]byte(TopicOccupiedCells), cells)); err != nil {
		return errors.Wrap(err, "error publishing occupied cells")
	}
	return nil
}

// Close shuts the publisher down.
func (b *Broadcaster) Close() error {
	return b.pub.Close()
}

// Responder answers map requests from the cached snapshot over a REP
// socket. Every request, regardless of content, gets the binary map.
type Responder struct {
	rep    zmq4.Socket
	server *Server
	logger golog.Logger
}

// NewResponder binds a REP socket on address serving reads from server.
func NewResponder(ctx context.Context, address string, server *Server, logger golog.Logger) (*Responder, error) {
	rep := zmq4.NewRep(ctx)
	if err := rep.Listen(address); err != nil {
		return nil, errors.Wrapf(err, "error binding map request socket on %s", address)
	}
	logger.Infof("map request socket listening on %s", address)
	return &Responder{rep: rep, server: server, logger: logger}, nil
}

// Serve answers requests until ctx is canceled or the socket closes.
func (r *Responder) Serve(ctx context.Context) error {
	for {
		if _, err := r.rep.Recv(); err != nil {
			if ctx.Err() != nil || errors.Is(err, zmq4.ErrClosedConn) {
				return nil
			}
			r.logger.Errorw("error receiving map request", "error", err)
			continue
		}
		r.logger.Info("sending map data on request")
		if err := r.rep.Send(zmq4.NewMsgFrom(encodeMap(r.server.Map())...)); err != nil {
			if ctx.Err() != nil || errors.Is(err, zmq4.ErrClosedConn) {
				return nil
			}
			r.logger.Errorw("error sending map response", "error", err)
		}
	}
}

// Close shuts the responder down.
func (r *Responder) Close() error {
	return r.rep.Close()
}
