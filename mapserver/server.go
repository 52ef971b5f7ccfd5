package mapserver

import (
	"github.com/edaniels/golog"

	"go.viam.com/octoserve/markers"
	"go.viam.com/octoserve/octomap"
)

// Server owns exactly one snapshot, built when the server is constructed,
// and answers every read from it. The snapshot is immutable, so reads are
// safe for any number of concurrent readers and never recompute anything.
type Server struct {
	snap *Snapshot
}

// NewServer builds the snapshot from an already loaded tree.
func NewServer(tree *octomap.OcTree, cfg Config, logger golog.Logger) (*Server, error) {
	snap, err := BuildSnapshot(tree, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Server{snap: snap}, nil
}

// NewServerFromFile loads a map file and builds the snapshot from it. A
// file that fails to load produces no server.
func NewServerFromFile(fn string, cfg Config, logger golog.Logger) (*Server, error) {
	tree, err := octomap.NewFromFile(fn, logger)
	if err != nil {
		return nil, err
	}
	logger.Infof("octree file %s loaded (%d nodes)", fn, tree.Size())
	return NewServer(tree, cfg, logger)
}

// Snapshot returns the snapshot built at construction.
func (s *Server) Snapshot() *Snapshot {
	return s.snap
}

// Map returns the serialized map payload.
func (s *Server) Map() BinaryMap {
	return s.snap.Map
}

// OccupiedCells returns the per-level cube markers.
func (s *Server) OccupiedCells() markers.MarkerArray {
	return s.snap.Markers
}
