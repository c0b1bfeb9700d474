package http

import (
	"net/http"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/roidfield/roidfield/modules/asteroids"
	"github.com/roidfield/roidfield/modules/octree"
	"github.com/segmentio/encoding/json"
)

func HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func HandleReadyCheck(readinessCheck func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !readinessCheck() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func HandleVersion(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(version))
	}
}

// OctreeDebug is the body returned by the octree debug endpoint.
type OctreeDebug struct {
	Octree     octree.DebugInfo      `json:"octree"`
	Scoreboard *asteroids.Scoreboard `json:"scoreboard,omitempty"`
}

// HandleOctreeDebug returns a handler that dumps the current tree of the
// index as JSON. The scoreboard is added when scoreboard is not nil.
func HandleOctreeDebug(idx octree.SpatialIndex, scoreboard func() asteroids.Scoreboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		res := OctreeDebug{
			Octree: idx.DebugInfo(),
		}
		if scoreboard != nil {
			b := scoreboard()
			res.Scoreboard = &b
		}

		writeJSON(w, http.StatusOK, res)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		logs.Warn(errors.New("encoding response failed").Wrap(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}
