package ripple

import (
	"fmt"
	"log"
	"time"
)

// debugStats holds per-frame timing and mesh metrics.
// Only populated when Scene.debug is true.
type debugStats struct {
	projectTime   time.Duration
	drawTime      time.Duration
	meshCount     int
	triangleCount int
}

// debugLog prints timing and mesh stats.
func (s *Scene) debugLog(stats debugStats) {
	if !s.debug {
		return
	}
	log.Printf("[ripple] project: %v | draw total: %v | passes: %d",
		stats.projectTime, stats.drawTime, len(s.passes))
	log.Printf("[ripple] meshes: %d | triangles: %d | engines: %d | pending frames: %d",
		stats.meshCount, stats.triangleCount, len(s.engines), s.frames.Pending())
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation. Callers only invoke it in debug mode.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("ripple debug: %s on disposed node %q (ID was %d)", op, n.Name, n.ID))
	}
}

// debugCheckTreeDepth warns if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		log.Printf("[ripple] warning: tree depth %d exceeds %d (node %q)",
			depth, debugMaxTreeDepth, n.Name)
	}
}
