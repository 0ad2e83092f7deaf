package maprender

import "fmt"

// StreamingPolicy decides which chunks keep GPU resources. Chunks closer than
// CullDistance are realized, chunks farther than ReleaseDistance are released
// and chunks in between keep whatever state they had.
type StreamingPolicy struct {
	CullDistance    float32
	ReleaseDistance float32
}

// DefaultStreamingPolicy returns the 128 / 160 band.
func DefaultStreamingPolicy() StreamingPolicy {
	return StreamingPolicy{CullDistance: 128, ReleaseDistance: 160}
}

// Next returns whether a chunk at distance should be realized, given whether
// it currently is.
func (p StreamingPolicy) Next(distance float32, realized bool) bool {
	switch {
	case distance < p.CullDistance:
		return true
	case distance > p.ReleaseDistance:
		return false
	default:
		return realized
	}
}

// Validate rejects policies without a hysteresis band.
func (p StreamingPolicy) Validate() error {
	if p.CullDistance <= 0 {
		return fmt.Errorf("cull distance must be positive, got %v", p.CullDistance)
	}
	if p.ReleaseDistance <= p.CullDistance {
		return fmt.Errorf("release distance %v must exceed cull distance %v", p.ReleaseDistance, p.CullDistance)
	}
	return nil
}
