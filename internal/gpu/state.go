package gpu

// PassState records the device state a render pass acquires so that it can be
// undone in one place. Callers pair NewPassState with a deferred Release; early
// returns after that point still leave the device clean.
//
// Capabilities enabled through the pass are left enabled on Release: depth
// test and face culling are the expected baseline for every opaque pass.
type PassState struct {
	dev      Device
	attribs  []int32
	units    []int
	released bool
}

// NewPassState starts tracking state for one pass on dev.
func NewPassState(dev Device) *PassState {
	return &PassState{dev: dev}
}

// Device returns the device the pass runs on.
func (s *PassState) Device() Device { return s.dev }

// Enable turns on a fixed-function capability.
func (s *PassState) Enable(c Capability) {
	s.dev.Enable(c, true)
}

// BindTexture makes tex current on the given texture unit and remembers the
// unit so Release can unbind it.
func (s *PassState) BindTexture(unit int, tex uint32) {
	s.dev.ActiveTexture(unit)
	s.dev.BindTexture(Texture2D, tex)
	for _, u := range s.units {
		if u == unit {
			return
		}
	}
	s.units = append(s.units, unit)
}

// EnableAttrib enables a vertex attribute array. A negative location means
// the program does not use the attribute and is ignored.
func (s *PassState) EnableAttrib(location int32) bool {
	if location < 0 {
		return false
	}
	for _, l := range s.attribs {
		if l == location {
			return true
		}
	}
	s.dev.EnableVertexAttribArray(location, true)
	s.attribs = append(s.attribs, location)
	return true
}

// EnabledAttribs returns the attribute locations enabled so far.
func (s *PassState) EnabledAttribs() []int32 {
	out := make([]int32, len(s.attribs))
	copy(out, s.attribs)
	return out
}

// Release disables every attribute array and unbinds every texture unit the
// pass touched, in reverse order, and leaves texture unit 0 active with no
// array buffer bound. Calling it twice is a no-op.
func (s *PassState) Release() {
	if s.released {
		return
	}
	s.released = true

	for i := len(s.attribs) - 1; i >= 0; i-- {
		s.dev.EnableVertexAttribArray(s.attribs[i], false)
	}
	for i := len(s.units) - 1; i >= 0; i-- {
		s.dev.ActiveTexture(s.units[i])
		s.dev.BindTexture(Texture2D, 0)
	}
	if len(s.units) > 0 {
		s.dev.ActiveTexture(0)
	}
	s.dev.BindBuffer(ArrayBuffer, 0)
	s.dev.BindBuffer(ElementArrayBuffer, 0)
	s.attribs = nil
	s.units = nil
}
