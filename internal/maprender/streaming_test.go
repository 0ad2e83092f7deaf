package maprender

import "testing"

func TestStreamingHysteresis(t *testing.T) {
	p := DefaultStreamingPolicy()
	cases := []struct {
		dist     float32
		realized bool
		want     bool
	}{
		{0, false, true},
		{127.9, false, true},
		{128, false, false},
		{128, true, true},
		{150, false, false},
		{150, true, true},
		{160, true, true},
		{160.1, true, false},
		{1000, true, false},
	}
	for _, c := range cases {
		if got := p.Next(c.dist, c.realized); got != c.want {
			t.Errorf("Next(%v, %v) = %v, want %v", c.dist, c.realized, got, c.want)
		}
	}
}

func TestStreamingScenario(t *testing.T) {
	p := DefaultStreamingPolicy()
	realized := true

	steps := []struct {
		dist float32
		want bool
	}{
		{150, true},  // inside the band, stays realized
		{170, false}, // past release
		{150, false}, // back inside the band, stays released
		{100, true},  // inside cull
	}
	for i, s := range steps {
		realized = p.Next(s.dist, realized)
		if realized != s.want {
			t.Errorf("step %d (dist %v): realized=%v, want %v", i, s.dist, realized, s.want)
		}
	}
}

func TestStreamingValidate(t *testing.T) {
	if err := DefaultStreamingPolicy().Validate(); err != nil {
		t.Errorf("default policy: %v", err)
	}
	bad := []StreamingPolicy{
		{CullDistance: 0, ReleaseDistance: 10},
		{CullDistance: 100, ReleaseDistance: 100},
		{CullDistance: 100, ReleaseDistance: 50},
	}
	for _, p := range bad {
		if p.Validate() == nil {
			t.Errorf("%+v should be rejected", p)
		}
	}
}
