package main

import (
	"fmt"

	"map-renderer/core"
	"map-renderer/renderer"
)

// dayPalette is the fog state at one key time of day. The clear color follows
// the fog color, so this is also the sky.
type dayPalette struct {
	t           float32 // normalised time 0..1
	fogColor    core.Color
	fogDistance float32
}

// palettes is ordered by t and wraps (0 == 1).
var palettes = []dayPalette{
	{t: 0.00, fogColor: core.Color{R: 0.55, G: 0.65, B: 0.80, A: 1}, fogDistance: 128}, // noon
	{t: 0.22, fogColor: core.Color{R: 0.85, G: 0.55, B: 0.25, A: 1}, fogDistance: 112}, // golden hour
	{t: 0.30, fogColor: core.Color{R: 0.35, G: 0.18, B: 0.22, A: 1}, fogDistance: 96},  // dusk
	{t: 0.50, fogColor: core.Color{R: 0.03, G: 0.03, B: 0.06, A: 1}, fogDistance: 80},  // midnight
	{t: 0.70, fogColor: core.Color{R: 0.30, G: 0.15, B: 0.20, A: 1}, fogDistance: 96},  // pre-dawn
	{t: 0.78, fogColor: core.Color{R: 0.75, G: 0.40, B: 0.20, A: 1}, fogDistance: 112}, // sunrise
}

// DayNight drives the animated fog cycle.
type DayNight struct {
	Time   float32 // 0..1: 0=noon, 0.25=sunset, 0.5=midnight, 0.75=sunrise
	Speed  float32 // full-cycle duration in seconds
	Active bool    // auto-advance when true
}

func NewDayNight() *DayNight {
	return &DayNight{
		Speed:  120.0,
		Active: true,
	}
}

func (dn *DayNight) Update(dt float32) {
	if !dn.Active {
		return
	}
	dn.Time += dt / dn.Speed
	for dn.Time >= 1.0 {
		dn.Time -= 1.0
	}
}

// samplePalette interpolates the palette at t (0..1).
func samplePalette(t float32) dayPalette {
	n := len(palettes)
	for i := 0; i < n; i++ {
		a, b := palettes[i], palettes[(i+1)%n]
		ta, tb := a.t, b.t
		if i == n-1 {
			tb = 1.0
		}
		var local float32
		switch {
		case t >= ta && t < tb:
			local = (t - ta) / (tb - ta)
		case i == n-1 && t < palettes[0].t:
			local = (t + 1.0 - ta) / (tb - ta)
		default:
			continue
		}
		return dayPalette{
			t:           t,
			fogColor:    a.fogColor.Lerp(b.fogColor, local),
			fogDistance: a.fogDistance + (b.fogDistance-a.fogDistance)*local,
		}
	}
	return palettes[0]
}

// Apply pushes the current fog state to the render engine.
func (dn *DayNight) Apply(re *renderer.RenderEngine) {
	p := samplePalette(dn.Time)
	re.FogColor = p.fogColor.Vec3()
	re.FogDistance = p.fogDistance
}

// TimeOfDayStr returns a human-readable time label.
func (dn *DayNight) TimeOfDayStr() string {
	hours := dn.Time*24.0 + 12.0
	h := int(hours) % 24
	m := int((hours - float32(int(hours))) * 60)
	period := "AM"
	displayH := h
	switch {
	case h == 0:
		displayH = 12
	case h == 12:
		period = "PM"
	case h > 12:
		displayH = h - 12
		period = "PM"
	}
	return fmt.Sprintf("%02d:%02d %s", displayH, m, period)
}
