package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// Recognized control actions.
const (
	ActionCamera     = "camera"
	ActionFlashlight = "flashlight"
	ActionZoom       = "zoom"
)

// Camera action values.
const (
	CameraStart = "start"
	CameraStop  = "stop"
)

// Control is a host command whose value has been checked against its
// action's domain. Unknown actions pass through unchecked.
type Control struct {
	Action string
	Value  json.RawMessage

	recognized bool
	camera     bool
	flashlight bool
	zoom       float64
}

// ParseControl validates value for the recognized actions.
func ParseControl(action string, value json.RawMessage) (Control, error) {
	c := Control{Action: action, Value: value}
	if len(c.Value) == 0 {
		c.Value = json.RawMessage("null")
	}

	switch action {
	case ActionCamera:
		var s string
		if err := json.Unmarshal(c.Value, &s); err != nil || (s != CameraStart && s != CameraStop) {
			return c, fmt.Errorf("%w: camera value must be %q or %q", ErrValidation, CameraStart, CameraStop)
		}
		c.camera = s == CameraStart
	case ActionFlashlight:
		var b bool
		if err := json.Unmarshal(c.Value, &b); err != nil {
			return c, fmt.Errorf("%w: flashlight value must be a boolean", ErrValidation)
		}
		c.flashlight = b
	case ActionZoom:
		var f float64
		if err := json.Unmarshal(c.Value, &f); err != nil || !(f > 0) || math.IsInf(f, 0) {
			return c, fmt.Errorf("%w: zoom value must be a positive number", ErrValidation)
		}
		c.zoom = f
	default:
		return c, nil
	}

	c.recognized = true
	return c, nil
}

// ApplyTo mirrors a recognized command into the session.
func (c Control) ApplyTo(s *ClientSession) {
	if !c.recognized || s == nil {
		return
	}
	switch c.Action {
	case ActionCamera:
		s.CameraActive = c.camera
	case ActionFlashlight:
		s.FlashlightOn = c.flashlight
	case ActionZoom:
		s.ZoomLevel = c.zoom
	}
}
