package engine

import "github.com/Carmen-Shannon/oxy-scene/common"

// keyPanStep is the pan distance of one arrow or WASD key press, in pixels.
const keyPanStep = 20

// input maps pointer and keyboard events onto the orbit controls: left drag orbits, the wheel
// zooms and WASD or the arrow keys pan.
func (h *handle) input(ev common.InputEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped || h.controls == nil {
		return
	}

	switch ev.Kind {
	case common.InputPointerDown:
		if ev.Button == common.MouseButtonLeft {
			h.controls.DragStart(ev.X, ev.Y)
		}
	case common.InputPointerMove:
		h.controls.DragMove(ev.X, ev.Y)
	case common.InputPointerUp:
		if ev.Button == common.MouseButtonLeft {
			h.controls.DragEnd()
		}
	case common.InputWheel:
		// scrolling up moves closer
		h.controls.Wheel(-ev.Delta)
	case common.InputKeyDown:
		switch ev.Key {
		case common.KeyA, common.KeyLeft:
			h.controls.Pan(-keyPanStep, 0)
		case common.KeyD, common.KeyRight:
			h.controls.Pan(keyPanStep, 0)
		case common.KeyW, common.KeyUp:
			h.controls.Pan(0, -keyPanStep)
		case common.KeyS, common.KeyDown:
			h.controls.Pan(0, keyPanStep)
		}
	}
}
