package engine

// resize follows a mount size change: the camera aspect and the renderer surface. Events with a
// non-positive dimension, and events racing a Stop, change nothing.
func (h *handle) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	h.camera.SetAspect(float32(width) / float32(height))
	h.renderer.SetSize(width, height)
}
