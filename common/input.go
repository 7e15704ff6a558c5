package common

// Key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyW     = 87  // W key (ASCII)
	KeyA     = 65  // A key (ASCII)
	KeyS     = 83  // S key (ASCII)
	KeyD     = 68  // D key (ASCII)
	KeySpace = 32  // Spacebar (ASCII)
	KeyEsc   = 256 // Escape key (GLFW)

	KeyRight = 262 // Right arrow (GLFW)
	KeyLeft  = 263 // Left arrow (GLFW)
	KeyDown  = 264 // Down arrow (GLFW)
	KeyUp    = 265 // Up arrow (GLFW)
)

// MouseButton identifies a pointer button, numbered like GLFW.
type MouseButton int

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)

// InputKind tells which fields of an InputEvent are meaningful.
type InputKind int

const (
	// InputPointerDown carries Button, X and Y.
	InputPointerDown InputKind = iota
	// InputPointerUp carries Button, X and Y.
	InputPointerUp
	// InputPointerMove carries X and Y.
	InputPointerMove
	// InputWheel carries Delta, positive when scrolling up.
	InputWheel
	// InputKeyDown carries Key; repeats arrive as further key downs.
	InputKeyDown
	// InputKeyUp carries Key.
	InputKeyUp
)

// InputEvent is one pointer or keyboard event from a mount target, in window pixels with the
// origin at the top-left corner.
type InputEvent struct {
	Kind   InputKind
	X, Y   float32
	Button MouseButton
	Key    uint32
	Delta  float32
}
