package video

// Channels is the number of color channels in every frame (packed RGB).
const Channels = 3

// Frame is one decoded still image. Pix holds Width*Height*Channels bytes in
// row-major RGB order. A Frame is reused across reads.
type Frame struct {
	Width  int
	Height int
	Pix    []byte
}

// NewFrame allocates a frame buffer for the given size.
func NewFrame(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*Channels),
	}
}

// Size returns the byte length of the frame's pixel buffer.
func (f *Frame) Size() int {
	return f.Width * f.Height * Channels
}
