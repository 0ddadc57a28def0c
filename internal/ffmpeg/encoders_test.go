package ffmpeg

import "testing"

const sampleEncoders = `Encoders:
 V..... = Video
 A..... = Audio
 S..... = Subtitle
 .F.... = Frame-level multithreading
 ------
 V....D libvpx               libvpx VP8 (codec vp8)
 V....D libvpx-vp9           libvpx VP9 (codec vp9)
 V....D mjpeg                MJPEG (Motion JPEG)
 A....D libopus              libopus Opus (codec opus)
 S..... webvtt               WebVTT subtitle
`

func TestParseEncoders(t *testing.T) {
	got := ParseEncoders([]byte(sampleEncoders))
	for _, name := range []string{"libvpx", "libvpx-vp9", "mjpeg", "libopus", "webvtt"} {
		if !got[name] {
			t.Errorf("missing encoder %q", name)
		}
	}
	for _, name := range []string{"=", "------", "libx264", "Encoders:"} {
		if got[name] {
			t.Errorf("unexpected entry %q", name)
		}
	}
}
