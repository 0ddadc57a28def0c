package probe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/backmassage/framecopy/internal/ffmpeg"
	"github.com/backmassage/framecopy/internal/testutil/fakeff"
)

func TestMain(m *testing.M) {
	fakeff.RunIfRequested()
	os.Exit(m.Run())
}

// WebM written by libvpx: duration only as a Matroska tag, plus a cover
// image that must not be taken as the primary video.
const sampleWebM = `{
  "streams": [
    {
      "index": 0,
      "codec_name": "mjpeg",
      "codec_type": "video",
      "width": 600,
      "height": 900,
      "pix_fmt": "yuvj444p",
      "disposition": { "default": 0, "attached_pic": 1 },
      "tags": { "comment": "Cover (front)" }
    },
    {
      "index": 1,
      "codec_name": "vp8",
      "codec_type": "video",
      "pix_fmt": "yuv420p",
      "width": 1280,
      "height": 720,
      "avg_frame_rate": "30000/1001",
      "r_frame_rate": "30000/1001",
      "start_time": "0.000000",
      "disposition": { "default": 1, "attached_pic": 0 },
      "tags": { "DURATION": "00:00:10.010000000" }
    },
    {
      "index": 2,
      "codec_name": "vorbis",
      "codec_type": "audio",
      "disposition": { "default": 1 },
      "tags": { "language": "eng" }
    }
  ],
  "format": {
    "filename": "/media/test/clip.webm",
    "nb_streams": 3,
    "format_name": "matroska,webm",
    "duration": "10.010000",
    "size": "1234567",
    "bit_rate": "986666"
  }
}`

// MP4 probed with -count_frames: both declared and counted frame numbers.
const sampleCounted = `{
  "streams": [
    {
      "index": 0,
      "codec_name": "h264",
      "codec_type": "video",
      "pix_fmt": "yuv420p",
      "width": 640,
      "height": 480,
      "avg_frame_rate": "0/0",
      "r_frame_rate": "25/1",
      "nb_frames": "250",
      "nb_read_frames": "249",
      "duration": "10.000000",
      "start_time": "0.000000",
      "disposition": { "default": 1, "attached_pic": 0 }
    }
  ],
  "format": {
    "filename": "counted.mp4",
    "nb_streams": 1,
    "format_name": "mov,mp4,m4a,3gp,3g2,mj2",
    "duration": "10.000000",
    "size": "500000",
    "bit_rate": "400000"
  }
}`

// Audio-only input.
const sampleAudioOnly = `{
  "streams": [
    { "index": 0, "codec_name": "mp3", "codec_type": "audio" }
  ],
  "format": { "filename": "song.mp3", "nb_streams": 1, "format_name": "mp3", "duration": "180.0" }
}`

func TestParseJSON_WebM(t *testing.T) {
	pr, err := ParseJSON([]byte(sampleWebM))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}

	if pr.Format.Filename != "/media/test/clip.webm" {
		t.Errorf("filename: got %q", pr.Format.Filename)
	}
	if pr.Format.NbStreams != 3 {
		t.Errorf("nb_streams: got %d, want 3", pr.Format.NbStreams)
	}
	if pr.Format.Size != 1234567 {
		t.Errorf("size: got %d", pr.Format.Size)
	}

	// Primary video should skip the mjpeg cover art (index 0)
	if pr.PrimaryVideo == nil {
		t.Fatal("PrimaryVideo is nil")
	}
	v := pr.PrimaryVideo
	if v.Index != 1 || v.Codec != "vp8" {
		t.Errorf("primary video: index=%d codec=%q", v.Index, v.Codec)
	}
	if v.Width != 1280 || v.Height != 720 {
		t.Errorf("resolution: got %dx%d", v.Width, v.Height)
	}
	if v.Rate() != "30000/1001" {
		t.Errorf("rate: got %q", v.Rate())
	}
	if fps := v.FPS(); fps < 29.97 || fps > 29.98 {
		t.Errorf("fps: got %f", fps)
	}
	if v.Duration != 10.01 {
		t.Errorf("duration from DURATION tag: got %f, want 10.01", v.Duration)
	}
	if v.FrameCount() != 0 {
		t.Errorf("frame count: got %d, want 0 (unknown)", v.FrameCount())
	}

	if len(pr.AudioStreams) != 1 || pr.AudioStreams[0].Codec != "vorbis" {
		t.Errorf("audio streams: got %+v", pr.AudioStreams)
	}
}

func TestParseJSON_CountedFrames(t *testing.T) {
	pr, err := ParseJSON([]byte(sampleCounted))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	v := pr.PrimaryVideo
	if v == nil {
		t.Fatal("PrimaryVideo is nil")
	}
	if v.NbFrames != 250 || v.NbReadFrames != 249 {
		t.Errorf("frames: nb_frames=%d nb_read_frames=%d", v.NbFrames, v.NbReadFrames)
	}
	if v.FrameCount() != 249 {
		t.Errorf("FrameCount should prefer nb_read_frames: got %d", v.FrameCount())
	}
	// avg_frame_rate is unset, so the base rate is used.
	if v.Rate() != "25/1" || v.FPS() != 25 {
		t.Errorf("rate fallback: got %q (%f)", v.Rate(), v.FPS())
	}
	if pr.Duration() != 10 {
		t.Errorf("duration: got %f", pr.Duration())
	}
	if got := pr.Resolution(); got != "640x480" {
		t.Errorf("resolution: got %q", got)
	}
}

func TestParseJSON_AudioOnly(t *testing.T) {
	pr, err := ParseJSON([]byte(sampleAudioOnly))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if pr.PrimaryVideo != nil {
		t.Errorf("PrimaryVideo: got %+v, want nil", pr.PrimaryVideo)
	}
	if got := pr.Resolution(); got != "unknown" {
		t.Errorf("resolution: got %q, want unknown", got)
	}
	if pr.Duration() != 180 {
		t.Errorf("duration should fall back to format: got %f", pr.Duration())
	}
}

func TestParseJSON_Invalid(t *testing.T) {
	for _, in := range []string{"", "not json", "{}"} {
		if _, err := ParseJSON([]byte(in)); err == nil {
			t.Errorf("ParseJSON(%q): expected error", in)
		}
	}
}

func TestParseRate(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"25/1", 25},
		{"30000/1001", 30000.0 / 1001.0},
		{"24", 24},
		{"0/0", 0},
		{"1/0", 0},
		{"", 0},
		{"abc", 0},
		{"-25/1", 0},
	}
	for _, tc := range cases {
		if got := ParseRate(tc.in); got != tc.want {
			t.Errorf("ParseRate(%q) = %f, want %f", tc.in, got, tc.want)
		}
	}
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"00:00:10.010000000", 10.01},
		{"01:02:03.5", 3723.5},
		{"10.0", 0},
		{"", 0},
	}
	for _, tc := range cases {
		if got := parseClock(tc.in); got != tc.want {
			t.Errorf("parseClock(%q) = %f, want %f", tc.in, got, tc.want)
		}
	}
}

func TestProbe_FakeToolchain(t *testing.T) {
	bin := fakeff.Install(t)
	path := filepath.Join(t.TempDir(), "in.webm")
	fakeff.WriteMedia(t, path, fakeff.Media{Width: 4, Height: 2, Rate: "25/1", Frames: 5})

	pr, err := Probe(context.Background(), bin, path, Options{CountFrames: true})
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	v := pr.PrimaryVideo
	if v == nil {
		t.Fatal("PrimaryVideo is nil")
	}
	if v.Width != 4 || v.Height != 2 || v.FPS() != 25 {
		t.Errorf("stream: %dx%d @ %f", v.Width, v.Height, v.FPS())
	}
	if v.FrameCount() != 5 {
		t.Errorf("frame count: got %d, want 5", v.FrameCount())
	}
	if pr.Duration() != 0.2 {
		t.Errorf("duration: got %f, want 0.2", pr.Duration())
	}
}

func TestProbe_MissingFile(t *testing.T) {
	bin := fakeff.Install(t)
	_, err := Probe(context.Background(), bin, filepath.Join(t.TempDir(), "missing.webm"), Options{})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, ffmpeg.ErrNoSuchFile) {
		t.Errorf("error should classify as ErrNoSuchFile: %v", err)
	}
}

func TestProbe_InvalidData(t *testing.T) {
	bin := fakeff.Install(t)
	path := filepath.Join(t.TempDir(), "garbage.webm")
	if err := os.WriteFile(path, []byte("not a video"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Probe(context.Background(), bin, path, Options{})
	if !errors.Is(err, ffmpeg.ErrInvalidData) {
		t.Errorf("error should classify as ErrInvalidData: %v", err)
	}
}

func TestParseJSON_Rotation(t *testing.T) {
	tests := []struct {
		name  string
		extra string // fields added to the stream object
		want  int
	}{
		{"none", ``, 0},
		{"rotate tag", `"tags": {"rotate": "90"},`, 90},
		{"display matrix", `"side_data_list": [{"side_data_type": "Display Matrix", "rotation": -90}],`, 90},
		{"display matrix wins", `"tags": {"rotate": "180"}, "side_data_list": [{"side_data_type": "Display Matrix", "rotation": 90}],`, 270},
		{"other side data", `"side_data_list": [{"side_data_type": "Stereo 3D"}],`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `{"streams": [{` + tt.extra +
				`"index": 0, "codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080}],
				"format": {"filename": "phone.mp4"}}`
			pr, err := ParseJSON([]byte(doc))
			if err != nil {
				t.Fatalf("ParseJSON: %v", err)
			}
			v := pr.PrimaryVideo
			if v.Rotation != tt.want {
				t.Errorf("rotation: got %d, want %d", v.Rotation, tt.want)
			}
			if v.Width != 1920 || v.Height != 1080 {
				t.Errorf("stored size changed: %dx%d", v.Width, v.Height)
			}
		})
	}
}

func TestCoverArtIsSkipped(t *testing.T) {
	bin := fakeff.Install(t)
	path := filepath.Join(t.TempDir(), "album.mp4")
	fakeff.WriteMedia(t, path, fakeff.Media{Width: 4, Height: 2, Rate: "25/1", Frames: 7, CoverArt: true})

	for _, count := range []bool{false, true} {
		pr, err := Probe(context.Background(), bin, path, Options{CountFrames: count})
		if err != nil {
			t.Fatalf("Probe(count=%t): %v", count, err)
		}
		v := pr.PrimaryVideo
		if v == nil {
			t.Fatalf("count=%t: PrimaryVideo is nil", count)
		}
		if v.Index != 1 || v.Width != 4 || v.Height != 2 {
			t.Errorf("count=%t: stream %d %dx%d, want stream 1 4x2", count, v.Index, v.Width, v.Height)
		}
		if v.FrameCount() != 7 {
			t.Errorf("count=%t: frame count %d, want 7", count, v.FrameCount())
		}
	}
}
