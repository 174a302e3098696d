package probe

import (
	"context"
	"errors"
	"testing"
)

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"exact 25", "25/1", 25},
		{"ntsc 29.97 rounds to 30", "30000/1001", 30},
		{"ntsc 23.976 rounds to 24", "24000/1001", 24},
		{"rounds half up", "49/2", 25},
		{"zero denominator", "25/0", 25},
		{"garbage", "not-a-rate", 25},
		{"empty", "", 25},
		{"missing denominator", "30", 25},
		{"non-numeric numerator", "abc/1", 25},
		{"tiny rate floors at 1", "1/10", 1},
		{"zero numerator floors at 1", "0/1", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseFrameRate(tt.input); got != tt.want {
				t.Errorf("parseFrameRate(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name         string
		output       string
		wantWidth    int
		wantHeight   int
		wantFPS      int
		wantDuration float64
		wantErr      error
	}{
		{
			name: "full metadata",
			output: `{
				"streams": [{"width": 1920, "height": 1080, "duration": "60.5", "r_frame_rate": "30000/1001"}],
				"format": {"duration": "61.0"}
			}`,
			wantWidth: 1920, wantHeight: 1080, wantFPS: 30, wantDuration: 61.0,
		},
		{
			name: "format duration missing falls back to stream",
			output: `{
				"streams": [{"width": 1280, "height": 720, "duration": "42.2", "r_frame_rate": "25/1"}],
				"format": {}
			}`,
			wantWidth: 1280, wantHeight: 720, wantFPS: 25, wantDuration: 42.2,
		},
		{
			name: "no duration anywhere is not an error",
			output: `{
				"streams": [{"width": 640, "height": 480, "r_frame_rate": "24/1"}],
				"format": {}
			}`,
			wantWidth: 640, wantHeight: 480, wantFPS: 24, wantDuration: 0,
		},
		{
			name:    "no streams",
			output:  `{"streams": [], "format": {"duration": "10.0"}}`,
			wantErr: ErrNoVideoStream,
		},
		{
			name: "zero width",
			output: `{
				"streams": [{"width": 0, "height": 1080, "r_frame_rate": "25/1"}],
				"format": {}
			}`,
			wantErr: ErrInvalidResolution,
		},
		{
			name: "zero height",
			output: `{
				"streams": [{"width": 1920, "height": 0, "r_frame_rate": "25/1"}],
				"format": {}
			}`,
			wantErr: ErrInvalidResolution,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := parse([]byte(tt.output), "test.mp4")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("parse() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse() error = %v", err)
			}
			if info.Width != tt.wantWidth || info.Height != tt.wantHeight {
				t.Errorf("dimensions = %dx%d, want %dx%d",
					info.Width, info.Height, tt.wantWidth, tt.wantHeight)
			}
			if info.FPS != tt.wantFPS {
				t.Errorf("fps = %d, want %d", info.FPS, tt.wantFPS)
			}
			if info.Duration != tt.wantDuration {
				t.Errorf("duration = %v, want %v", info.Duration, tt.wantDuration)
			}
		})
	}
}

func TestParseMalformedJSON(t *testing.T) {
	if _, err := parse([]byte("not json at all"), "test.mp4"); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}

func TestProbeWithStubbedRunner(t *testing.T) {
	orig := runFFprobe
	defer func() { runFFprobe = orig }()

	runFFprobe = func(_ context.Context, path string) ([]byte, error) {
		if path != "/media/source/clip.mp4" {
			t.Errorf("runFFprobe path = %q", path)
		}
		return []byte(`{
			"streams": [{"width": 854, "height": 480, "r_frame_rate": "25/1"}],
			"format": {"duration": "12.0"}
		}`), nil
	}

	info, err := Probe(context.Background(), "/media/source/clip.mp4")
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if info.Width != 854 || info.Height != 480 || info.Duration != 12.0 {
		t.Errorf("Probe() = %+v", info)
	}
}

func TestProbeRunnerFailure(t *testing.T) {
	orig := runFFprobe
	defer func() { runFFprobe = orig }()

	runFFprobe = func(_ context.Context, _ string) ([]byte, error) {
		return nil, errors.New("exec: ffprobe: not found")
	}

	if _, err := Probe(context.Background(), "clip.mp4"); err == nil {
		t.Error("Expected error when ffprobe fails")
	}
}
