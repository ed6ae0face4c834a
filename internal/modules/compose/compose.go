// Package compose prepends a still cover image to a video with ffmpeg
package compose

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/antoniolg/agent-kit/internal/mod"
	"github.com/antoniolg/agent-kit/internal/runner"
	"github.com/antoniolg/agent-kit/internal/utils"
)

// DefaultIntroMs is how long the cover is shown when introMs is not given
const DefaultIntroMs = 500

// probe allows us to mock ffprobe in tests
var probe = ffmpeg.Probe

// Module implements the cover compositor
type Module struct {
	run runner.Runner
}

// Params contains the parameters for the compositor
type Params struct {
	Video     string `json:"video"`     // Source video
	Thumbnail string `json:"thumbnail"` // Cover image shown first
	Output    string `json:"output"`    // Output MP4 path
	IntroMs   *int   `json:"introMs"`   // Cover duration in milliseconds (default: 500)
}

// New creates a compositor that runs ffmpeg through r
func New(r runner.Runner) mod.Module {
	return &Module{run: r}
}

// Name returns the module name
func (m *Module) Name() string {
	return "compose"
}

func (p Params) introMs() int {
	if p.IntroMs == nil {
		return DefaultIntroMs
	}
	return *p.IntroMs
}

// Validate checks if the parameters are valid
func (m *Module) Validate(params map[string]interface{}) error {
	var p Params
	if err := mod.ParseParams(params, &p); err != nil {
		return err
	}

	if err := utils.RequireFile("video", p.Video); err != nil {
		return err
	}
	if err := utils.RequireFile("thumbnail", p.Thumbnail); err != nil {
		return err
	}
	if err := validateCover(p.Thumbnail); err != nil {
		return err
	}
	if err := utils.RequireValue("output", p.Output); err != nil {
		return err
	}
	if p.introMs() <= 0 {
		return &utils.ValidationError{
			Field:   "introMs",
			Message: fmt.Sprintf("intro duration must be > 0, got %d", p.introMs()),
		}
	}

	for _, dep := range []string{"ffmpeg", "ffprobe"} {
		if err := utils.ValidateRequiredDependency(dep); err != nil {
			return err
		}
	}
	return nil
}

// validateCover makes sure ffmpeg will be able to read the cover
func validateCover(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open thumbnail: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return &utils.ValidationError{
			Field:   "thumbnail",
			Message: fmt.Sprintf("%s is not a supported image", path),
			Err:     err,
		}
	}
	utils.LogDebug("Cover %s: %s %dx%d", path, format, cfg.Width, cfg.Height)
	return nil
}

// Execute builds the composed video
func (m *Module) Execute(ctx context.Context, params map[string]interface{}) (mod.ModuleResult, error) {
	var p Params
	if err := mod.ParseParams(params, &p); err != nil {
		return mod.ModuleResult{}, err
	}
	intro := p.introMs()
	if intro <= 0 {
		return mod.ModuleResult{}, fmt.Errorf("intro duration must be > 0, got %d", intro)
	}

	if err := utils.EnsureParentDir(p.Output); err != nil {
		return mod.ModuleResult{}, err
	}

	withAudio, err := HasAudio(p.Video)
	if err != nil {
		return mod.ModuleResult{}, err
	}
	utils.LogVerbose("Source has audio: %t", withAudio)

	utils.LogInfo("Composing %s with a %dms cover", p.Video, intro)
	if _, err := m.run.Run(ctx, "ffmpeg", BuildArgs(p.Video, p.Thumbnail, p.Output, intro, withAudio)...); err != nil {
		return mod.ModuleResult{}, err
	}

	utils.LogSuccess("Composed video written to %s", p.Output)
	utils.Println(p.Output)
	return mod.ModuleResult{
		Outputs: map[string]string{"video": p.Output},
		Metadata: map[string]interface{}{
			"introMs":  intro,
			"hasAudio": withAudio,
		},
	}, nil
}

// HasAudio reports whether the file has at least one audio stream
func HasAudio(path string) (bool, error) {
	kwargs := ffmpeg.KwArgs{"select_streams": "a", "v": "error"}
	out, err := probe(path, kwargs)
	if err != nil {
		return false, &runner.CommandError{
			Command: runner.FormatCommand("ffprobe", "-show_format", "-show_streams", "-of", "json", "-select_streams", "a", path),
			Stderr:  strings.TrimSpace(out),
			Err:     err,
		}
	}

	var data struct {
		Streams []json.RawMessage `json:"streams"`
	}
	if strings.TrimSpace(out) == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(out), &data); err != nil {
		return false, fmt.Errorf("failed to parse ffprobe output: %w\n%s", err, out)
	}
	return len(data.Streams) > 0, nil
}

// BuildArgs returns the ffmpeg arguments that show thumbnail for introMs
// and then play video, scaled to the video's size. Audio is delayed by
// the same amount so it stays in sync.
func BuildArgs(video, thumbnail, output string, introMs int, hasAudio bool) []string {
	seconds := strconv.FormatFloat(float64(introMs)/1000, 'f', -1, 64)

	graph := []string{
		"[0:v][1:v]scale2ref=w=iw:h=ih[cover_src][main_src]",
		fmt.Sprintf("[cover_src]trim=duration=%s,setpts=PTS-STARTPTS,setsar=1,format=yuv420p[cover]", seconds),
		"[main_src]setpts=PTS-STARTPTS,setsar=1,format=yuv420p[main]",
		"[cover][main]concat=n=2:v=1:a=0[v]",
	}
	if hasAudio {
		graph = append(graph, fmt.Sprintf("[1:a]adelay=%d:all=1[a]", introMs))
	}

	args := []string{
		"-y",
		"-loop", "1",
		"-framerate", "30",
		"-i", thumbnail,
		"-i", video,
		"-filter_complex", strings.Join(graph, ";"),
		"-map", "[v]",
	}
	if hasAudio {
		args = append(args, "-map", "[a]")
	}
	args = append(args, "-c:v", "libx264", "-pix_fmt", "yuv420p")
	if hasAudio {
		args = append(args, "-c:a", "aac", "-b:a", "192k")
	}
	return append(args, "-movflags", "+faststart", output)
}

// GetIO returns the module's input/output specification
func (m *Module) GetIO() mod.ModuleIO {
	return mod.ModuleIO{
		RequiredInputs: []mod.ModuleInput{
			{Name: "video", Description: "Source video", Patterns: []string{".mp4", ".mov", ".mkv"}, Type: string(mod.IOTypeFile)},
			{Name: "thumbnail", Description: "Cover image shown before the video", Patterns: []string{".jpg", ".jpeg", ".png", ".webp"}, Type: string(mod.IOTypeFile)},
			{Name: "output", Description: "Output MP4 path", Patterns: []string{".mp4"}, Type: string(mod.IOTypeFile)},
		},
		OptionalInputs: []mod.ModuleInput{
			{Name: "introMs", Description: "Cover duration in milliseconds (default: 500)", Type: string(mod.IOTypeData)},
		},
		ProducedOutputs: []mod.ModuleOutput{
			{Name: "video", Description: "Video with the cover prepended", Patterns: []string{".mp4"}, Type: string(mod.IOTypeFile)},
		},
	}
}
