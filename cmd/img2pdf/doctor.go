package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"

	img2pdf "github.com/alnah/go-img2pdf"
	"github.com/alnah/go-img2pdf/internal/hints"
)

// Doctor status values.
const (
	doctorReady    = "ready"
	doctorWarnings = "warnings"
	doctorErrors   = "errors"
)

// doctorPageSide is the side in pixels of the test image.
const doctorPageSide = 8

// ErrDoctorFailed is returned when at least one check reports an error.
var ErrDoctorFailed = errors.New("system check failed")

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string       `json:"status"` // "ready", "warnings", "errors"
	Renderer rendererInfo `json:"renderer"`
	Env      envInfo      `json:"environment"`
	System   systemInfo   `json:"system"`
	Warnings []string     `json:"warnings,omitempty"`
	Errors   []string     `json:"errors,omitempty"`
}

// rendererInfo holds the results of the build and render round trip.
type rendererInfo struct {
	Build  bool   `json:"build"`
	Render bool   `json:"render"`
	Pages  int    `json:"pages,omitempty"`
	Size   string `json:"size,omitempty"` // rendered pixels, e.g. "60x85"
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string   `json:"os"`
	Arch          string   `json:"arch"`
	CGO           bool     `json:"cgo"`
	MaxProcs      int      `json:"gomaxprocs"`
	RenderWorkers int      `json:"render_workers"`
	Container     bool     `json:"container"`
	ContainerHint string   `json:"container_hint,omitempty"`
	CI            bool     `json:"ci"`
	UnknownVars   []string `json:"unknown_vars,omitempty"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctor executes the doctor command.
// Warnings keep the exit code at 0; any error returns ErrDoctorFailed.
func runDoctor(ctx context.Context, args []string, env *Environment) error {
	f, err := parseDoctorFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	result := diagnose(ctx, env)

	if f.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == doctorErrors {
		return fmt.Errorf("%w: %d error(s)", ErrDoctorFailed, len(result.Errors))
	}
	return nil
}

// diagnose performs all diagnostic checks.
func diagnose(ctx context.Context, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: doctorReady,
		Env: envInfo{
			OS:            runtime.GOOS,
			Arch:          runtime.GOARCH,
			CGO:           cgoEnabled(),
			MaxProcs:      runtime.GOMAXPROCS(0),
			RenderWorkers: img2pdf.ResolvePoolSize(0),
		},
	}

	checkRenderer(ctx, env, result)
	checkEnvironment(result)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = doctorErrors
	} else if len(result.Warnings) > 0 {
		result.Status = doctorWarnings
	}

	return result
}

// checkRenderer builds a one-page document and renders it back.
func checkRenderer(ctx context.Context, env *Environment, result *doctorResult) {
	data, err := doctorImage()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Test image: %v", err))
		return
	}
	img, err := img2pdf.NewImage("doctor.png", data)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Test image: %v", err))
		return
	}

	res, err := img2pdf.NewConverter().Convert(ctx, img2pdf.Input{
		Images:  []*img2pdf.Image{img},
		Options: img2pdf.DefaultConversionOptions(),
	})
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("PDF build: %v", err))
		return
	}
	result.Renderer.Build = true

	preview, err := img2pdf.OpenPreview(res.PDF, env.previewOptions(1)...)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Preview: %v%s", err, hints.ForPreviewLoad()))
		return
	}
	defer func() { _ = preview.Close() }()

	page, err := preview.Render()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Preview render: %v", err))
		return
	}
	result.Renderer.Render = true
	result.Renderer.Pages = preview.State().Total
	b := page.Bounds()
	result.Renderer.Size = fmt.Sprintf("%dx%d", b.Dx(), b.Dy())
}

// doctorImage encodes a small opaque PNG.
func doctorImage() ([]byte, error) {
	img := image.NewNRGBA(image.Rect(0, 0, doctorPageSide, doctorPageSide))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 0x20, 0x60, 0xa0, 0xff
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// cgoEnabled reports whether the binary was built with cgo, which links
// MuPDF statically.
func cgoEnabled() bool {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return false
	}
	for _, s := range info.Settings {
		if s.Key == "CGO_ENABLED" {
			return s.Value == "1"
		}
	}
	return false
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()

	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	result.Env.UnknownVars = unknownEnvVars()
	for _, name := range result.Env.UnknownVars {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Unknown environment variable %s (typo?)", name))
	}

	if !result.Env.CGO && !result.Renderer.Render {
		result.Warnings = append(result.Warnings,
			"Built without cgo: preview loads libmupdf at run time")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	if os.Getenv("IMG2PDF_CONTAINER") == "1" {
		return true, "IMG2PDF_CONTAINER=1"
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies system requirements.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	f, err := os.CreateTemp(tmpDir, "img2pdf-doctor-*")
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
		return
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "img2pdf doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Rendering")
	if r.Renderer.Build {
		fmt.Fprintln(w, "  [OK] PDF build: gofpdf")
	} else {
		fmt.Fprintln(w, "  [ERROR] PDF build: failed")
	}
	if r.Renderer.Render {
		fmt.Fprintf(w, "  [OK] Preview: MuPDF rendered %d page(s) at %s px\n", r.Renderer.Pages, r.Renderer.Size)
	} else {
		fmt.Fprintln(w, "  [ERROR] Preview: MuPDF unavailable")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	fmt.Fprintf(w, "  [OK] GOMAXPROCS: %d (render workers: %d)\n", r.Env.MaxProcs, r.Env.RenderWorkers)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintf(w, "  [OK] Temp directory: writable (%s)\n", filepath.Clean(os.TempDir()))
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case doctorReady:
		fmt.Fprintln(w, "Status: Ready to convert")
	case doctorWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case doctorErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
