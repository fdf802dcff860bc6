package main

import (
	"io"
	"os"
	"time"

	img2pdf "github.com/alnah/go-img2pdf"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time and the page renderer used by preview commands.
type Environment struct {
	Now      func() time.Time
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
	Renderer img2pdf.RendererFactory // nil = MuPDF
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// previewOptions returns the renderer options for this environment.
func (e *Environment) previewOptions(scale float64) []img2pdf.PreviewOption {
	opts := []img2pdf.PreviewOption{img2pdf.WithScale(scale)}
	if e.Renderer != nil {
		opts = append(opts, img2pdf.WithRenderer(e.Renderer))
	}
	return opts
}
