package img2pdf

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// mmPerPoint converts PDF user space units to millimeters.
const mmPerPoint = 25.4 / 72

// disableConfigDir keeps pdfcpu from creating a config directory in $HOME.
var disableConfigDir = sync.OnceFunc(api.DisableConfigDir)

// DocumentInfo describes a produced or loaded PDF.
type DocumentInfo struct {
	Pages     int
	PageSizes [][2]float64 // width, height in mm per page
	Title     string
	Author    string
	Subject   string
	Creator   string
	Producer  string
	Text      []string // extracted text per page, trimmed
}

// Inspect validates pdf and reports its structure, metadata and text.
// Structure comes from pdfcpu; metadata and text come from a second parse
// with a lightweight reader. Parser panics on malformed input are
// returned as ErrInspect.
func Inspect(data []byte) (info *DocumentInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			info = nil
			err = fmt.Errorf("%w: malformed document: %v", ErrInspect, r)
		}
	}()

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInspect)
	}

	info, err = inspectStructure(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInspect, err)
	}
	if err := inspectContent(data, info); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInspect, err)
	}
	return info, nil
}

func inspectStructure(data []byte) (*DocumentInfo, error) {
	disableConfigDir()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("reading: %w", err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("validating: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("counting pages: %w", err)
	}

	info := &DocumentInfo{
		Pages:     ctx.PageCount,
		PageSizes: make([][2]float64, 0, ctx.PageCount),
	}
	for i := 1; i <= ctx.PageCount; i++ {
		_, _, inh, err := ctx.PageDict(i, false)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		if inh == nil || inh.MediaBox == nil {
			return nil, fmt.Errorf("page %d: missing media box", i)
		}
		info.PageSizes = append(info.PageSizes, [2]float64{
			inh.MediaBox.Width() * mmPerPoint,
			inh.MediaBox.Height() * mmPerPoint,
		})
	}
	return info, nil
}

func inspectContent(data []byte, info *DocumentInfo) error {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("parsing: %w", err)
	}

	meta := r.Trailer().Key("Info")
	info.Title = meta.Key("Title").Text()
	info.Author = meta.Key("Author").Text()
	info.Subject = meta.Key("Subject").Text()
	info.Creator = meta.Key("Creator").Text()
	info.Producer = meta.Key("Producer").Text()

	fonts := make(map[string]*pdf.Font)
	n := r.NumPage()
	info.Text = make([]string, n)
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		for _, name := range p.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := p.Font(name)
				fonts[name] = &f
			}
		}
		text, err := p.GetPlainText(fonts)
		if err != nil {
			return fmt.Errorf("text of page %d: %w", i, err)
		}
		info.Text[i-1] = strings.TrimSpace(text)
	}
	return nil
}
