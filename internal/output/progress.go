package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Section prints a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}

const progressThrottle = 65 * time.Millisecond

// Progress reports directory visits while a scan runs.
type Progress interface {
	Visit(dir string)
	Done()
}

// NewProgress returns a spinner on w when enabled, otherwise a no-op.
func NewProgress(w io.Writer, enabled bool) Progress {
	if !enabled {
		return noOpProgress{}
	}
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("scanning"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("dirs"),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionThrottle(progressThrottle),
	)
	return &spinner{bar: bar}
}

type spinner struct {
	bar *progressbar.ProgressBar
}

func (s *spinner) Visit(string) {
	_ = s.bar.Add(1)
}

func (s *spinner) Done() {
	_ = s.bar.Finish()
}

type noOpProgress struct{}

func (noOpProgress) Visit(string) {}

func (noOpProgress) Done() {}
