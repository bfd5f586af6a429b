// Package console shows assistant replies in a terminal.
package console

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/sealor/stock-chat/pkg/assistant"
	"github.com/sealor/stock-chat/pkg/chart"
	"github.com/sealor/stock-chat/pkg/conversation"
)

type Console struct {
	out      io.Writer
	chartDir string
	now      func() time.Time
	// streaming is set once streamed text started a line that is not yet ended.
	streaming bool

	label lipgloss.Style
	fail  lipgloss.Style
	path  lipgloss.Style
	muted lipgloss.Style
}

func New(out io.Writer, chartDir string) *Console {
	renderer := lipgloss.NewRenderer(out)

	return &Console{
		out:      out,
		chartDir: chartDir,
		now:      time.Now,
		label:    renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		fail:     renderer.NewStyle().Foreground(lipgloss.Color("1")),
		path:     renderer.NewStyle().Underline(true),
		muted:    renderer.NewStyle().Faint(true),
	}
}

func (c *Console) Reply(reply assistant.Reply) error {
	if reply.Image != nil {
		c.endStream()
		return c.Image(reply.Image)
	}
	if reply.Streamed {
		c.endStream()
		return nil
	}
	c.Text(reply.Text)
	return nil
}

// Stream returns the writer the assistant streams answer text to. The label is
// printed before the first chunk of each answer.
func (c *Console) Stream() io.Writer {
	return streamWriter{c}
}

type streamWriter struct {
	c *Console
}

func (w streamWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if !w.c.streaming {
		if _, err := fmt.Fprint(w.c.out, w.c.label.Render("Assistant:"), " "); err != nil {
			return 0, err
		}
		w.c.streaming = true
	}
	return w.c.out.Write(p)
}

func (c *Console) endStream() {
	if c.streaming {
		fmt.Fprintln(c.out)
		c.streaming = false
	}
}

func (c *Console) Text(text string) {
	fmt.Fprintln(c.out, c.label.Render("Assistant:"), text)
}

// Image writes the chart to the chart directory since a terminal cannot show it.
func (c *Console) Image(img *chart.Image) error {
	if err := os.MkdirAll(c.chartDir, 0755); err != nil {
		return err
	}

	name := fmt.Sprintf("%s-%s.png", img.Ticker, c.now().Format("20060102-150405"))
	path := filepath.Join(c.chartDir, name)
	if err := os.WriteFile(path, img.PNG, 0644); err != nil {
		return err
	}

	fmt.Fprintln(c.out, c.label.Render("Chart:"), img.Title, c.path.Render(path))
	return nil
}

// Notice prints session messages such as the greeting.
func (c *Console) Notice(text string) {
	fmt.Fprintln(c.out, c.muted.Render(text))
}

func (c *Console) History(conv conversation.Conversation) error {
	return conversation.WriteTranscript(c.out, conv)
}

func (c *Console) Error(err error) {
	c.endStream()
	fmt.Fprintln(c.out, c.fail.Render(fmt.Sprintf("An error occurred: %s, please try again.", err)))
}
