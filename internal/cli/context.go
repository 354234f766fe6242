// Package cli holds the tripctl commands.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/example/trip-refiner/internal/app"
)

// Context is passed to every command's Run method.
type Context struct {
	Ctx context.Context
	App *app.App
	Out io.Writer
}

func (c *Context) ctx() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).MarginTop(1)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)
