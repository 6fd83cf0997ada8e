package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/yama/internal/client/services"
	"github.com/dmitrijs2005/yama/internal/logging"
	"github.com/dmitrijs2005/yama/internal/markdown"
)

type App struct {
	authService services.AuthService
	fileService services.FileService
	renderer    *markdown.Renderer
	logger      logging.Logger

	scanner *bufio.Scanner
	out     io.Writer
}

func NewApp(as services.AuthService, fs services.FileService, r *markdown.Renderer, l logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		authService: as,
		fileService: fs,
		renderer:    r,
		logger:      l,
		scanner:     bufio.NewScanner(in),
		out:         out,
	}
}

func (a *App) isLoggedIn() bool {
	return a.authService.IsLoggedIn()
}

func (a *App) getStatus() string {
	if !a.isLoggedIn() {
		return "(anonymous)"
	}
	ident, err := a.authService.Whoami()
	if err != nil {
		return "(logged in)"
	}
	return fmt.Sprintf("(%s)", ident.UserID.String()[:8])
}

// Run blocks until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to yama CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.scanner)
	a.logger.Info(ctx, "cli stopped")
}
