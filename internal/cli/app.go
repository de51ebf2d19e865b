// Package cli implements the catalogctl commands on top of a catalog.Session.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/abgdnv/catalog/internal/catalog"
	"github.com/abgdnv/catalog/internal/gateway"
)

const (
	outputText = "text"
	outputJSON = "json"
)

// App holds the state shared by every command of one process, so that an interactive
// session keeps its association cache between commands.
type App struct {
	cfg     *Config
	logger  *slog.Logger
	in      io.Reader
	output  string
	session *catalog.Session
	loaded  bool
}

// NewApp returns an App that connects lazily on the first command that needs the backend.
func NewApp(cfg *Config, in io.Reader, logger *slog.Logger) *App {
	return &App{cfg: cfg, logger: logger, in: in, output: outputText}
}

// Session returns the catalog session, creating the gateway client on first use.
func (a *App) Session() (*catalog.Session, error) {
	if a.session != nil {
		return a.session, nil
	}
	gw, err := gateway.New(a.cfg.Gateway, a.logger)
	if err != nil {
		return nil, err
	}
	a.session = catalog.NewSession(gw, a.logger)
	return a.session, nil
}

// load refreshes both collections once per App.
func (a *App) load(ctx context.Context) (*catalog.Session, error) {
	s, err := a.Session()
	if err != nil {
		return nil, err
	}
	if a.loaded {
		return s, nil
	}
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	a.loaded = true
	return s, nil
}

// render writes v as indented JSON or, in text mode, as the table produced by rows.
func (a *App) render(w io.Writer, v any, header []string, rows [][]string) error {
	if a.output == outputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	writeRow(tw, header)
	for _, r := range rows {
		writeRow(tw, r)
	}
	return tw.Flush()
}

func writeRow(w io.Writer, cols []string) {
	for i, c := range cols {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, c)
	}
	fmt.Fprintln(w)
}
