package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	natsclient "github.com/abgdnv/catalog/pkg/nats"
	"github.com/spf13/cobra"
)

var errNatsDisabled = errors.New("NATS no configurado (CATALOGCTL_NATS_URL o --nats-url)")

// eventsCommand tails the events catalogd publishes until interrupted.
func eventsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eventos",
		Short: "Muestra los eventos del catálogo a medida que se publican",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !app.cfg.Nats.Enabled() {
				return errNatsDisabled
			}
			if err := app.cfg.Events.Validate(); err != nil {
				return err
			}
			nc, err := natsclient.NewClient(app.cfg.Nats.Url, "catalogctl", app.cfg.Nats.Timeout)
			if err != nil {
				return err
			}
			defer nc.Close()
			js, err := natsclient.NewJetStreamContext(nc)
			if err != nil {
				return err
			}

			err = natsclient.Subscribe(cmd.Context(), js, app.cfg.Nats.Stream, app.cfg.Events,
				app.printEvent(cmd.OutOrStdout()), app.logger)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&app.cfg.Nats.Url, "nats-url", app.cfg.Nats.Url, "URL de NATS (env CATALOGCTL_NATS_URL)")
	cmd.Flags().StringVar(&app.cfg.Events.Subject, "subject", app.cfg.Events.Subject, "Filtro de subject, p. ej. catalog.productos.>")
	cmd.Flags().BoolVar(&app.cfg.Events.FromStart, "desde-inicio", app.cfg.Events.FromStart, "Incluir los eventos ya retenidos en el stream")
	return cmd
}

// printEvent returns a handler writing one line per event: the subject followed by the
// payload without its trace carrier, or a JSON object per line with -o json.
func (a *App) printEvent(w io.Writer) natsclient.Handler {
	var mu sync.Mutex
	return func(ctx context.Context, subject string, data []byte) error {
		var payload map[string]any
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		delete(payload, "carrier")
		a.logger.DebugContext(ctx, "event received", "subject", subject)

		mu.Lock()
		defer mu.Unlock()
		if a.output == outputJSON {
			return json.NewEncoder(w).Encode(struct {
				Subject string         `json:"subject"`
				Event   map[string]any `json:"event"`
			}{subject, payload})
		}
		body, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s %s\n", subject, body)
		return err
	}
}
