package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/spf13/cobra"
)

const prompt = "catalogo> "

// sessionCommand reads commands line by line and runs each against the same App, so the
// snapshots and the association cache survive between commands.
func sessionCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Sesión interactiva: lee comandos de la entrada estándar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if _, err := app.load(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(out, "%d productos, %d tiendas. Escribe 'help' o 'exit'.\n",
				app.session.Products.Len(), app.session.Stores.Len())

			scanner := bufio.NewScanner(app.in)
			for {
				fmt.Fprint(out, prompt)
				if !scanner.Scan() {
					fmt.Fprintln(out)
					return scanner.Err()
				}
				args, err := splitArgs(scanner.Text())
				if err != nil {
					fmt.Fprintf(out, "error: %v\n", err)
					continue
				}
				if len(args) == 0 {
					continue
				}
				switch args[0] {
				case "exit", "quit", "salir":
					return nil
				case "session":
					fmt.Fprintln(out, "error: ya estás en una sesión")
					continue
				case "eventos":
					fmt.Fprintln(out, "error: eventos no está disponible dentro de una sesión")
					continue
				}
				if err := app.runLine(cmd, args); err != nil {
					fmt.Fprintf(out, "error: %v\n", err)
				}
				if err := cmd.Context().Err(); err != nil {
					return err
				}
			}
		},
	}
}

// runLine executes one session line on a fresh command tree. Flags such as --output
// apply to that line only.
func (a *App) runLine(parent *cobra.Command, args []string) error {
	output := a.output
	defer func() { a.output = output }()

	root := NewRootCommand(a)
	root.SetArgs(args)
	root.SetIn(parent.InOrStdin())
	root.SetOut(parent.OutOrStdout())
	root.SetErr(parent.OutOrStdout())
	return root.ExecuteContext(parent.Context())
}

var errUnterminatedQuote = errors.New("comillas sin cerrar")

// splitArgs splits a line on whitespace, keeping single or double quoted text together.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inArg   bool
		quote   rune
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inArg = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inArg = true
		case unicode.IsSpace(r):
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(r)
			inArg = true
		}
	}
	if quote != 0 || escaped {
		return nil, errUnterminatedQuote
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args, nil
}
