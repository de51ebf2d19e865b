package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/abgdnv/catalog/internal/catalog"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the catalogctl command tree over app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Administración del catálogo de productos y tiendas",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if app.output != outputText && app.output != outputJSON {
				return fmt.Errorf("formato de salida desconocido %q (text|json)", app.output)
			}
			// --base-url is applied after the loaded config was validated
			return app.cfg.Gateway.Validate()
		},
	}
	root.PersistentFlags().StringVarP(&app.output, "output", "o", app.output, "Formato de salida: text|json")
	root.PersistentFlags().StringVar(&app.cfg.Gateway.BaseURL, "base-url", app.cfg.Gateway.BaseURL, "URL base del backend (env CATALOGCTL_GATEWAY_BASEURL)")

	root.AddCommand(
		entityCommand(app, productSpec),
		entityCommand(app, storeSpec),
		associateCommand(app),
		disassociateCommand(app),
		associationsCommand(app),
		eventsCommand(app),
		sessionCommand(app),
	)
	return root
}

// entitySpec describes how one collection is exposed on the command line.
type entitySpec[T catalog.Entity] struct {
	use    string
	short  string
	repo   func(*catalog.Session) *catalog.Repository[T]
	codec  catalog.Codec[T]
	usage  map[string]string
	header []string
	row    func(T) []string
}

var productSpec = entitySpec[catalog.Product]{
	use:   "productos",
	short: "Listar, crear, editar y eliminar productos",
	repo:  func(s *catalog.Session) *catalog.Repository[catalog.Product] { return s.Products },
	codec: catalog.ProductCodec,
	usage: map[string]string{
		"nombre": "Nombre del producto",
		"precio": "Precio, mayor o igual a 0",
		"tipo":   "Perecedero | No perecedero",
	},
	header: []string{"ID", "NOMBRE", "PRECIO", "TIPO"},
	row: func(p catalog.Product) []string {
		return []string{string(p.ID), p.Nombre, strconv.FormatFloat(p.Precio, 'f', -1, 64), string(p.Tipo)}
	},
}

var storeSpec = entitySpec[catalog.Store]{
	use:   "tiendas",
	short: "Listar, crear, editar y eliminar tiendas",
	repo:  func(s *catalog.Session) *catalog.Repository[catalog.Store] { return s.Stores },
	codec: catalog.StoreCodec,
	usage: map[string]string{
		"nombre":    "Nombre de la tienda",
		"ciudad":    "Código de ciudad de 3 caracteres",
		"direccion": "Dirección de la tienda",
	},
	header: []string{"ID", "NOMBRE", "CIUDAD", "DIRECCION"},
	row: func(s catalog.Store) []string {
		return []string{string(s.ID), s.Nombre, s.Ciudad, s.Direccion}
	},
}

func entityCommand[T catalog.Entity](app *App, spec entitySpec[T]) *cobra.Command {
	cmd := &cobra.Command{Use: spec.use, Short: spec.short}

	list := &cobra.Command{
		Use:   "list",
		Short: "Listar " + spec.use,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.Session()
			if err != nil {
				return err
			}
			repo := spec.repo(s)
			if err := repo.Refresh(cmd.Context()); err != nil {
				return err
			}
			return renderRecords(app, cmd, spec, repo.Items())
		},
	}

	createValues := make(map[string]*string, len(spec.codec.Fields))
	create := &cobra.Command{
		Use:   "create",
		Short: "Crear un registro en " + spec.use,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.Session()
			if err != nil {
				return err
			}
			form := catalog.NewForm(spec.codec, catalog.Writer[T](spec.repo(s)))
			form.OpenCreate()
			for _, field := range spec.codec.Fields {
				if err := form.Set(field, *createValues[field]); err != nil {
					return err
				}
			}
			return submit(app, cmd, spec, form)
		},
	}

	updateValues := make(map[string]*string, len(spec.codec.Fields))
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Editar un registro de " + spec.use + "; solo cambian los campos indicados",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.Session()
			if err != nil {
				return err
			}
			repo := spec.repo(s)
			if err := repo.Refresh(cmd.Context()); err != nil {
				return err
			}
			rec, ok := repo.Find(catalog.ID(args[0]))
			if !ok {
				return fmt.Errorf("%s %s no existe", repo.Kind(), args[0])
			}
			form := catalog.NewForm(spec.codec, catalog.Writer[T](repo))
			if err := form.OpenEdit(rec); err != nil {
				return err
			}
			for _, field := range spec.codec.Fields {
				if !cmd.Flags().Changed(field) {
					continue
				}
				if err := form.Set(field, *updateValues[field]); err != nil {
					return err
				}
			}
			return submit(app, cmd, spec, form)
		},
	}

	for _, field := range spec.codec.Fields {
		createValues[field] = create.Flags().String(field, "", spec.usage[field])
		updateValues[field] = update.Flags().String(field, "", spec.usage[field])
	}

	remove := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Eliminar un registro de " + spec.use + " y sus asociaciones conocidas",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.Session()
			if err != nil {
				return err
			}
			if err := spec.repo(s).Delete(cmd.Context(), catalog.ID(args[0])); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "eliminado %s %s\n", spec.repo(s).Kind(), args[0])
			return nil
		},
	}

	cmd.AddCommand(list, create, update, remove)
	return cmd
}

// submit sends the form and prints the saved record. When only the refresh after the
// write failed, the record was saved and the failure is printed as a warning.
func submit[T catalog.Entity](app *App, cmd *cobra.Command, spec entitySpec[T], form *catalog.Form[T]) error {
	saved, err := form.Submit(cmd.Context())
	if err != nil {
		if !errors.Is(err, catalog.ErrFetch) {
			return err
		}
		cmd.PrintErrf("aviso: guardado, pero no se pudo recargar la lista: %v\n", err)
	}
	return renderRecords(app, cmd, spec, []T{saved})
}

func renderRecords[T catalog.Entity](app *App, cmd *cobra.Command, spec entitySpec[T], items []T) error {
	if items == nil {
		items = []T{}
	}
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, spec.row(it))
	}
	return app.render(cmd.OutOrStdout(), items, spec.header, rows)
}

func associateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "asociar <productoId> <tiendaId>",
		Short: "Asociar un producto a una tienda",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.Session()
			if err != nil {
				return err
			}
			if err := s.Associations.Associate(cmd.Context(), catalog.ID(args[0]), catalog.ID(args[1])); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "asociado producto %s a tienda %s\n", args[0], args[1])
			return nil
		},
	}
}

func disassociateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "desasociar <productoId> <tiendaId>",
		Short: "Eliminar la asociación entre un producto y una tienda",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.Session()
			if err != nil {
				return err
			}
			if err := s.Associations.Disassociate(cmd.Context(), catalog.ID(args[0]), catalog.ID(args[1])); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "desasociado producto %s de tienda %s\n", args[0], args[1])
			return nil
		},
	}
}

// associationsCommand lists the pairs observed by this process. The backend has no
// endpoint to read them, so a one-shot invocation always starts from an empty set.
func associationsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "asociaciones",
		Short: "Listar las asociaciones conocidas en esta sesión",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.load(cmd.Context())
			if err != nil {
				return err
			}
			var resolved []catalog.Resolved
			rows := [][]string{}
			for r := range s.Associated() {
				resolved = append(resolved, r)
				rows = append(rows, []string{string(r.Product.ID), r.Product.Nombre, string(r.Store.ID), r.Store.Nombre, r.Store.Ciudad})
			}
			if resolved == nil {
				resolved = []catalog.Resolved{}
			}
			return app.render(cmd.OutOrStdout(), resolved,
				[]string{"PRODUCTO", "NOMBRE", "TIENDA", "NOMBRE", "CIUDAD"}, rows)
		},
	}
}
