package store

import (
	"context"
	"errors"
	"fmt"

	backenderrors "github.com/abgdnv/catalog/internal/backend/errors"
	"github.com/abgdnv/catalog/internal/catalog"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const foreignKeyViolation = "23503"

const (
	productFK = "producto_tiendas_producto_id_fkey"
	storeFK   = "producto_tiendas_tienda_id_fkey"
)

type PgStore struct {
	db    *pgxpool.Pool
	newID func() uuid.UUID
}

// NewPgStore creates a new instance of CatalogStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{
		db:    dbp,
		newID: uuid.New,
	}
}

var _ CatalogStore = (*PgStore)(nil)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (p *PgStore) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	rows, err := p.db.Query(ctx, `SELECT id::text, nombre, precio, tipo FROM productos ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", backenderrors.ErrList, err)
	}
	products, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (catalog.Product, error) { return scanProduct(r) })
	if err != nil {
		return nil, fmt.Errorf("%w: %w", backenderrors.ErrList, err)
	}
	return products, nil
}

func (p *PgStore) FindProduct(ctx context.Context, id catalog.ID) (catalog.Product, error) {
	key, ok := parseID(id)
	if !ok {
		return catalog.Product{}, backenderrors.ErrProductNotFound
	}
	row := p.db.QueryRow(ctx, `SELECT id::text, nombre, precio, tipo FROM productos WHERE id = $1`, key)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Product{}, backenderrors.ErrProductNotFound
		}
		return catalog.Product{}, fmt.Errorf("%w: %w", backenderrors.ErrFind, err)
	}
	return product, nil
}

func (p *PgStore) CreateProduct(ctx context.Context, product catalog.Product) (catalog.Product, error) {
	product.ID = catalog.ID(p.newID().String())
	_, err := p.db.Exec(ctx, `INSERT INTO productos (id, nombre, precio, tipo) VALUES ($1, $2, $3, $4)`,
		string(product.ID), product.Nombre, product.Precio, string(product.Tipo))
	if err != nil {
		return catalog.Product{}, fmt.Errorf("%w: %w", backenderrors.ErrCreate, err)
	}
	return product, nil
}

func (p *PgStore) UpdateProduct(ctx context.Context, id catalog.ID, product catalog.Product) (catalog.Product, error) {
	key, ok := parseID(id)
	if !ok {
		return catalog.Product{}, backenderrors.ErrProductNotFound
	}
	tag, err := p.db.Exec(ctx, `UPDATE productos SET nombre = $2, precio = $3, tipo = $4, updated_at = now() WHERE id = $1`,
		key, product.Nombre, product.Precio, string(product.Tipo))
	if err != nil {
		return catalog.Product{}, fmt.Errorf("%w: %w", backenderrors.ErrUpdate, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.Product{}, backenderrors.ErrProductNotFound
	}
	product.ID = id
	return product, nil
}

func (p *PgStore) DeleteProduct(ctx context.Context, id catalog.ID) (int64, error) {
	key, ok := parseID(id)
	if !ok {
		return 0, backenderrors.ErrProductNotFound
	}
	return p.deleteWithPairs(ctx, key,
		`DELETE FROM producto_tiendas WHERE producto_id = $1`,
		`DELETE FROM productos WHERE id = $1`,
		backenderrors.ErrProductNotFound)
}

func (p *PgStore) ListStores(ctx context.Context) ([]catalog.Store, error) {
	rows, err := p.db.Query(ctx, `SELECT id::text, nombre, ciudad, direccion FROM tiendas ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", backenderrors.ErrList, err)
	}
	stores, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (catalog.Store, error) { return scanStore(r) })
	if err != nil {
		return nil, fmt.Errorf("%w: %w", backenderrors.ErrList, err)
	}
	return stores, nil
}

func (p *PgStore) FindStore(ctx context.Context, id catalog.ID) (catalog.Store, error) {
	key, ok := parseID(id)
	if !ok {
		return catalog.Store{}, backenderrors.ErrStoreNotFound
	}
	row := p.db.QueryRow(ctx, `SELECT id::text, nombre, ciudad, direccion FROM tiendas WHERE id = $1`, key)
	store, err := scanStore(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Store{}, backenderrors.ErrStoreNotFound
		}
		return catalog.Store{}, fmt.Errorf("%w: %w", backenderrors.ErrFind, err)
	}
	return store, nil
}

func (p *PgStore) CreateStore(ctx context.Context, store catalog.Store) (catalog.Store, error) {
	store.ID = catalog.ID(p.newID().String())
	_, err := p.db.Exec(ctx, `INSERT INTO tiendas (id, nombre, ciudad, direccion) VALUES ($1, $2, $3, $4)`,
		string(store.ID), store.Nombre, store.Ciudad, store.Direccion)
	if err != nil {
		return catalog.Store{}, fmt.Errorf("%w: %w", backenderrors.ErrCreate, err)
	}
	return store, nil
}

func (p *PgStore) UpdateStore(ctx context.Context, id catalog.ID, store catalog.Store) (catalog.Store, error) {
	key, ok := parseID(id)
	if !ok {
		return catalog.Store{}, backenderrors.ErrStoreNotFound
	}
	tag, err := p.db.Exec(ctx, `UPDATE tiendas SET nombre = $2, ciudad = $3, direccion = $4, updated_at = now() WHERE id = $1`,
		key, store.Nombre, store.Ciudad, store.Direccion)
	if err != nil {
		return catalog.Store{}, fmt.Errorf("%w: %w", backenderrors.ErrUpdate, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.Store{}, backenderrors.ErrStoreNotFound
	}
	store.ID = id
	return store, nil
}

func (p *PgStore) DeleteStore(ctx context.Context, id catalog.ID) (int64, error) {
	key, ok := parseID(id)
	if !ok {
		return 0, backenderrors.ErrStoreNotFound
	}
	return p.deleteWithPairs(ctx, key,
		`DELETE FROM producto_tiendas WHERE tienda_id = $1`,
		`DELETE FROM tiendas WHERE id = $1`,
		backenderrors.ErrStoreNotFound)
}

func (p *PgStore) CreateAssociation(ctx context.Context, productID, storeID catalog.ID) (bool, error) {
	pk, ok := parseID(productID)
	if !ok {
		return false, backenderrors.ErrProductNotFound
	}
	sk, ok := parseID(storeID)
	if !ok {
		return false, backenderrors.ErrStoreNotFound
	}
	tag, err := p.db.Exec(ctx,
		`INSERT INTO producto_tiendas (producto_id, tienda_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, pk, sk)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			switch pgErr.ConstraintName {
			case productFK:
				return false, backenderrors.ErrProductNotFound
			case storeFK:
				return false, backenderrors.ErrStoreNotFound
			}
		}
		return false, fmt.Errorf("%w: %w", backenderrors.ErrAssociation, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (p *PgStore) DeleteAssociation(ctx context.Context, productID, storeID catalog.ID) (bool, error) {
	pk, ok := parseID(productID)
	if !ok {
		return false, nil
	}
	sk, ok := parseID(storeID)
	if !ok {
		return false, nil
	}
	tag, err := p.db.Exec(ctx, `DELETE FROM producto_tiendas WHERE producto_id = $1 AND tienda_id = $2`, pk, sk)
	if err != nil {
		return false, fmt.Errorf("%w: %w", backenderrors.ErrAssociation, err)
	}
	return tag.RowsAffected() == 1, nil
}

// deleteWithPairs removes the join rows first so the count of dropped associations can be reported.
func (p *PgStore) deleteWithPairs(ctx context.Context, key string, pairsSQL, entitySQL string, notFound error) (int64, error) {
	var removed int64
	txErr := p.withTransaction(ctx, func(q querier) error {
		tag, err := q.Exec(ctx, pairsSQL, key)
		if err != nil {
			return fmt.Errorf("%w: %w", backenderrors.ErrDelete, err)
		}
		removed = tag.RowsAffected()
		tag, err = q.Exec(ctx, entitySQL, key)
		if err != nil {
			return fmt.Errorf("%w: %w", backenderrors.ErrDelete, err)
		}
		if tag.RowsAffected() == 0 {
			return notFound
		}
		return nil
	})
	if txErr != nil {
		return 0, txErr
	}
	return removed, nil
}

func (p *PgStore) withTransaction(ctx context.Context, fn func(q querier) error) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return backenderrors.ErrTransactionBegin
	}

	err = fn(tx)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return backenderrors.ErrTransactionRollback
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return backenderrors.ErrTransactionCommit
	}

	return nil
}

// parseID reports false for ids that cannot exist in a uuid column.
func parseID(id catalog.ID) (string, bool) {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return "", false
	}
	return u.String(), true
}

func scanProduct(row pgx.Row) (catalog.Product, error) {
	var id, nombre, tipo string
	var precio float64
	if err := row.Scan(&id, &nombre, &precio, &tipo); err != nil {
		return catalog.Product{}, err
	}
	return catalog.Product{ID: catalog.ID(id), Nombre: nombre, Precio: precio, Tipo: catalog.Tipo(tipo)}, nil
}

func scanStore(row pgx.Row) (catalog.Store, error) {
	var id, nombre, ciudad, direccion string
	if err := row.Scan(&id, &nombre, &ciudad, &direccion); err != nil {
		return catalog.Store{}, err
	}
	return catalog.Store{ID: catalog.ID(id), Nombre: nombre, Ciudad: ciudad, Direccion: direccion}, nil
}
