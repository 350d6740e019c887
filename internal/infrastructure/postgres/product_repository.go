package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, name, description, quantity, reorder_threshold, unit, category, supplier, owner_id, is_deleted, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Quantity, &p.ReorderThreshold, &p.Unit,
		&p.Category, &p.Supplier, &p.OwnerID, &p.IsDeleted, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.Quantity, p.ReorderThreshold, p.Unit,
		p.Category, p.Supplier, p.OwnerID, p.IsDeleted, p.CreatedAt, p.UpdatedAt,
	)
	return mapError(err, "insert product")
}

// GetByID obtiene un producto por ID (incluye eliminados lógicamente).
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.get(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetForUpdate obtiene el producto y bloquea la fila para update (SELECT FOR UPDATE).
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.get(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
}

func (r *ProductRepo) get(ctx context.Context, query, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(err, "get product")
	}
	return p, nil
}

// Update actualiza los metadatos. No permite modificar quantity (se maneja vía movimientos).
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products SET name = $2, description = $3, reorder_threshold = $4, unit = $5,
			category = $6, supplier = $7, updated_at = $8
		WHERE id = $1 AND NOT is_deleted`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.ReorderThreshold, p.Unit, p.Category, p.Supplier, p.UpdatedAt,
	)
	return mapError(err, "update product")
}

// UpdateQuantity fija la cantidad (solo el motor del ledger y el auditor la llaman, dentro de su tx).
func (r *ProductRepo) UpdateQuantity(ctx context.Context, id string, quantity int64) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET quantity = $2, updated_at = now() WHERE id = $1`,
		id, quantity,
	)
	if err != nil {
		return mapError(err, "update product quantity")
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update product quantity: producto %s no existe", id)
	}
	return nil
}

// SoftDelete marca el producto como eliminado; su historial se conserva.
func (r *ProductRepo) SoftDelete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `UPDATE products SET is_deleted = TRUE, updated_at = now() WHERE id = $1`, id)
	return mapError(err, "soft delete product")
}

// Delete elimina un producto por ID. Los movimientos no se borran.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	return mapError(err, "delete product")
}

// Search lista productos activos aplicando solo los filtros presentes.
func (r *ProductRepo) Search(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	qb := psql.Select(productColumns).From("products").
		Where(squirrel.Eq{"is_deleted": false}).
		OrderBy("created_at DESC")
	if f.OwnerID != "" {
		qb = qb.Where(squirrel.Eq{"owner_id": f.OwnerID})
	}
	if f.Name != "" {
		qb = qb.Where(squirrel.ILike{"name": "%" + f.Name + "%"})
	}
	if f.Category != "" {
		qb = qb.Where(squirrel.Eq{"category": f.Category})
	}
	if f.Unit != "" {
		qb = qb.Where(squirrel.Eq{"unit": f.Unit})
	}
	if f.Supplier != "" {
		qb = qb.Where(squirrel.ILike{"supplier": "%" + f.Supplier + "%"})
	}
	if f.LowStock {
		qb = qb.Where("quantity <= reorder_threshold")
	}
	if f.MinQty != nil {
		qb = qb.Where(squirrel.GtOrEq{"quantity": *f.MinQty})
	}
	if f.MaxQty != nil {
		qb = qb.Where(squirrel.LtOrEq{"quantity": *f.MaxQty})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build product search: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "search products")
	}
	defer rows.Close()

	list := []*entity.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// ListIDs IDs de todos los productos activos.
func (r *ProductRepo) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT id FROM products WHERE NOT is_deleted ORDER BY id`)
	if err != nil {
		return nil, mapError(err, "list product ids")
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan product ids: %w", err)
	}
	return ids, nil
}
