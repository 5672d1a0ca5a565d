package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mariapr27/my-store-app/internal/domain"
)

type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
	Stock       int
	ImageURL    string
	Category    domain.ProductCategory
	SaleType    domain.SaleType
}

// UpdateProductInput carries a partial update; nil fields are left as-is.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *float64
	Stock       *int
	ImageURL    *string
	Category    *domain.ProductCategory
	SaleType    *domain.SaleType
}

const productColumns = `id, name, description, price, stock, image_url, category, sale_type, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	p := &domain.Product{}
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Stock,
		&p.ImageURL,
		&p.Category,
		&p.SaleType,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Repository) GetAllProducts(ctx context.Context) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return products, nil
}

func (r *Repository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	return p, nil
}

func (r *Repository) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	query := `INSERT INTO products (id, name, description, price, stock, image_url, category, sale_type)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING ` + productColumns

	p, err := scanProduct(r.db.QueryRowContext(ctx, query,
		uuid.New().String(),
		input.Name,
		input.Description,
		input.Price,
		input.Stock,
		input.ImageURL,
		input.Category,
		input.SaleType,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}
	return p, nil
}

func (r *Repository) UpdateProduct(ctx context.Context, id string, input UpdateProductInput) (*domain.Product, error) {
	var fields []string
	var values []any
	paramIndex := 1

	addField := func(column string, value any) {
		fields = append(fields, fmt.Sprintf("%s = $%d", column, paramIndex))
		values = append(values, value)
		paramIndex++
	}

	if input.Name != nil {
		addField("name", *input.Name)
	}
	if input.Description != nil {
		addField("description", *input.Description)
	}
	if input.Price != nil {
		addField("price", *input.Price)
	}
	if input.Stock != nil {
		addField("stock", *input.Stock)
	}
	if input.ImageURL != nil {
		addField("image_url", *input.ImageURL)
	}
	if input.Category != nil {
		addField("category", *input.Category)
	}
	if input.SaleType != nil {
		addField("sale_type", *input.SaleType)
	}

	if len(fields) == 0 {
		return r.GetProduct(ctx, id)
	}

	fields = append(fields, "updated_at = NOW()")
	values = append(values, id)

	query := fmt.Sprintf(
		`UPDATE products SET %s WHERE id = $%d RETURNING `+productColumns,
		strings.Join(fields, ", "), paramIndex)

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, values...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return p, nil
}

func (r *Repository) DeleteProduct(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}
