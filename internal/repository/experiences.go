package repository

import (
	"context"
	"database/sql"

	"wayfarer/internal/database"
	"wayfarer/internal/models"
)

type ExperienceRepository struct {
	db *database.DB
}

func NewExperienceRepository(db *database.DB) *ExperienceRepository {
	return &ExperienceRepository{db: db}
}

func (r *ExperienceRepository) Create(ctx context.Context, exp *models.Experience) error {
	query := `
		INSERT INTO experiences (title, description, category, location, duration, price, discount_price, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		exp.Title,
		exp.Description,
		exp.Category,
		exp.Location,
		exp.Duration,
		exp.Price,
		exp.DiscountPrice,
		exp.IsActive,
	)
	if err != nil {
		return err
	}

	exp.ID, err = res.LastInsertId()
	return err
}

func (r *ExperienceRepository) GetByID(ctx context.Context, id int64) (*models.Experience, error) {
	exp := &models.Experience{}
	query := `
		SELECT id, title, description, category, location, duration, price, discount_price,
		       is_active, created_at, updated_at
		FROM experiences
		WHERE id = ?`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&exp.ID,
		&exp.Title,
		&exp.Description,
		&exp.Category,
		&exp.Location,
		&exp.Duration,
		&exp.Price,
		&exp.DiscountPrice,
		&exp.IsActive,
		&exp.CreatedAt,
		&exp.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return exp, err
}

func (r *ExperienceRepository) List(ctx context.Context, activeOnly bool) ([]models.Experience, error) {
	experiences := []models.Experience{}
	query := `
		SELECT id, title, description, category, location, duration, price, discount_price,
		       is_active, created_at, updated_at
		FROM experiences`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var exp models.Experience
		err := rows.Scan(
			&exp.ID,
			&exp.Title,
			&exp.Description,
			&exp.Category,
			&exp.Location,
			&exp.Duration,
			&exp.Price,
			&exp.DiscountPrice,
			&exp.IsActive,
			&exp.CreatedAt,
			&exp.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		experiences = append(experiences, exp)
	}

	return experiences, rows.Err()
}

func (r *ExperienceRepository) Update(ctx context.Context, id int64, req *models.UpdateTourRequest) error {
	query := `
		UPDATE experiences
		SET title = COALESCE(?, title),
		    description = COALESCE(?, description),
		    category = COALESCE(?, category),
		    location = COALESCE(?, location),
		    duration = COALESCE(?, duration),
		    price = COALESCE(?, price),
		    discount_price = COALESCE(?, discount_price),
		    is_active = COALESCE(?, is_active)
		WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query,
		req.Title,
		req.Description,
		req.Category,
		req.Location,
		req.Duration,
		req.Price,
		req.DiscountPrice,
		req.IsActive,
		id,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return ErrProductNotFound
	}
	return err
}

func (r *ExperienceRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM experiences WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return ErrProductNotFound
	}
	return err
}
