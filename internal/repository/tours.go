package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"wayfarer/internal/database"
	"wayfarer/internal/models"
)

type TourRepository struct {
	db *database.DB
}

func NewTourRepository(db *database.DB) *TourRepository {
	return &TourRepository{db: db}
}

func (r *TourRepository) Create(ctx context.Context, tour *models.Tour) error {
	query := `
		INSERT INTO tours (title, description, category, location, duration, price, discount_price, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		tour.Title,
		tour.Description,
		tour.Category,
		tour.Location,
		tour.Duration,
		tour.Price,
		tour.DiscountPrice,
		tour.IsActive,
	)
	if err != nil {
		return err
	}

	tour.ID, err = res.LastInsertId()
	return err
}

func (r *TourRepository) GetByID(ctx context.Context, id int64) (*models.Tour, error) {
	tour := &models.Tour{}
	query := `
		SELECT id, title, description, category, location, duration, price, discount_price,
		       is_active, created_at, updated_at
		FROM tours
		WHERE id = ?`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&tour.ID,
		&tour.Title,
		&tour.Description,
		&tour.Category,
		&tour.Location,
		&tour.Duration,
		&tour.Price,
		&tour.DiscountPrice,
		&tour.IsActive,
		&tour.CreatedAt,
		&tour.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	// Secondary collections are best-effort: a failed read degrades the
	// field to empty instead of failing the whole lookup
	tour.Itinerary, err = r.getItinerary(ctx, id)
	if err != nil {
		slog.Warn("Failed to load tour itinerary", "tour_id", id, "error", err)
		tour.Itinerary = []models.ItineraryItem{}
	}

	tour.Included, tour.Excluded, err = r.getServices(ctx, id)
	if err != nil {
		slog.Warn("Failed to load tour services", "tour_id", id, "error", err)
		tour.Included, tour.Excluded = []string{}, []string{}
	}

	return tour, nil
}

func (r *TourRepository) getItinerary(ctx context.Context, tourID int64) ([]models.ItineraryItem, error) {
	items := []models.ItineraryItem{}
	query := `
		SELECT id, tour_id, day_number, title, description
		FROM tour_itinerary
		WHERE tour_id = ?
		ORDER BY day_number`

	rows, err := r.db.QueryContext(ctx, query, tourID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.ItineraryItem
		if err := rows.Scan(&item.ID, &item.TourID, &item.DayNumber, &item.Title, &item.Description); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *TourRepository) getServices(ctx context.Context, tourID int64) (included, excluded []string, err error) {
	included, excluded = []string{}, []string{}
	query := `SELECT service, included FROM tour_services WHERE tour_id = ? ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, tourID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var service string
		var isIncluded bool
		if err := rows.Scan(&service, &isIncluded); err != nil {
			return nil, nil, err
		}
		if isIncluded {
			included = append(included, service)
		} else {
			excluded = append(excluded, service)
		}
	}

	return included, excluded, rows.Err()
}

func (r *TourRepository) List(ctx context.Context, activeOnly bool) ([]models.Tour, error) {
	tours := []models.Tour{}
	query := `
		SELECT id, title, description, category, location, duration, price, discount_price,
		       is_active, created_at, updated_at
		FROM tours`
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
		var tour models.Tour
		err := rows.Scan(
			&tour.ID,
			&tour.Title,
			&tour.Description,
			&tour.Category,
			&tour.Location,
			&tour.Duration,
			&tour.Price,
			&tour.DiscountPrice,
			&tour.IsActive,
			&tour.CreatedAt,
			&tour.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		tours = append(tours, tour)
	}

	return tours, rows.Err()
}

func (r *TourRepository) Update(ctx context.Context, id int64, req *models.UpdateTourRequest) error {
	query := `
		UPDATE tours
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

func (r *TourRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tours WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return ErrProductNotFound
	}
	return err
}

// ReplaceItinerary swaps the full itinerary of a tour in one transaction.
func (r *TourRepository) ReplaceItinerary(ctx context.Context, tourID int64, items []models.ItineraryItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tour_itinerary WHERE tour_id = ?`, tourID); err != nil {
		return err
	}

	for _, item := range items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tour_itinerary (tour_id, day_number, title, description) VALUES (?, ?, ?, ?)`,
			tourID, item.DayNumber, item.Title, item.Description)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}
