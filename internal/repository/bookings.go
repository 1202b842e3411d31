package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"

	"wayfarer/internal/booking"
	"wayfarer/internal/database"
	"wayfarer/internal/models"
)

type BookingRepository struct {
	db    *database.DB
	tours *TourRepository
}

func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{db: db, tours: NewTourRepository(db)}
}

// CreateBookingParams are the inputs of a booking creation. The price is
// not among them: it is read from the product inside the transaction and
// fixed at creation time.
type CreateBookingParams struct {
	Kind       booking.Kind
	ProductID  int64
	UserID     *int64
	Reference  *string
	GuestName  *string
	GuestEmail *string
	GuestPhone *string

	TravelDate      time.Time
	Quantity        int
	PaymentMethod   string
	SpecialRequests *string
	WhatsAppNumber  *string
}

func productTable(kind booking.Kind) string {
	if kind == booking.KindExperience {
		return "experiences"
	}
	return "tours"
}

// Create opens a transaction, computes total_price from the product's
// current price (discount price wins when set), inserts the booking in
// pending state together with its first status-log row, and commits.
// Any failure rolls back and propagates.
func (r *BookingRepository) Create(ctx context.Context, p CreateBookingParams) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var price float64
	var discount sql.NullFloat64
	productQuery := fmt.Sprintf(`SELECT price, discount_price FROM %s WHERE id = ? AND is_active = TRUE`, productTable(p.Kind))
	err = tx.QueryRowContext(ctx, productQuery, p.ProductID).Scan(&price, &discount)
	if err == sql.ErrNoRows {
		return 0, ErrProductNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read product: %w", err)
	}

	unitPrice := price
	if discount.Valid {
		unitPrice = discount.Float64
	}
	totalPrice := unitPrice * float64(p.Quantity)

	res, err := tx.ExecContext(ctx, `
		INSERT INTO bookings (product_type, product_id, user_id, booking_reference,
		                      guest_name, guest_email, guest_phone,
		                      travel_date, quantity, total_price, payment_method,
		                      payment_status, status, special_requests, whatsapp_number)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Kind,
		p.ProductID,
		p.UserID,
		p.Reference,
		p.GuestName,
		p.GuestEmail,
		p.GuestPhone,
		p.TravelDate,
		p.Quantity,
		totalPrice,
		p.PaymentMethod,
		booking.PaymentPending,
		booking.StatusPending,
		p.SpecialRequests,
		p.WhatsAppNumber,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert booking: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read booking id: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO booking_status_log (booking_id, status, changed_by, notes)
		VALUES (?, ?, ?, ?)`,
		id, booking.StatusPending, p.UserID, "Booking created")
	if err != nil {
		return 0, fmt.Errorf("failed to insert status log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit booking: %w", err)
	}

	return id, nil
}

// FindByID builds a display-ready booking record. The booking and
// customer read is required; the secondary collections (itinerary,
// service inclusions, status history, payment history) are best-effort
// and degrade to empty slices on failure. Returns nil when the id does
// not exist.
func (r *BookingRepository) FindByID(ctx context.Context, id int64) (*models.BookingDetail, error) {
	d := &models.BookingDetail{}
	var userName, userEmail, userPhone sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT b.id, b.product_type, b.product_id, b.user_id, b.booking_reference,
		       b.guest_name, b.guest_email, b.guest_phone,
		       b.travel_date, b.quantity, b.total_price, b.payment_method,
		       b.payment_status, b.status, b.special_requests, b.admin_notes,
		       b.whatsapp_number, b.created_at, b.updated_at,
		       u.name, u.email, u.phone
		FROM bookings b
		LEFT JOIN users u ON u.id = b.user_id
		WHERE b.id = ?`, id).Scan(
		&d.ID, &d.Kind, &d.ProductID, &d.UserID, &d.Reference,
		&d.GuestName, &d.GuestEmail, &d.GuestPhone,
		&d.TravelDate, &d.Quantity, &d.TotalPrice, &d.PaymentMethod,
		&d.PaymentStatus, &d.Status, &d.SpecialRequests, &d.AdminNotes,
		&d.WhatsAppNumber, &d.CreatedAt, &d.UpdatedAt,
		&userName, &userEmail, &userPhone,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read booking: %w", err)
	}

	productQuery := fmt.Sprintf(`SELECT title, duration, location FROM %s WHERE id = ?`, productTable(d.Kind))
	err = r.db.QueryRowContext(ctx, productQuery, d.ProductID).Scan(&d.ProductTitle, &d.ProductDuration, &d.ProductLocation)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to read booked product: %w", err)
	}

	// Guest contact fields win over the joined user record
	d.CustomerName = firstNonEmpty(stringOrEmpty(d.GuestName), userName.String)
	d.CustomerEmail = firstNonEmpty(stringOrEmpty(d.GuestEmail), userEmail.String)
	d.CustomerPhone = firstNonEmpty(stringOrEmpty(d.GuestPhone), userPhone.String)

	d.Itinerary = []models.ItineraryItem{}
	d.IncludedServices = []string{}
	d.ExcludedServices = []string{}

	if d.Kind == booking.KindTour {
		if items, err := r.tours.getItinerary(ctx, d.ProductID); err != nil {
			slog.Warn("Failed to load booking itinerary", "booking_id", id, "error", err)
		} else {
			d.Itinerary = items
		}

		if included, excluded, err := r.tours.getServices(ctx, d.ProductID); err != nil {
			slog.Warn("Failed to load booking services", "booking_id", id, "error", err)
		} else {
			d.IncludedServices = included
			d.ExcludedServices = excluded
		}
	}

	if history, err := r.statusHistory(ctx, id); err != nil {
		slog.Warn("Failed to load booking status history", "booking_id", id, "error", err)
		d.StatusHistory = []models.StatusLogEntry{}
	} else {
		d.StatusHistory = history
	}

	if payments, err := r.paymentHistory(ctx, id); err != nil {
		slog.Warn("Failed to load booking payment history", "booking_id", id, "error", err)
		d.Payments = []models.PaymentRecord{}
	} else {
		d.Payments = payments
	}

	return d, nil
}

func (r *BookingRepository) statusHistory(ctx context.Context, bookingID int64) ([]models.StatusLogEntry, error) {
	entries := []models.StatusLogEntry{}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, booking_id, status, changed_by, notes, created_at
		FROM booking_status_log
		WHERE booking_id = ?
		ORDER BY id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var e models.StatusLogEntry
		if err := rows.Scan(&e.ID, &e.BookingID, &e.Status, &e.ChangedBy, &e.Notes, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (r *BookingRepository) paymentHistory(ctx context.Context, bookingID int64) ([]models.PaymentRecord, error) {
	records := []models.PaymentRecord{}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, booking_id, type, amount, notes, created_at
		FROM booking_payments
		WHERE booking_id = ?
		ORDER BY id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p models.PaymentRecord
		if err := rows.Scan(&p.ID, &p.BookingID, &p.Type, &p.Amount, &p.Notes, &p.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, p)
	}

	return records, rows.Err()
}

// listConds builds the shared WHERE clause of the list query and its
// twin COUNT query.
func listConds(kind booking.Kind, f models.BookingFilters) sq.And {
	conds := sq.And{sq.Eq{"b.product_type": string(kind)}}

	if f.Status != "" {
		conds = append(conds, sq.Eq{"b.status": f.Status})
	}
	if f.UserID != nil {
		conds = append(conds, sq.Eq{"b.user_id": *f.UserID})
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		conds = append(conds, sq.Or{
			sq.Like{"p.title": like},
			sq.Like{"u.name": like},
			sq.Like{"u.email": like},
			sq.Like{"b.guest_name": like},
			sq.Like{"b.guest_email": like},
		})
	}
	if f.StartDate != "" {
		conds = append(conds, sq.GtOrEq{"b.created_at": f.StartDate})
	}
	if f.EndDate != "" {
		conds = append(conds, sq.LtOrEq{"b.created_at": f.EndDate + " 23:59:59"})
	}

	return conds
}

// List returns one page of bookings matching the filters, newest first,
// together with pagination computed from an identical COUNT query.
// Authorization is not enforced here; the service restricts non-admin
// callers to their own user id before the filters reach this point.
func (r *BookingRepository) List(ctx context.Context, kind booking.Kind, f models.BookingFilters) (*models.BookingList, error) {
	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	conds := listConds(kind, f)
	from := "bookings b"
	productJoin := fmt.Sprintf("%s p ON p.id = b.product_id", productTable(kind))

	query, args, err := sq.Select(
		"b.id", "b.product_type", "b.product_id", "b.user_id", "b.booking_reference",
		"b.guest_name", "b.guest_email", "b.guest_phone",
		"b.travel_date", "b.quantity", "b.total_price", "b.payment_method",
		"b.payment_status", "b.status", "b.special_requests", "b.admin_notes",
		"b.whatsapp_number", "b.created_at", "b.updated_at",
		"p.title", "u.name", "u.email", "u.phone",
	).
		From(from).
		Join(productJoin).
		LeftJoin("users u ON u.id = b.user_id").
		Where(conds).
		OrderBy("b.created_at DESC", "b.id DESC").
		Limit(uint64(limit)).
		Offset(uint64((page - 1) * limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	records := []models.BookingDetail{}
	for rows.Next() {
		var d models.BookingDetail
		var userName, userEmail, userPhone sql.NullString
		err := rows.Scan(
			&d.ID, &d.Kind, &d.ProductID, &d.UserID, &d.Reference,
			&d.GuestName, &d.GuestEmail, &d.GuestPhone,
			&d.TravelDate, &d.Quantity, &d.TotalPrice, &d.PaymentMethod,
			&d.PaymentStatus, &d.Status, &d.SpecialRequests, &d.AdminNotes,
			&d.WhatsAppNumber, &d.CreatedAt, &d.UpdatedAt,
			&d.ProductTitle, &userName, &userEmail, &userPhone,
		)
		if err != nil {
			return nil, err
		}

		d.CustomerName = firstNonEmpty(stringOrEmpty(d.GuestName), userName.String)
		d.CustomerEmail = firstNonEmpty(stringOrEmpty(d.GuestEmail), userEmail.String)
		d.CustomerPhone = firstNonEmpty(stringOrEmpty(d.GuestPhone), userPhone.String)
		records = append(records, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	countQuery, countArgs, err := sq.Select("COUNT(*)").
		From(from).
		Join(productJoin).
		LeftJoin("users u ON u.id = b.user_id").
		Where(conds).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}

	totalPages := (total + int64(limit) - 1) / int64(limit)

	return &models.BookingList{
		Records: records,
		Pagination: models.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// TransitionStatus is the single entry point for status changes; both
// the admin status update and user cancellation go through it. Inside
// one transaction it validates the move against the state machine,
// updates the booking row, appends the status-log entry, and, when the
// target is cancelled and payment was completed, writes the refund
// ledger row and flips payment_status to refunded. The returned bool
// reports whether a refund was written.
func (r *BookingRepository) TransitionStatus(ctx context.Context, id int64, to booking.Status, actorID *int64, notes *string, paymentStatus *booking.PaymentStatus) (*models.BookingDetail, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var kind booking.Kind
	var from booking.Status
	var payment booking.PaymentStatus
	var total float64
	err = tx.QueryRowContext(ctx, `
		SELECT product_type, status, payment_status, total_price
		FROM bookings
		WHERE id = ?
		FOR UPDATE`, id).Scan(&kind, &from, &payment, &total)
	if err == sql.ErrNoRows {
		return nil, false, ErrBookingNotFound
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read booking: %w", err)
	}

	if err := booking.Transition(kind, from, to); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	newPayment := payment
	if paymentStatus != nil {
		newPayment = *paymentStatus
	}

	refunded := false
	if booking.RefundsOnEntry(to, newPayment) {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO booking_payments (booking_id, type, amount, notes)
			VALUES (?, 'refund', ?, 'Automatic refund on cancellation')`,
			id, total)
		if err != nil {
			return nil, false, fmt.Errorf("failed to insert refund record: %w", err)
		}
		newPayment = booking.PaymentRefunded
		refunded = true
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE bookings
		SET status = ?, payment_status = ?, admin_notes = COALESCE(?, admin_notes), updated_at = NOW()
		WHERE id = ?`,
		to, newPayment, notes, id)
	if err != nil {
		return nil, false, fmt.Errorf("failed to update booking: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO booking_status_log (booking_id, status, changed_by, notes)
		VALUES (?, ?, ?, ?)`,
		id, to, actorID, notes)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert status log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit status change: %w", err)
	}

	detail, err := r.FindByID(ctx, id)
	return detail, refunded, err
}

// Stats aggregates booking counts and revenue for the admin overview.
func (r *BookingRepository) Stats(ctx context.Context) (*models.BookingStats, error) {
	stats := &models.BookingStats{}

	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM bookings GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status booking.Status
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.Total += count
		switch status {
		case booking.StatusPending:
			stats.Pending += count
		case booking.StatusApproved, booking.StatusConfirmed:
			stats.Approved += count
		case booking.StatusCancelled:
			stats.Cancelled += count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_price), 0),
		       COALESCE(SUM(CASE WHEN payment_status = 'completed' THEN total_price ELSE 0 END), 0)
		FROM bookings
		WHERE status != 'cancelled'`).Scan(&stats.TotalRevenue, &stats.CompletedRevenue)
	if err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}

	return stats, nil
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
