package models

// Request/response shapes for the HTTP API. The response envelope is
// {status: success|fail|error, data, pagination?, message?}.

// CreateBookingRequest - POST /api/bookings
type CreateBookingRequest struct {
	TourID            int64  `json:"tour_id" binding:"required"`
	TravelDate        string `json:"travel_date" binding:"required"`
	NumberOfTravelers int    `json:"number_of_travelers" binding:"required,gt=0"`
	PaymentMethod     string `json:"payment_method" binding:"required"`
	SpecialRequests   string `json:"special_requests"`
	WhatsAppNumber    string `json:"whatsapp_number"`
}

// CreateExperienceBookingRequest - POST /api/experiences/bookings
// Guest bookings are allowed, so identity comes from the body.
type CreateExperienceBookingRequest struct {
	ExperienceID    int64  `json:"experience_id" binding:"required"`
	FullName        string `json:"full_name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Phone           string `json:"phone" binding:"required"`
	NumberOfGuests  int    `json:"number_of_guests" binding:"required,gt=0"`
	BookingDate     string `json:"booking_date" binding:"required"`
	SpecialRequests string `json:"special_requests"`
}

// UpdateBookingStatusRequest - PATCH /api/bookings/:id/status and
// PATCH /api/experiences/bookings/:id/status. PaymentStatus is only
// honored for experience bookings.
type UpdateBookingStatusRequest struct {
	Status        string  `json:"status" binding:"required"`
	PaymentStatus *string `json:"payment_status"`
	AdminNotes    string  `json:"admin_notes"`
}

// BookingFilters are the optional query parameters of the list endpoints
type BookingFilters struct {
	Status    string
	UserID    *int64
	Search    string
	StartDate string
	EndDate   string
	Page      int
	Limit     int
}

// Pagination describes one page of a filtered list
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

// BookingList is the repository result for filtered list reads
type BookingList struct {
	Records    []BookingDetail `json:"records"`
	Pagination Pagination      `json:"pagination"`
}

// BookingStats - GET /api/bookings/stats/overview
type BookingStats struct {
	Total            int64   `json:"total"`
	Pending          int64   `json:"pending"`
	Approved         int64   `json:"approved"`
	Cancelled        int64   `json:"cancelled"`
	TotalRevenue     float64 `json:"total_revenue"`
	CompletedRevenue float64 `json:"completed_revenue"`
}

// CreateTourRequest - POST /api/tours (admin)
type CreateTourRequest struct {
	Title         string   `json:"title" binding:"required"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	Location      string   `json:"location"`
	Duration      string   `json:"duration"`
	Price         float64  `json:"price" binding:"required,gt=0"`
	DiscountPrice *float64 `json:"discount_price"`
}

// UpdateTourRequest - PATCH /api/tours/:id (admin); nil fields untouched
type UpdateTourRequest struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	Category      *string  `json:"category"`
	Location      *string  `json:"location"`
	Duration      *string  `json:"duration"`
	Price         *float64 `json:"price"`
	DiscountPrice *float64 `json:"discount_price"`
	IsActive      *bool    `json:"is_active"`
}
