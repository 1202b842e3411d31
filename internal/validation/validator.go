package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"wayfarer/internal/models"
)

// APIValidator smoke-checks a running server: it exercises the public
// endpoints and, when credentials are supplied, the authenticated ones.
type APIValidator struct {
	baseURL  string
	username string
	password string
}

func NewAPIValidator(baseURL, username, password string) *APIValidator {
	return &APIValidator{baseURL: baseURL, username: username, password: password}
}

// ValidateAll runs every check and stops at the first failure.
func (v *APIValidator) ValidateAll() error {
	log.Println("Starting API validation...")

	if err := v.validateHealth(); err != nil {
		return fmt.Errorf("health validation failed: %w", err)
	}

	if err := v.validateCatalog(); err != nil {
		return fmt.Errorf("catalog validation failed: %w", err)
	}

	if err := v.validateExperienceBooking(); err != nil {
		return fmt.Errorf("experience booking validation failed: %w", err)
	}

	if v.username != "" {
		if err := v.validateBookings(); err != nil {
			return fmt.Errorf("bookings validation failed: %w", err)
		}
	} else {
		log.Println("API_USER not set, skipping authenticated endpoints")
	}

	log.Println("All endpoints validated successfully")
	return nil
}

func (v *APIValidator) validateHealth() error {
	log.Println("Checking /health...")

	resp, err := v.makeRequest("GET", "/health", nil, false)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET /health: expected 200, got %d", resp.StatusCode)
	}

	return nil
}

func (v *APIValidator) validateCatalog() error {
	log.Println("Checking catalog endpoints...")

	for _, path := range []string{"/api/tours", "/api/experiences"} {
		resp, err := v.makeRequest("GET", path, nil, false)
		if err != nil {
			return err
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return fmt.Errorf("GET %s: expected 200, got %d", path, resp.StatusCode)
		}

		var envelope struct {
			Status string          `json:"status"`
			Data   json.RawMessage `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			resp.Body.Close()
			return fmt.Errorf("GET %s: failed to decode response: %w", path, err)
		}
		resp.Body.Close()

		if envelope.Status != "success" {
			return fmt.Errorf("GET %s: expected success envelope, got %q", path, envelope.Status)
		}
	}

	return nil
}

func (v *APIValidator) validateExperienceBooking() error {
	log.Println("Checking guest experience booking...")

	// A missing email must fail validation without credentials attached
	reqBody := models.CreateExperienceBookingRequest{
		ExperienceID:   1,
		FullName:       "Validation Probe",
		Phone:          "+10000000000",
		NumberOfGuests: 1,
		BookingDate:    time.Now().AddDate(0, 1, 0).Format("2006-01-02"),
	}

	resp, err := v.makeRequest("POST", "/api/experiences/bookings", reqBody, false)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		return fmt.Errorf("POST /api/experiences/bookings without email: expected 400, got %d", resp.StatusCode)
	}

	return nil
}

func (v *APIValidator) validateBookings() error {
	log.Println("Checking authenticated booking endpoints...")

	resp, err := v.makeRequest("GET", "/api/bookings", nil, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET /api/bookings: expected 200, got %d", resp.StatusCode)
	}

	var envelope struct {
		Status     string            `json:"status"`
		Pagination models.Pagination `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("GET /api/bookings: failed to decode response: %w", err)
	}

	if envelope.Status != "success" {
		return fmt.Errorf("GET /api/bookings: expected success envelope, got %q", envelope.Status)
	}
	if envelope.Pagination.Page < 1 {
		return fmt.Errorf("GET /api/bookings: expected pagination in response")
	}

	return nil
}

func (v *APIValidator) makeRequest(method, path string, body interface{}, authed bool) (*http.Response, error) {
	var reader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewBuffer(jsonBody)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, v.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.SetBasicAuth(v.username, v.password)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}

	return resp, nil
}

// RunValidation validates the API at BASE_URL (default localhost:8080).
func RunValidation() {
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	validator := NewAPIValidator(baseURL, os.Getenv("API_USER"), os.Getenv("API_PASSWORD"))
	if err := validator.ValidateAll(); err != nil {
		log.Fatalf("Validation failed: %v", err)
	}
}
