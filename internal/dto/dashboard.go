package dto

import (
	"time"

	"github.com/hostelhub/mess-api/internal/models"
)

// StudentDashboardResponse is the personal metric panel payload.
type StudentDashboardResponse struct {
	models.StudentDashboard
	GeneratedAt time.Time `json:"generated_at"`
}

// AdminDashboardResponse is the mess-wide metric panel payload.
type AdminDashboardResponse struct {
	models.AdminDashboard
	GeneratedAt time.Time `json:"generated_at"`
}
