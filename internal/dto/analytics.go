package dto

import "github.com/hostelhub/mess-api/internal/models"

// MealTimeSeriesResponse wraps the chart series with its window.
type MealTimeSeriesResponse struct {
	Window models.TimeWindow       `json:"window"`
	Series []models.MealTimeBucket `json:"series"`
}
