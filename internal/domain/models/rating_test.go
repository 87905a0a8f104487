package models_test

import (
	"testing"

	"github.com/dalemusser/langis/internal/domain/models"
)

func TestValidRatingValue(t *testing.T) {
	valid := []float64{0, 0.5, 1, 2.5, 4.5, 5}
	for _, v := range valid {
		if !models.ValidRatingValue(v) {
			t.Errorf("ValidRatingValue(%v) = false, want true", v)
		}
	}

	invalid := []float64{-0.5, 5.5, 0.3, 4.75, 100}
	for _, v := range invalid {
		if models.ValidRatingValue(v) {
			t.Errorf("ValidRatingValue(%v) = true, want false", v)
		}
	}
}

func TestAverageRating(t *testing.T) {
	avg, ok := models.AverageRating([]float64{3.0, 4.0, 5.0})
	if !ok {
		t.Fatal("expected ok for non-empty values")
	}
	if avg != 4.0 {
		t.Errorf("average: got %v, want 4.0", avg)
	}

	if _, ok := models.AverageRating(nil); ok {
		t.Error("expected ok=false for empty values")
	}
}
