package memory

import (
	"context"
	"errors"
	"testing"

	"strategy-gate/internal/domain"
	"strategy-gate/internal/storage"
)

func TestCalibrationStore_GetLatest(t *testing.T) {
	store := NewCalibrationStore()
	ctx := context.Background()

	cals := []*domain.Calibration{
		{CalibrationID: "c1", Venue: "binance", CreatedAt: 1000, Params: domain.TCAParams{FillProb: 0.4, Depth: 1}},
		{CalibrationID: "c2", Venue: "binance", CreatedAt: 3000, Params: domain.TCAParams{FillProb: 0.6, Depth: 1}},
		{CalibrationID: "c3", Venue: "okx", CreatedAt: 5000, Params: domain.TCAParams{FillProb: 0.9, Depth: 1}},
	}
	for _, c := range cals {
		if err := store.Insert(ctx, c); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := store.GetLatest(ctx, "binance")
	if err != nil {
		t.Fatalf("GetLatest failed: %v", err)
	}
	if got.CalibrationID != "c2" || got.Params.FillProb != 0.6 {
		t.Errorf("Expected c2, got %+v", got)
	}

	if _, err := store.GetLatest(ctx, "bybit"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := store.Insert(ctx, cals[0]); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
	if err := store.Insert(ctx, &domain.Calibration{CalibrationID: "c4"}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for missing venue, got %v", err)
	}
}
