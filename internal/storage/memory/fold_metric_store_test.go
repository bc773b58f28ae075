package memory

import (
	"context"
	"errors"
	"testing"

	"strategy-gate/internal/domain"
	"strategy-gate/internal/storage"
)

func TestFoldMetricStore_InsertBulkAndGet(t *testing.T) {
	store := NewFoldMetricStore()
	ctx := context.Background()

	folds := []domain.FoldMetrics{
		{Fold: 3, Sharpe: 0.3, TestSize: 3},
		{Fold: 1, Sharpe: 0.1, TestSize: 4},
		{Fold: 2, Sharpe: 0.2, TestSize: 3},
	}
	if err := store.InsertBulk(ctx, "run1", folds); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByRunID(ctx, "run1")
	if err != nil {
		t.Fatalf("GetByRunID failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 folds, got %d", len(got))
	}
	for i, f := range got {
		if f.Fold != i+1 {
			t.Errorf("Fold order: got %d at %d", f.Fold, i)
		}
	}

	empty, err := store.GetByRunID(ctx, "other")
	if err != nil {
		t.Fatalf("GetByRunID failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("Expected no folds, got %d", len(empty))
	}
}

func TestFoldMetricStore_DuplicateFailsBatch(t *testing.T) {
	store := NewFoldMetricStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, "run1", []domain.FoldMetrics{{Fold: 1}}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	err := store.InsertBulk(ctx, "run1", []domain.FoldMetrics{{Fold: 2}, {Fold: 1}})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	err = store.InsertBulk(ctx, "run2", []domain.FoldMetrics{{Fold: 1}, {Fold: 1}})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey for intra-batch duplicate, got %v", err)
	}

	// Nothing from the failed batches was written
	got, _ := store.GetByRunID(ctx, "run1")
	if len(got) != 1 {
		t.Errorf("Expected 1 fold after failed batch, got %d", len(got))
	}
	got, _ = store.GetByRunID(ctx, "run2")
	if len(got) != 0 {
		t.Errorf("Expected 0 folds after failed batch, got %d", len(got))
	}
}

func TestFoldMetricStore_InvalidInput(t *testing.T) {
	store := NewFoldMetricStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, "", []domain.FoldMetrics{{Fold: 1}}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
	if err := store.InsertBulk(ctx, "run1", []domain.FoldMetrics{{Fold: 0}}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
