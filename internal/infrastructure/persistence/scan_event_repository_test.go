package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/loyalty/backend/internal/domain/loyalty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormScanEventRepository(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormScanEventRepository(db.DB)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, barcode := range []string{"LOY-A", "LOY-B", "LOY-C"} {
		event, err := loyalty.NewScanEvent(barcode, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		if barcode == "LOY-C" {
			event.AttachCustomer(uuid.New())
			event.MarkMatched()
		}
		require.NoError(t, repo.Save(ctx, event))
	}

	t.Run("FindRecent orders newest first", func(t *testing.T) {
		events, err := repo.FindRecent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "LOY-C", events[0].BarcodeData)
		assert.True(t, events[0].IsMatched)
		assert.Equal(t, "LOY-B", events[1].BarcodeData)
	})

	t.Run("Count", func(t *testing.T) {
		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 3, count)
	})
}
