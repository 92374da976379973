//nolint:funlen // ok for tests
package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/motorsport-analytics/pkg/model"
	base "github.com/mpapenbr/motorsport-analytics/testsupport/basedata"
	"github.com/mpapenbr/motorsport-analytics/testsupport/testdb"
)

func TestDriverQueryValidate(t *testing.T) {
	tests := []struct {
		name    string
		query   DriverQuery
		wantErr bool
	}{
		{"default", DriverQuery{Limit: DefaultLimit}, false},
		{"max", DriverQuery{Limit: MaxLimit, Offset: 10}, false},
		{"zero limit", DriverQuery{Limit: 0}, true},
		{"limit too large", DriverQuery{Limit: MaxLimit + 1}, true},
		{"negative offset", DriverQuery{Limit: 1, Offset: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if tt.wantErr {
				assert.True(t, model.IsValidationError(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRepository(t *testing.T) {
	pool := testdb.InitTestDB(t)
	require.NoError(t, base.CreateSampleCatalog(pool))
	repo := NewRepositoryFromPool(pool)
	ctx := context.Background()

	t.Run("list drivers", func(t *testing.T) {
		page, err := repo.ListDrivers(ctx, DriverQuery{Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		require.Len(t, page.Drivers, 2)
		assert.Equal(t, "charles-leclerc", page.Drivers[0].ID)
		assert.Equal(t, "lewis-hamilton", page.Drivers[1].ID)
	})

	t.Run("search drivers", func(t *testing.T) {
		page, err := repo.ListDrivers(ctx, DriverQuery{Limit: 10, Search: "VERST"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
		require.Len(t, page.Drivers, 1)
		assert.Equal(t, "VER", *page.Drivers[0].Abbreviation)
	})

	t.Run("get driver", func(t *testing.T) {
		d, err := repo.GetDriver(ctx, "lewis-hamilton")
		require.NoError(t, err)
		assert.Equal(t, "Lewis Hamilton", d.Name)

		_, err = repo.GetDriver(ctx, "unknown")
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("driver results", func(t *testing.T) {
		res, err := repo.DriverResults(ctx, "max-verstappen", 0)
		require.NoError(t, err)
		require.Len(t, res, 2)
		assert.Equal(t, 1, res[0].Round)

		res, err = repo.DriverResults(ctx, "max-verstappen", 2022)
		require.NoError(t, err)
		assert.Empty(t, res)
	})

	t.Run("race results ordered by display position", func(t *testing.T) {
		res, err := repo.RaceResults(ctx, 2023, 1)
		require.NoError(t, err)
		ids := make([]string, len(res))
		for i := range res {
			ids[i] = res[i].DriverID
		}
		assert.Equal(t, []string{"max-verstappen", "lewis-hamilton", "charles-leclerc"}, ids)
		assert.Nil(t, res[2].PositionNumber)
	})

	t.Run("qualifying", func(t *testing.T) {
		res, err := repo.QualifyingResults(ctx, 2023, 1)
		require.NoError(t, err)
		require.Len(t, res, 2)
		assert.Equal(t, "1:29.708", *res[0].Q3)
	})

	t.Run("unknown race", func(t *testing.T) {
		_, err := repo.GetRace(ctx, 1900, 1)
		assert.ErrorIs(t, err, model.ErrNotFound)
		res, err := repo.RaceResults(ctx, 1900, 1)
		require.NoError(t, err)
		assert.Empty(t, res)
	})
}
