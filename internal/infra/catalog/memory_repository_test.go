package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voyora/tripweaver/internal/domain/trip"
)

func TestMemoryRepository_RoundTrip(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	coords := trip.Coordinates{Lat: 41.9, Lng: 12.49}
	in := trip.Resources{
		Attractions: []trip.Attraction{
			{ID: "colosseum", Name: "Colosseum", Coords: &coords, DurationMinutes: 120},
		},
		Restaurants: []trip.Restaurant{{ID: "r1", Name: "Da Enzo", PriceTier: 2}},
		Lodging:     &trip.Accommodation{ID: "h1", Name: "Hotel Aurora", PricePerNight: 150},
	}
	require.NoError(t, repo.SaveSet(ctx, "rome-default", in))

	out, found, err := repo.GetSet(ctx, "rome-default")
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, out.Attractions, 1)
	require.Equal(t, "Colosseum", out.Attractions[0].Name)
	require.Equal(t, 41.9, out.Attractions[0].Coords.Lat)
	require.Equal(t, "Hotel Aurora", out.Lodging.Name)
}

func TestMemoryRepository_MissingSet(t *testing.T) {
	repo := NewMemoryRepository()

	_, found, err := repo.GetSet(context.Background(), "nope")
	require.NoError(t, err)
	require.False(t, found)
}

func TestMemoryRepository_OverwriteReplaces(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.SaveSet(ctx, "rome", trip.Resources{
		Restaurants: []trip.Restaurant{{ID: "r1", Name: "Da Enzo"}},
	}))
	require.NoError(t, repo.SaveSet(ctx, "rome", trip.Resources{
		Restaurants: []trip.Restaurant{{ID: "r2", Name: "Roscioli"}},
	}))

	out, found, err := repo.GetSet(ctx, "rome")
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, out.Restaurants, 1)
	require.Equal(t, "Roscioli", out.Restaurants[0].Name)
}
