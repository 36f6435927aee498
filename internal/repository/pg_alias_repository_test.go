package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tixhub/ticket-exchange-service/internal/domain"
)

func TestPgAliasRepository_Upsert(t *testing.T) {
	t.Run("upserts alias group", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgAliasRepository(mock)

		mock.ExpectExec(`INSERT INTO artist_aliases`).
			WithArgs("omer adam", []byte(`["עומר אדם","omer adam"]`), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err = repo.Upsert(context.Background(), &domain.ArtistAlias{
			Canonical: "omer adam",
			Aliases:   []string{"עומר אדם", "omer adam"},
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects empty canonical", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgAliasRepository(mock)

		err = repo.Upsert(context.Background(), &domain.ArtistAlias{})
		assert.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})
}

func TestPgAliasRepository_Get(t *testing.T) {
	t.Run("returns alias group", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgAliasRepository(mock)

		mock.ExpectQuery(`SELECT canonical, aliases, updated_at FROM artist_aliases WHERE canonical = \$1`).
			WithArgs("omer adam").
			WillReturnRows(pgxmock.NewRows([]string{"canonical", "aliases", "updated_at"}).
				AddRow("omer adam", []byte(`["עומר אדם"]`), time.Now().UTC()))

		alias, err := repo.Get(context.Background(), "omer adam")
		require.NoError(t, err)
		assert.Equal(t, "omer adam", alias.Canonical)
		assert.Equal(t, []string{"עומר אדם"}, alias.Aliases)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgAliasRepository(mock)

		mock.ExpectQuery(`SELECT canonical, aliases, updated_at FROM artist_aliases WHERE canonical = \$1`).
			WithArgs("nobody").
			WillReturnError(pgx.ErrNoRows)

		_, err = repo.Get(context.Background(), "nobody")
		assert.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestPgAliasRepository_GetAll(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgAliasRepository(mock)

	rows := pgxmock.NewRows([]string{"canonical", "aliases"}).
		AddRow("noa kirel", []byte(`["נועה קירל","noa kirel"]`)).
		AddRow("omer adam", []byte(`["עומר אדם"]`))

	mock.ExpectQuery(`SELECT canonical, aliases FROM artist_aliases`).
		WillReturnRows(rows)

	groups, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, []string{"נועה קירל", "noa kirel"}, groups["noa kirel"])
	assert.Equal(t, []string{"עומר אדם"}, groups["omer adam"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgAliasRepository_Delete(t *testing.T) {
	t.Run("deletes alias group", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgAliasRepository(mock)

		mock.ExpectExec(`DELETE FROM artist_aliases`).
			WithArgs("omer adam").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		err = repo.Delete(context.Background(), "omer adam")
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing group", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgAliasRepository(mock)

		mock.ExpectExec(`DELETE FROM artist_aliases`).
			WithArgs("nobody").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err = repo.Delete(context.Background(), "nobody")
		assert.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}
