package db

import (
	"context"
	"database/sql"
	"testing"

	"donaplus/models"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestWhere_SkipsUnsetFilters(t *testing.T) {
	w := donationWhere(models.DonationFilter{})
	require.Empty(t, w.String())
	require.Empty(t, w.args)
}

func TestWhere_DonationFilter(t *testing.T) {
	w := donationWhere(models.DonationFilter{
		OrganizationID: "org-1",
		Status:         models.DonationPublished,
		Urgent:         models.OnlyTrue,
		Search:         "coat",
	})

	require.Equal(t,
		" WHERE d.organization_id = ? AND d.status = ? AND d.is_urgent = TRUE AND (d.title ILIKE ? OR d.description ILIKE ?)",
		w.String())
	require.Equal(t, []any{"org-1", "published", "%coat%", "%coat%"}, w.args)
}

func TestEscapeLike(t *testing.T) {
	require.Equal(t, `50\% off\_now`, escapeLike("50% off_now"))
}

func TestPageClause(t *testing.T) {
	require.Empty(t, pageClause(models.Page{}))
	require.Equal(t, " LIMIT 10 OFFSET 20", pageClause(models.Page{Limit: 10, Offset: 20}))
}

func TestUpdate_RejectsUnknownColumn(t *testing.T) {
	s := &Storage{}
	err := s.update(context.Background(), "donations", "id-1", models.Fields{
		"title":    "x",
		"password": "nope",
	})
	require.ErrorIs(t, err, ErrUnknownColumn)
}

func TestNotFound_InvalidUUIDLooksMissing(t *testing.T) {
	require.ErrorIs(t, notFound(&pq.Error{Code: "22P02"}), ErrNotFound)
	require.ErrorIs(t, notFound(sql.ErrNoRows), ErrNotFound)
	require.NoError(t, notFound(nil))

	other := &pq.Error{Code: "23505"}
	require.Equal(t, error(other), notFound(other))
}

func TestUpdateAndDelete_MalformedIDIsNotFound(t *testing.T) {
	s := &Storage{}
	ctx := context.Background()
	require.ErrorIs(t, s.update(ctx, "donations", "abc", models.Fields{"title": "x"}), ErrNotFound)
	require.ErrorIs(t, s.deleteRow(ctx, "donations", "abc"), ErrNotFound)
	require.NoError(t, s.DeleteAuthSessions(ctx, "abc"))
}
