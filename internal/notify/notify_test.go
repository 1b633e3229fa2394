package notify

import (
	"context"
	"testing"

	"donaplus/internal/pkg/ulid"

	"github.com/stretchr/testify/require"
)

func TestRecorder_CollectsAndDrains(t *testing.T) {
	ctx := context.Background()
	r := NewRecorder()

	Success(ctx, r, "Donation created")
	Error(ctx, r, "boom")

	require.Equal(t, 1, r.Count(KindSuccess))
	require.Equal(t, 1, r.Count(KindError))

	all := r.Drain()
	require.Len(t, all, 2)
	require.Equal(t, "Donation created", all[0].Message)
	require.True(t, ulid.Valid(all[0].ID))
	require.NotEqual(t, all[0].ID, all[1].ID)

	require.Empty(t, r.Drain())
	require.NotNil(t, r.Drain())
}

func TestMulti_FansOut(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	Info(context.Background(), Multi{a, nil, b, LogNotifier{}}, "hello")
	require.Len(t, a.All(), 1)
	require.Len(t, b.All(), 1)
}

func TestHelpers_NilNotifier(t *testing.T) {
	require.NotPanics(t, func() {
		Error(context.Background(), nil, "ignored")
	})
}
