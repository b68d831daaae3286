package appointments

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "metadata.sqlite"))
	require.NoError(t, err, "Open error")
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAppointmentsRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	list, err := s.ListAppointments(ctx)
	require.NoError(t, err, "listing empty store")
	require.Empty(t, list, "no appointments yet")

	id, err := s.AddAppointment(ctx, "dentist")
	require.NoError(t, err, "adding appointment")

	_, err = s.AddAppointment(ctx, "standup")
	require.NoError(t, err, "adding second appointment")

	list, err = s.ListAppointments(ctx)
	require.NoError(t, err, "listing appointments")
	require.Len(t, list, 2, "appointment count")
	require.Equal(t, id, list[0].ID, "ordered by id")
	require.Equal(t, "dentist", list[0].Title, "first title")
	require.Equal(t, "standup", list[1].Title, "second title")
}

func TestUploadTags(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	tags, err := s.UploadTags(ctx, "docs", "a.txt")
	require.NoError(t, err, "querying empty tags")
	require.Empty(t, tags, "no tags yet")

	require.NoError(t, s.RecordUploadTag(ctx, "docs", "a.txt", "first"), "recording tag")
	require.NoError(t, s.RecordUploadTag(ctx, "docs", "a.txt", "second"), "recording tag")
	require.NoError(t, s.RecordUploadTag(ctx, "docs", "b.txt", "other-file"), "recording tag")

	tags, err = s.UploadTags(ctx, "docs", "a.txt")
	require.NoError(t, err, "querying tags")
	require.ElementsMatch(t, []string{"first", "second"}, tags, "tags for a.txt")

	tags, err = s.UploadTags(ctx, "docs", "b.txt")
	require.NoError(t, err, "querying tags")
	require.Equal(t, []string{"other-file"}, tags, "tags for b.txt")
}
