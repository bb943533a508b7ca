package issue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	iss := New("repair", "energy", SeverityWarning)
	iss.Fixable = true
	iss.SetPlaceholder(PlaceholderDashboard, "Energy")
	require.NoError(t, store.Create(ctx, iss))

	got, err := store.Get(ctx, "repair", "energy")
	require.NoError(t, err)
	assert.Equal(t, iss.ID, got.ID)
	assert.True(t, got.Fixable)
	assert.Equal(t, "Energy", got.Placeholders[PlaceholderDashboard])
}

func TestMemoryStoreGetMissing(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "repair", "absent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreUpsertPreservesIdentity(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	first := New("repair", "energy", SeverityWarning)
	first.SetPlaceholder(PlaceholderEntities, "- `light.old`")
	require.NoError(t, store.Create(ctx, first))

	time.Sleep(time.Millisecond)

	second := New("repair", "energy", SeverityError)
	second.SetPlaceholder(PlaceholderEntities, "- `light.new`")
	require.NoError(t, store.Create(ctx, second))

	got, err := store.Get(ctx, "repair", "energy")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID, "record ID survives re-raising")
	assert.Equal(t, first.CreatedAt, got.CreatedAt, "creation time survives re-raising")
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))
	assert.Equal(t, SeverityError, got.Severity)
	assert.Equal(t, "- `light.new`", got.Placeholders[PlaceholderEntities])

	issues, err := store.List(ctx, "repair")
	require.NoError(t, err)
	assert.Len(t, issues, 1, "upsert never stacks duplicates")
}

func TestMemoryStoreCreateValidates(t *testing.T) {
	store := NewMemoryStore()

	bad := New("repair", "energy", SeverityWarning)
	bad.Severity = "panic"

	assert.Error(t, store.Create(context.Background(), bad))
}

func TestMemoryStoreList(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Create(ctx, New("b_repair", "one", SeverityWarning)))
	require.NoError(t, store.Create(ctx, New("a_repair", "two", SeverityWarning)))
	require.NoError(t, store.Create(ctx, New("a_repair", "one", SeverityWarning)))

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a_repair", all[0].Repair)
	assert.Equal(t, "one", all[0].IssueID)
	assert.Equal(t, "two", all[1].IssueID)
	assert.Equal(t, "b_repair", all[2].Repair)

	scoped, err := store.List(ctx, "a_repair")
	require.NoError(t, err)
	assert.Len(t, scoped, 2)
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Create(ctx, New("repair", "energy", SeverityWarning)))

	existed, err := store.Delete(ctx, "repair", "energy")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = store.Delete(ctx, "repair", "energy")
	require.NoError(t, err)
	assert.False(t, existed, "deleting a missing issue is not an error")

	_, err = store.Get(ctx, "repair", "energy")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreCopiesOnRead(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	iss := New("repair", "energy", SeverityWarning)
	iss.SetPlaceholder(PlaceholderDashboard, "Energy")
	require.NoError(t, store.Create(ctx, iss))

	got, err := store.Get(ctx, "repair", "energy")
	require.NoError(t, err)
	got.Severity = SeverityCritical

	again, err := store.Get(ctx, "repair", "energy")
	require.NoError(t, err)
	assert.Equal(t, SeverityWarning, again.Severity, "mutating a returned issue does not touch the store")
}
