package persistence

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"resumeBuilder/internal/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestGormStore_InsertAndGet(t *testing.T) {
	store := NewGormStore(newTestDB(t))
	ctx := context.Background()

	rec, err := store.Insert(ctx, Record{OwnerID: 5, Name: "CV", Data: []byte(`{"fullName":"Ann"}`)})
	require.NoError(t, err)
	assert.NotZero(t, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())

	got, err := store.Get(ctx, 5, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "CV", got.Name)
	assert.JSONEq(t, `{"fullName":"Ann"}`, string(got.Data))

	_, err = store.Get(ctx, 6, rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	found, err := store.Find(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(5), found.OwnerID)

	_, err = store.Find(ctx, rec.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStore_ListNewestFirst(t *testing.T) {
	store := NewGormStore(newTestDB(t))
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		_, err := store.Insert(ctx, Record{OwnerID: 1, Name: name, Data: []byte(`{}`)})
		require.NoError(t, err)
	}
	_, err := store.Insert(ctx, Record{OwnerID: 2, Name: "x", Data: []byte(`{}`)})
	require.NoError(t, err)

	records, err := store.ListByOwner(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{records[0].Name, records[1].Name, records[2].Name})
}

func TestAdapterOverGormStore_RoundTrip(t *testing.T) {
	a := NewAdapter(NewGormStore(newTestDB(t)))
	ctx := context.Background()
	doc := sampleDoc()

	saved, err := a.Save(ctx, 9, "Gorm CV", doc)
	require.NoError(t, err)

	_, loaded, err := a.Load(ctx, 9, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, doc, loaded)
}
