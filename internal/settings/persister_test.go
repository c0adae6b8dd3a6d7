package settings

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-song-queue/pkg/database"
	"github.com/weiawesome/wes-io-song-queue/pkg/storage"
)

func TestObjectPersister(t *testing.T) {
	ctx := context.Background()
	local, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir()})
	require.NoError(t, err)

	p := NewObjectPersister(local, "data/settings.json")

	data, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, p.Save(ctx, []byte(`{"theme":{}}`)))
	data, err = p.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":{}}`, string(data))
}

func TestGormPersister(t *testing.T) {
	ctx := context.Background()
	db, err := database.New(&database.Config{Driver: "sqlite", FilePath: filepath.Join(t.TempDir(), "settings.db"), MaxOpenConns: 1})
	require.NoError(t, err)
	defer database.Close(db)
	require.NoError(t, database.AutoMigrate(db, &RecordModel{}))

	p := NewGormPersister(db, "overlay")

	data, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, p.Save(ctx, []byte(`{"a":1}`)))
	require.NoError(t, p.Save(ctx, []byte(`{"a":2}`)))

	data, err = p.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2}`, string(data))

	var count int64
	require.NoError(t, db.Model(&RecordModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestStoreRoundTripsThroughObjectPersister(t *testing.T) {
	ctx := context.Background()
	local, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir()})
	require.NoError(t, err)
	p := NewObjectPersister(local, "settings.json")

	first := NewStore(p, Options{Debounce: testDebounce})
	first.LoadInitial(ctx)
	first.SetTheme(map[string]string{"textPrimary": "#00ff00"})
	first.Close()

	second := NewStore(p, Options{Debounce: testDebounce})
	got := second.LoadInitial(ctx)
	assert.Equal(t, "#00ff00", got.Theme["textPrimary"])
	second.Close()
}
