package settings

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/weiawesome/wes-io-song-queue/pkg/storage"
)

// Persister loads and saves the encoded settings record at a fixed location.
// Load returns nil, nil when nothing has been saved yet.
type Persister interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// ObjectPersister keeps the record as one object in a storage.Storage,
// either the local filesystem or an S3 bucket.
type ObjectPersister struct {
	store storage.Storage
	key   string
}

// NewObjectPersister creates a persister writing to key.
func NewObjectPersister(store storage.Storage, key string) *ObjectPersister {
	return &ObjectPersister{store: store, key: key}
}

func (p *ObjectPersister) Load(ctx context.Context) ([]byte, error) {
	rc, err := p.store.Read(ctx, p.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings object: %w", err)
	}
	return data, nil
}

func (p *ObjectPersister) Save(ctx context.Context, data []byte) error {
	return p.store.Write(ctx, p.key, bytes.NewReader(data), int64(len(data)), "application/json")
}

// RedisPersister keeps the record under a single redis key without expiry.
type RedisPersister struct {
	client *redis.Client
	key    string
}

// NewRedisPersister creates a persister writing to key.
func NewRedisPersister(client *redis.Client, key string) *RedisPersister {
	return &RedisPersister{client: client, key: key}
}

func (p *RedisPersister) Load(ctx context.Context) ([]byte, error) {
	data, err := p.client.Get(ctx, p.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get settings from redis: %w", err)
	}
	return data, nil
}

func (p *RedisPersister) Save(ctx context.Context, data []byte) error {
	if err := p.client.Set(ctx, p.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set settings in redis: %w", err)
	}
	return nil
}

// RecordModel is the GORM model for the settings table.
type RecordModel struct {
	Name      string    `gorm:"type:varchar(64);primaryKey"`
	Payload   string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for RecordModel.
func (RecordModel) TableName() string {
	return "overlay_settings"
}

// GormPersister keeps the record as one row keyed by name.
type GormPersister struct {
	db  *gorm.DB
	key string
}

// NewGormPersister creates a persister writing the row named key. The
// table must already be migrated with RecordModel.
func NewGormPersister(db *gorm.DB, key string) *GormPersister {
	return &GormPersister{db: db, key: key}
}

func (p *GormPersister) Load(ctx context.Context) ([]byte, error) {
	var model RecordModel
	result := p.db.WithContext(ctx).Where(&RecordModel{Name: p.key}).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load settings row: %w", result.Error)
	}
	return []byte(model.Payload), nil
}

func (p *GormPersister) Save(ctx context.Context, data []byte) error {
	model := RecordModel{Name: p.key, Payload: string(data)}
	result := p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&model)
	if result.Error != nil {
		return fmt.Errorf("failed to save settings row: %w", result.Error)
	}
	return nil
}
