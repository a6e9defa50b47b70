package repositories

import (
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"chatline/errors"
)

type IImageRepository interface {
	StoreImage(data []byte, contentType string) (string, error)
	GetImage(id string) ([]byte, string, error)
}

// storedImage keeps the sniffed content type next to the blob so the
// serving handler never re-detects it.
type storedImage struct {
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

type ImageRepository struct {
	db *badger.DB
}

func NewImageRepository(db *badger.DB) IImageRepository {
	return &ImageRepository{db: db}
}

// StoreImage persists an image blob and returns its generated ID.
func (r *ImageRepository) StoreImage(data []byte, contentType string) (string, error) {
	id := uuid.NewString()
	doc, err := json.Marshal(storedImage{ContentType: contentType, Data: data})
	if err != nil {
		return "", fmt.Errorf("marshal failed: %w", err)
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("img:"+id), doc)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetImage returns the blob and its content type.
func (r *ImageRepository) GetImage(id string) ([]byte, string, error) {
	var stored storedImage
	err := r.db.View(func(txn *badger.Txn) error {
		return readJSON(txn, []byte("img:"+id), &stored)
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return nil, "", errors.ErrImageNotFound
	}
	if err != nil {
		return nil, "", err
	}
	return stored.Data, stored.ContentType, nil
}
