package database

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-sod/smote/internal/database"
	"github.com/go-sod/smote/internal/dataset"
	"github.com/go-sod/smote/internal/run/model"
	"github.com/go-sod/smote/internal/util"
	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

const (
	runsBucket     = "run:records"
	datasetsBucket = "run:datasets"
)

var ErrNotFound = fmt.Errorf("run not found")

type FilterFn func(run model.Run) bool

func New(db *database.DB) *DB {
	return &DB{sDB: db}
}

type DB struct {
	sDB *database.DB
}

func (db *DB) Store(_ context.Context, run model.Run) error {
	bytes, err := json.Marshal(run)
	if err != nil {
		return err
	}

	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(runsBucket))
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		if err := b.Put([]byte(run.ID.String()), bytes); err != nil {
			return fmt.Errorf("put to bucket error: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("update transaction error: %w", err)
	}

	return nil
}

// StoreDataset keeps the balanced dataset of a run in XDR form.
func (db *DB) StoreDataset(_ context.Context, id uuid.UUID, ds *dataset.Dataset) error {
	return util.WithBuffer(func(buffer *bytes.Buffer) error {
		if err := dataset.Encode(buffer, ds); err != nil {
			return fmt.Errorf("encode dataset: %w", err)
		}
		if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
			b, err := tx.CreateBucketIfNotExists([]byte(datasetsBucket))
			if err != nil {
				return fmt.Errorf("create bucket: %w", err)
			}
			return b.Put([]byte(id.String()), buffer.Bytes())
		}); err != nil {
			return fmt.Errorf("update transaction error: %w", err)
		}
		return nil
	})
}

func (db *DB) Find(_ context.Context, id uuid.UUID) (model.Run, error) {
	var run model.Run
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(runsBucket))
		if b == nil {
			return ErrNotFound
		}
		v := b.Get([]byte(id.String()))
		if v == nil {
			return ErrNotFound
		}
		if err := json.Unmarshal(v, &run); err != nil {
			return fmt.Errorf("json unmarshal error, %w", err)
		}
		return nil
	}); err != nil {
		return model.Run{}, fmt.Errorf("view transaction error: %w", err)
	}

	return run, nil
}

func (db *DB) FindDataset(_ context.Context, id uuid.UUID) (*dataset.Dataset, error) {
	var ds *dataset.Dataset
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(datasetsBucket))
		if b == nil {
			return ErrNotFound
		}
		v := b.Get([]byte(id.String()))
		if v == nil {
			return ErrNotFound
		}
		decoded, err := dataset.Decode(bytes.NewReader(v))
		if err != nil {
			return fmt.Errorf("decode dataset: %w", err)
		}
		ds = decoded
		return nil
	}); err != nil {
		return nil, fmt.Errorf("view transaction error: %w", err)
	}

	return ds, nil
}

func (db *DB) FindAll(_ context.Context, filter FilterFn) ([]model.Run, error) {
	var runs []model.Run
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(runsBucket))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var run model.Run
			if err := json.Unmarshal(v, &run); err != nil {
				return fmt.Errorf("json unmarshal error, %w", err)
			}
			if filter == nil || filter(run) {
				runs = append(runs, run)
			}
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("view transaction error: %w", err)
	}

	return runs, nil
}

func (db *DB) Delete(_ context.Context, id uuid.UUID) error {
	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{runsBucket, datasetsBucket} {
			b := tx.Bucket([]byte(name))
			if b == nil {
				continue
			}
			if err := b.Delete([]byte(id.String())); err != nil {
				return fmt.Errorf("unable delete: %w", err)
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("update transaction error: %w", err)
	}

	return nil
}

func (db *DB) Count() (int, error) {
	var length int
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(runsBucket))
		if b == nil {
			return nil
		}
		length = b.Stats().KeyN
		return nil
	}); err != nil {
		return 0, fmt.Errorf("view transaction error: %w", err)
	}

	return length, nil
}
