package gateway

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/desertthunder/taskx/internal/models"
	"github.com/desertthunder/taskx/internal/shared"
	bolt "go.etcd.io/bbolt"
)

var (
	tasksBucket      = []byte("tasks")
	categoriesBucket = []byte("categories")
)

// Bolt persists tasks as JSON values in a bbolt file.
//
// Tasks are keyed by id. Categories are keyed by insertion sequence so they list in seed order.
type Bolt struct {
	db    *bolt.DB
	now   func() time.Time
	newID func() string
}

// OpenBolt opens (creating if needed) the bolt file at path and seeds the default categories on first use.
func OpenBolt(path string) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create bolt directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(tasksBucket); err != nil {
			return err
		}
		categories, err := tx.CreateBucketIfNotExists(categoriesBucket)
		if err != nil {
			return err
		}
		if categories.Stats().KeyN > 0 {
			return nil
		}
		for _, c := range DefaultCategories() {
			if err := putCategory(categories, c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize bolt buckets: %w", err)
	}

	return &Bolt{db: db, now: time.Now, newID: shared.GenerateID}, nil
}

// Close closes the bolt database.
func (b *Bolt) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

func (b *Bolt) GetAllTasks(ctx context.Context) ([]models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var tasks []models.Task
	err := b.db.View(func(tx *bolt.Tx) error {
		var err error
		tasks, err = readTasks(tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (b *Bolt) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var categories []models.Category
	err := b.db.View(func(tx *bolt.Tx) error {
		tasks, err := readTasks(tx)
		if err != nil {
			return err
		}

		counts := make(map[string]int, len(tasks))
		for _, t := range tasks {
			counts[t.Category]++
		}

		return tx.Bucket(categoriesBucket).ForEach(func(_, v []byte) error {
			var c models.Category
			if err := json.Unmarshal(v, &c); err != nil {
				return fmt.Errorf("failed to decode category: %w", err)
			}
			c.TaskCount = counts[c.ID]
			categories = append(categories, c)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (b *Bolt) GetTask(ctx context.Context, id string) (models.Task, error) {
	if err := ctx.Err(); err != nil {
		return models.Task{}, err
	}

	var task models.Task
	err := b.db.View(func(tx *bolt.Tx) error {
		var err error
		task, err = getTask(tx, id)
		return err
	})
	return task, err
}

func (b *Bolt) CreateTask(ctx context.Context, draft models.Task) (models.Task, error) {
	if err := ctx.Err(); err != nil {
		return models.Task{}, err
	}

	task, err := normalizeDraft(draft)
	if err != nil {
		return models.Task{}, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	err = b.db.Update(func(tx *bolt.Tx) error {
		tasks, err := readTasks(tx)
		if err != nil {
			return err
		}

		task.ID = b.newID()
		task.CreatedAt = b.now()
		task.Order = assignOrder(tasks, task.Order)
		return putTask(tx, task)
	})
	if err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (b *Bolt) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	if err := ctx.Err(); err != nil {
		return models.Task{}, err
	}
	if err := patch.Validate(); err != nil {
		return models.Task{}, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	var task models.Task
	err := b.db.Update(func(tx *bolt.Tx) error {
		current, err := getTask(tx, id)
		if err != nil {
			return err
		}
		task = patch.Apply(current)
		return putTask(tx, task)
	})
	if err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (b *Bolt) DeleteTask(ctx context.Context, id string) (models.Task, error) {
	if err := ctx.Err(); err != nil {
		return models.Task{}, err
	}

	var removed models.Task
	err := b.db.Update(func(tx *bolt.Tx) error {
		task, err := getTask(tx, id)
		if err != nil {
			return err
		}
		removed = task
		return tx.Bucket(tasksBucket).Delete([]byte(id))
	})
	if err != nil {
		return models.Task{}, err
	}
	return removed, nil
}

// ReorderTasks rewrites every task inside one bolt transaction.
func (b *Bolt) ReorderTasks(ctx context.Context, ids []string) ([]models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var reordered []models.Task
	err := b.db.Update(func(tx *bolt.Tx) error {
		tasks, err := readTasks(tx)
		if err != nil {
			return err
		}

		current := make([]string, len(tasks))
		byID := make(map[string]models.Task, len(tasks))
		for i, t := range tasks {
			current[i] = t.ID
			byID[t.ID] = t
		}

		reordered = make([]models.Task, 0, len(tasks))
		for i, id := range resequence(current, ids) {
			t := byID[id]
			t.Order = i
			if err := putTask(tx, t); err != nil {
				return err
			}
			reordered = append(reordered, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reordered, nil
}

func readTasks(tx *bolt.Tx) ([]models.Task, error) {
	tasks := []models.Task{}
	err := tx.Bucket(tasksBucket).ForEach(func(_, v []byte) error {
		var t models.Task
		if err := json.Unmarshal(v, &t); err != nil {
			return fmt.Errorf("failed to decode task: %w", err)
		}
		tasks = append(tasks, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	models.SortTasks(tasks)
	return tasks, nil
}

func getTask(tx *bolt.Tx, id string) (models.Task, error) {
	v := tx.Bucket(tasksBucket).Get([]byte(id))
	if v == nil {
		return models.Task{}, fmt.Errorf("%w: %s", shared.ErrTaskNotFound, id)
	}

	var t models.Task
	if err := json.Unmarshal(v, &t); err != nil {
		return models.Task{}, fmt.Errorf("failed to decode task: %w", err)
	}
	return t, nil
}

func putTask(tx *bolt.Tx, t models.Task) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode task: %w", err)
	}
	return tx.Bucket(tasksBucket).Put([]byte(t.ID), payload)
}

func putCategory(bucket *bolt.Bucket, c models.Category) error {
	seq, err := bucket.NextSequence()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode category: %w", err)
	}

	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return bucket.Put(key, payload)
}
