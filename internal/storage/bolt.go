package storage

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"sort"
	"time"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"arc56/internal/models"
)

var (
	deploymentsBucket = []byte("deployments")
	activitiesBucket  = []byte("activities")
)

// BoltRepository implements the Repository interface on an embedded bbolt file
type BoltRepository struct {
	db *bbolt.DB
}

// NewBoltRepository opens (or creates) the database file at path
func NewBoltRepository(path string) (*BoltRepository, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open db")
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{deploymentsBucket, activitiesBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return errors.Wrapf(err, "failed to create bucket %s", name)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltRepository{db: db}, nil
}

func appKey(appID uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, appID)
}

// activityKey orders activities by application then round
func activityKey(a *models.CallActivity) []byte {
	key := binary.BigEndian.AppendUint64(appKey(a.AppID), a.Round)
	return append(key, a.ActivityID...)
}

// SaveDeployment stores a deployment unless one exists for the application
func (r *BoltRepository) SaveDeployment(_ context.Context, d *models.Deployment) error {
	data, err := json.Marshal(d)
	if err != nil {
		return errors.Wrap(err, "failed to marshal deployment")
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(deploymentsBucket)
		key := appKey(d.AppID)
		if b.Get(key) != nil {
			return nil
		}
		return b.Put(key, data)
	})
}

// GetDeployment retrieves a deployment by application id
func (r *BoltRepository) GetDeployment(_ context.Context, appID uint64) (*models.Deployment, error) {
	var d *models.Deployment
	err := r.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(deploymentsBucket).Get(appKey(appID))
		if data == nil {
			return errors.Wrapf(ErrNotFound, "deployment %d", appID)
		}
		d = &models.Deployment{}
		return json.Unmarshal(data, d)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ListDeployments lists deployments, newest first, with pagination
func (r *BoltRepository) ListDeployments(_ context.Context, limit, offset int) ([]*models.Deployment, error) {
	var deployments []*models.Deployment
	err := r.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(deploymentsBucket).ForEach(func(_, v []byte) error {
			var d models.Deployment
			if err := json.Unmarshal(v, &d); err != nil {
				return errors.Wrap(err, "failed to unmarshal deployment")
			}
			deployments = append(deployments, &d)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(deployments, func(i, j int) bool {
		return deployments[i].CreatedAtRound > deployments[j].CreatedAtRound
	})
	return paginate(deployments, limit, offset), nil
}

// SaveActivity stores a call activity
func (r *BoltRepository) SaveActivity(_ context.Context, a *models.CallActivity) error {
	data, err := json.Marshal(a)
	if err != nil {
		return errors.Wrap(err, "failed to marshal call activity")
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(activitiesBucket).Put(activityKey(a), data)
	})
}

// ListActivities lists call activities matching the filter, newest first
func (r *BoltRepository) ListActivities(_ context.Context, f models.ActivityFilter) ([]*models.CallActivity, error) {
	var prefix []byte
	if f.AppID != 0 {
		prefix = appKey(f.AppID)
	}

	var activities []*models.CallActivity
	err := r.db.View(func(tx *bbolt.Tx) error {
		cursor := tx.Bucket(activitiesBucket).Cursor()
		for k, v := cursor.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = cursor.Next() {
			var a models.CallActivity
			if err := json.Unmarshal(v, &a); err != nil {
				return errors.Wrap(err, "failed to unmarshal call activity")
			}
			if matches(&a, f) {
				activities = append(activities, &a)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Round > activities[j].Round
	})
	return paginate(activities, f.Limit, f.Offset), nil
}

// Ping checks the database is open
func (r *BoltRepository) Ping(_ context.Context) error {
	return r.db.View(func(*bbolt.Tx) error { return nil })
}

// Close closes the database file
func (r *BoltRepository) Close() error {
	return r.db.Close()
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
