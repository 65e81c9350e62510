package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/cuemby/lookout/pkg/types"
)

var (
	// Bucket names
	bucketMetrics  = []byte("metrics")
	bucketHealth   = []byte("health")
	bucketSecurity = []byte("security")
	bucketLogs     = []byte("logs")
	bucketAlerts   = []byte("alerts")
	bucketCommands = []byte("commands")
)

// kindBuckets maps record kinds to their bucket
var kindBuckets = map[types.RecordKind][]byte{
	types.RecordKindMetrics:  bucketMetrics,
	types.RecordKindHealth:   bucketHealth,
	types.RecordKindSecurity: bucketSecurity,
	types.RecordKindLogs:     bucketLogs,
}

// BoltStore implements Store using BoltDB
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore creates a new BoltDB-backed store
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "lookout.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Create buckets
	err = db.Update(func(tx *bolt.Tx) error {
		buckets := [][]byte{
			bucketMetrics,
			bucketHealth,
			bucketSecurity,
			bucketLogs,
			bucketAlerts,
			bucketCommands,
		}

		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// recordKey builds a time-ordered unique key so cursor scans return
// records in chronological order
func recordKey(ts time.Time, id string) []byte {
	return []byte(fmt.Sprintf("%020d-%s", ts.UnixNano(), id))
}

// Append stores a timestamped record tagged by kind
func (s *BoltStore) Append(kind types.RecordKind, payload interface{}) (*types.Record, error) {
	bucket, ok := kindBuckets[kind]
	if !ok {
		return nil, fmt.Errorf("unknown record kind: %s", kind)
	}

	record := &types.Record{
		ID:        uuid.New().String(),
		Kind:      kind,
		Timestamp: time.Now(),
		Payload:   payload,
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		return b.Put(recordKey(record.Timestamp, record.ID), data)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Recent returns up to limit records of the given kind, newest first
func (s *BoltStore) Recent(kind types.RecordKind, limit int) ([]*types.Record, error) {
	bucket, ok := kindBuckets[kind]
	if !ok {
		return nil, fmt.Errorf("unknown record kind: %s", kind)
	}
	if limit <= 0 {
		limit = 100
	}

	var records []*types.Record
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucket).Cursor()
		for k, v := c.Last(); k != nil && len(records) < limit; k, v = c.Prev() {
			var record types.Record
			if err := json.Unmarshal(v, &record); err != nil {
				return err
			}
			records = append(records, &record)
		}
		return nil
	})
	return records, err
}

// SaveAlert stores an alert keyed by detection time (upsert on re-save,
// e.g. after acknowledgment)
func (s *BoltStore) SaveAlert(alert *types.Alert) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketAlerts)
		data, err := json.Marshal(alert)
		if err != nil {
			return err
		}
		return b.Put(recordKey(alert.DetectedAt, alert.ID), data)
	})
}

// ListAlerts returns up to limit persisted alerts, newest first
func (s *BoltStore) ListAlerts(limit int) ([]*types.Alert, error) {
	if limit <= 0 {
		limit = 100
	}

	var alerts []*types.Alert
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketAlerts).Cursor()
		for k, v := c.Last(); k != nil && len(alerts) < limit; k, v = c.Prev() {
			var alert types.Alert
			if err := json.Unmarshal(v, &alert); err != nil {
				return err
			}
			alerts = append(alerts, &alert)
		}
		return nil
	})
	return alerts, err
}

// SaveCommand stores a dispatched command with its terminal status
func (s *BoltStore) SaveCommand(cmd *types.DeploymentCommand) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCommands)
		data, err := json.Marshal(cmd)
		if err != nil {
			return err
		}
		return b.Put(recordKey(cmd.RequestedAt, cmd.ID), data)
	})
}

// ListCommands returns up to limit persisted commands, newest first
func (s *BoltStore) ListCommands(limit int) ([]*types.DeploymentCommand, error) {
	if limit <= 0 {
		limit = 100
	}

	var cmds []*types.DeploymentCommand
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketCommands).Cursor()
		for k, v := c.Last(); k != nil && len(cmds) < limit; k, v = c.Prev() {
			var cmd types.DeploymentCommand
			if err := json.Unmarshal(v, &cmd); err != nil {
				return err
			}
			cmds = append(cmds, &cmd)
		}
		return nil
	})
	return cmds, err
}
