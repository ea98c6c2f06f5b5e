/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

// Package store keeps logic analyzer captures in a bbolt database, one
// bucket per core.
package store

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-manta/pkg/capture"
	"jinr.ru/greenlab/go-manta/pkg/log"
)

const (
	BucketNamePrefix = "captures_"
	// OpenTimeout bounds waiting for the file lock held by another process
	OpenTimeout = time.Second
)

// ErrNotFound is returned for unknown cores and capture ids
type ErrNotFound struct {
	What string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("not found: %s", e.What)
}

type CaptureStore struct {
	DB *bbolt.DB
}

// Summary describes a stored capture without its samples
type Summary struct {
	ID          uint64 `json:"id"`
	Core        string `json:"core"`
	TriggerMode string `json:"trigger_mode"`
	SampleDepth int    `json:"sample_depth"`
	Timestamp   string `json:"timestamp"`
}

func NewCaptureStore(path string) (*CaptureStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: OpenTimeout})
	if err != nil {
		return nil, errors.Wrapf(err, "opening capture database %s", path)
	}
	return &CaptureStore{DB: db}, nil
}

func uint64ToByte(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func bucketName(coreName string) []byte {
	return []byte(fmt.Sprintf("%s%s", BucketNamePrefix, coreName))
}

func (s *CaptureStore) Close() error {
	return s.DB.Close()
}

// Save stores the capture and returns its id. Ids grow per core from 1.
func (s *CaptureStore) Save(c *capture.Capture) (uint64, error) {
	record := c.Record()
	if err := s.DB.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName(c.Core))
		if err != nil {
			return err
		}
		id, err := b.NextSequence()
		if err != nil {
			return err
		}
		record.ID = id
		data, err := yaml.Marshal(record)
		if err != nil {
			return err
		}
		return b.Put(uint64ToByte(id), data)
	}); err != nil {
		return 0, errors.Wrapf(err, "saving capture of %s", c.Core)
	}
	log.Debug("Saved capture %d of %s", record.ID, c.Core)
	return record.ID, nil
}

// LoadRecord returns the stored form of a capture
func (s *CaptureStore) LoadRecord(coreName string, id uint64) (*capture.Record, error) {
	record := &capture.Record{}
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName(coreName))
		if b == nil {
			return ErrNotFound{What: fmt.Sprintf("captures of %s", coreName)}
		}
		data := b.Get(uint64ToByte(id))
		if data == nil {
			return ErrNotFound{What: fmt.Sprintf("capture %d of %s", id, coreName)}
		}
		return yaml.Unmarshal(data, record)
	}); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *CaptureStore) Load(coreName string, id uint64) (*capture.Capture, error) {
	record, err := s.LoadRecord(coreName, id)
	if err != nil {
		return nil, err
	}
	return record.Capture()
}

// List returns summaries of the captures of a core in id order. A core
// without captures has an empty list.
func (s *CaptureStore) List(coreName string) ([]*Summary, error) {
	summaries := []*Summary{}
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName(coreName))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			record := &capture.Record{}
			if err := yaml.Unmarshal(v, record); err != nil {
				return errors.Wrapf(err, "decoding capture %d of %s", binary.BigEndian.Uint64(k), coreName)
			}
			summaries = append(summaries, &Summary{
				ID:          record.ID,
				Core:        record.Core,
				TriggerMode: record.TriggerMode,
				SampleDepth: len(record.Samples),
				Timestamp:   record.Timestamp.Format(time.RFC3339),
			})
			return nil
		})
	}); err != nil {
		return nil, err
	}
	return summaries, nil
}

// Delete removes a capture
func (s *CaptureStore) Delete(coreName string, id uint64) error {
	return s.DB.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName(coreName))
		if b == nil || b.Get(uint64ToByte(id)) == nil {
			return ErrNotFound{What: fmt.Sprintf("capture %d of %s", id, coreName)}
		}
		return b.Delete(uint64ToByte(id))
	})
}
