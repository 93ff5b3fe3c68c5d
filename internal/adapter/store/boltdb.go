package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"cobolscan/internal/domain"
	"go.etcd.io/bbolt"
)

var (
	bucketPrograms     = []byte("programs")
	bucketProgramNames = []byte("program_names")
	bucketSummaries    = []byte("summaries")
	bucketStats        = []byte("stats")
	keyStats           = []byte("corpus_stats")
)

// ErrNotFound is returned when a program or summary does not exist.
var ErrNotFound = domain.ErrNotFound

type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketPrograms, bucketProgramNames, bucketSummaries, bucketStats} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
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

func (s *BoltStore) DB() *bbolt.DB {
	return s.db
}

func summaryKey(programID, paragraph string) []byte {
	return []byte(programID + "\x00" + paragraph)
}

func (s *BoltStore) PutProgram(prog domain.Program) error {
	data, err := json.Marshal(prog)
	if err != nil {
		return fmt.Errorf("failed to encode program %s: %w", prog.Path, err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketPrograms).Put([]byte(prog.ID), data); err != nil {
			return err
		}
		return tx.Bucket(bucketProgramNames).Put([]byte(strings.ToUpper(prog.Name)), []byte(prog.ID))
	})
}

func (s *BoltStore) GetProgram(id string) (domain.Program, error) {
	var prog domain.Program
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketPrograms).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("program %s: %w", id, ErrNotFound)
		}
		return json.Unmarshal(data, &prog)
	})
	return prog, err
}

// FindProgram resolves a program by id, name (case-insensitive) or path.
func (s *BoltStore) FindProgram(nameOrPath string) (domain.Program, error) {
	var id string
	err := s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketPrograms).Get([]byte(nameOrPath)) != nil {
			id = nameOrPath
			return nil
		}
		if v := tx.Bucket(bucketProgramNames).Get([]byte(strings.ToUpper(nameOrPath))); v != nil {
			id = string(v)
			return nil
		}
		return tx.Bucket(bucketPrograms).ForEach(func(k, v []byte) error {
			var prog struct {
				Path string `json:"path"`
			}
			if err := json.Unmarshal(v, &prog); err != nil {
				return nil
			}
			if prog.Path == nameOrPath {
				id = string(k)
			}
			return nil
		})
	})
	if err != nil {
		return domain.Program{}, err
	}
	if id == "" {
		return domain.Program{}, fmt.Errorf("program %s: %w", nameOrPath, ErrNotFound)
	}
	return s.GetProgram(id)
}

// DeleteProgram removes a program together with its summaries. A name entry
// that pointed at the program moves to another stored program with the same
// name, if there is one.
func (s *BoltStore) DeleteProgram(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		programs := tx.Bucket(bucketPrograms)
		if err := programs.Delete([]byte(id)); err != nil {
			return err
		}
		if err := deletePrefix(tx.Bucket(bucketSummaries), []byte(id+"\x00")); err != nil {
			return err
		}

		names := tx.Bucket(bucketProgramNames)
		var stale [][]byte
		if err := names.ForEach(func(k, v []byte) error {
			if string(v) == id {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		}); err != nil {
			return err
		}

		for _, name := range stale {
			survivor, err := programWithName(programs, string(name))
			if err != nil {
				return err
			}
			if survivor == "" {
				err = names.Delete(name)
			} else {
				err = names.Put(name, []byte(survivor))
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// programWithName returns the smallest id among programs named name, or "".
func programWithName(programs *bbolt.Bucket, name string) (string, error) {
	var id string
	err := programs.ForEach(func(k, v []byte) error {
		if id != "" {
			return nil
		}
		var prog struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(v, &prog); err != nil {
			return fmt.Errorf("failed to decode program %s: %w", k, err)
		}
		if strings.ToUpper(prog.Name) == name {
			id = string(k)
		}
		return nil
	})
	return id, err
}

func (s *BoltStore) ListPrograms() ([]domain.Program, error) {
	var progs []domain.Program
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPrograms).ForEach(func(k, v []byte) error {
			var prog domain.Program
			if err := json.Unmarshal(v, &prog); err != nil {
				return fmt.Errorf("failed to decode program %s: %w", k, err)
			}
			progs = append(progs, prog)
			return nil
		})
	})
	return progs, err
}

func (s *BoltStore) PutSummary(sum domain.Summary) error {
	data, err := json.Marshal(sum)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSummaries).Put(summaryKey(sum.ProgramID, sum.Paragraph), data)
	})
}

func (s *BoltStore) GetSummary(programID, paragraph string) (domain.Summary, error) {
	var sum domain.Summary
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSummaries).Get(summaryKey(programID, paragraph))
		if data == nil {
			return fmt.Errorf("summary %s/%s: %w", programID, paragraph, ErrNotFound)
		}
		return json.Unmarshal(data, &sum)
	})
	return sum, err
}

// ListSummaries returns a program's summaries ordered by paragraph name.
func (s *BoltStore) ListSummaries(programID string) ([]domain.Summary, error) {
	var sums []domain.Summary
	prefix := []byte(programID + "\x00")
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketSummaries).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var sum domain.Summary
			if err := json.Unmarshal(v, &sum); err != nil {
				return err
			}
			sums = append(sums, sum)
		}
		return nil
	})
	return sums, err
}

func (s *BoltStore) GetStats() (domain.Stats, error) {
	var stats domain.Stats
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketStats).Get(keyStats)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &stats)
	})
	return stats, err
}

func (s *BoltStore) UpdateStats(stats domain.Stats) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketStats).Put(keyStats, data)
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// deletePrefix removes every key starting with prefix. Keys are collected
// first because deleting under a live cursor skips entries.
func deletePrefix(b *bbolt.Bucket, prefix []byte) error {
	var keys [][]byte
	c := b.Cursor()
	for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
		keys = append(keys, append([]byte(nil), k...))
	}
	for _, k := range keys {
		if err := b.Delete(k); err != nil {
			return err
		}
	}
	return nil
}
