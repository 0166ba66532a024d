/*
 * Copyright (C) 2025 Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 *
 */

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/nuts-foundation/go-stoabs"
	"github.com/nuts-foundation/go-stoabs/bbolt"
	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/storage/log"
)

const (
	// credentialShelf has the credential key (jti or hash) as key and the CredentialRecord as value
	credentialShelf = "credentials"
	// didShelf has the zero-padded creation time as key and the DIDRecord as value, so iteration yields the oldest first
	didShelf = "dids"
	// settingsShelf has the setting name as key and its value as value
	settingsShelf = "settings"
	// logShelf has a zero-padded sequence number as key and the LogEntry as value
	logShelf = "logs"
)

const sequenceKeyLength = 20

var nowFunc = time.Now

var _ Store = (*kvStore)(nil)

type kvStore struct {
	db stoabs.KVStore
}

// NewBBoltStore opens (or creates) a BBolt database at the given path, holding all wallet stores.
func NewBBoltStore(path string, noSync bool) (Store, error) {
	var opts []stoabs.Option
	if noSync {
		opts = append(opts, stoabs.WithNoSync())
	}
	log.Logger().
		WithField(core.LogFieldStore, path).
		Debug("Opening BBolt store")
	db, err := bbolt.CreateBBoltStore(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to open BBolt store (path=%s): %w", path, err)
	}
	return NewKVStore(db), nil
}

// NewKVStore creates a Store on top of the given key-value store.
func NewKVStore(db stoabs.KVStore) Store {
	return &kvStore{db: db}
}

func (s *kvStore) Close() error {
	return s.db.Close(context.Background())
}

func (s *kvStore) Save(ctx context.Context, record CredentialRecord, replace bool) error {
	if record.Hash == "" {
		return errors.New("credential record has no key")
	}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	key := stoabs.BytesKey(record.Hash)
	return s.db.Write(ctx, func(tx stoabs.WriteTx) error {
		if !replace {
			_, err := tx.GetShelfReader(credentialShelf).Get(key)
			if err == nil {
				return core.Errorf(core.ErrDuplicateCredential, "key=%s", record.Hash)
			}
			if !errors.Is(err, stoabs.ErrKeyNotFound) {
				return err
			}
		}
		log.Logger().
			WithField(core.LogFieldStoreShelf, credentialShelf).
			WithField(core.LogFieldCredentialID, record.Hash).
			Debug("Saving credential")
		return tx.GetShelfWriter(credentialShelf).Put(key, data)
	})
}

func (s *kvStore) Get(ctx context.Context, key string) (*CredentialRecord, error) {
	var result *CredentialRecord
	err := s.db.Read(ctx, func(tx stoabs.ReadTx) error {
		data, err := tx.GetShelfReader(credentialShelf).Get(stoabs.BytesKey(key))
		if errors.Is(err, stoabs.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		result = new(CredentialRecord)
		return json.Unmarshal(data, result)
	})
	return result, err
}

func (s *kvStore) Recent(ctx context.Context, days int) ([]CredentialRecord, error) {
	since := nowFunc().Add(-time.Duration(days) * 24 * time.Hour)
	result := make([]CredentialRecord, 0)
	err := s.db.Read(ctx, func(tx stoabs.ReadTx) error {
		return tx.GetShelfReader(credentialShelf).Iterate(func(key stoabs.Key, value []byte) error {
			var record CredentialRecord
			if err := json.Unmarshal(value, &record); err != nil {
				log.Logger().
					WithError(err).
					WithField(core.LogFieldCredentialID, string(key.Bytes())).
					Warn("Skipping unreadable credential record")
				return nil
			}
			if record.Timestamp.After(since) {
				result = append(result, record)
			}
			return nil
		}, stoabs.BytesKey{})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	return result, nil
}

func (s *kvStore) Delete(ctx context.Context, key string) error {
	return s.db.WriteShelf(ctx, credentialShelf, func(writer stoabs.Writer) error {
		return writer.Delete(stoabs.BytesKey(key))
	})
}

func (s *kvStore) DeleteAll(ctx context.Context) error {
	return s.db.Write(ctx, func(tx stoabs.WriteTx) error {
		keys, err := collectKeys(tx.GetShelfReader(credentialShelf))
		if err != nil {
			return err
		}
		writer := tx.GetShelfWriter(credentialShelf)
		for _, key := range keys {
			if err := writer.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *kvStore) FirstDID(ctx context.Context) (*DIDRecord, error) {
	var result *DIDRecord
	err := s.db.Read(ctx, func(tx stoabs.ReadTx) error {
		return tx.GetShelfReader(didShelf).Iterate(func(_ stoabs.Key, value []byte) error {
			if result != nil {
				return nil
			}
			result = new(DIDRecord)
			return json.Unmarshal(value, result)
		}, stoabs.BytesKey{})
	})
	return result, err
}

func (s *kvStore) SaveDID(ctx context.Context, record DIDRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	key := stoabs.BytesKey(sequenceKey(record.CreatedAt.UnixNano()) + "/" + record.DID)
	return s.db.Write(ctx, func(tx stoabs.WriteTx) error {
		if _, err := tx.GetShelfReader(didShelf).Get(key); err == nil {
			return fmt.Errorf("DID already exists: %s", record.DID)
		}
		log.Logger().
			WithField(core.LogFieldStoreShelf, didShelf).
			WithField(core.LogFieldDID, record.DID).
			Debug("Saving DID")
		return tx.GetShelfWriter(didShelf).Put(key, data)
	})
}

func (s *kvStore) GetSetting(ctx context.Context, key string) (string, error) {
	var result string
	err := s.db.ReadShelf(ctx, settingsShelf, func(reader stoabs.Reader) error {
		data, err := reader.Get(stoabs.BytesKey(key))
		if errors.Is(err, stoabs.ErrKeyNotFound) {
			return ErrNotFound
		}
		result = string(data)
		return err
	})
	return result, err
}

func (s *kvStore) PutSetting(ctx context.Context, key string, value string) error {
	return s.db.WriteShelf(ctx, settingsShelf, func(writer stoabs.Writer) error {
		return writer.Put(stoabs.BytesKey(key), []byte(value))
	})
}

func (s *kvStore) DeleteSetting(ctx context.Context, key string) error {
	return s.db.WriteShelf(ctx, settingsShelf, func(writer stoabs.Writer) error {
		return writer.Delete(stoabs.BytesKey(key))
	})
}

func (s *kvStore) AppendLog(ctx context.Context, entry LogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.db.Write(ctx, func(tx stoabs.WriteTx) error {
		keys, err := collectKeys(tx.GetShelfReader(logShelf))
		if err != nil {
			return err
		}
		var next int64
		if len(keys) > 0 {
			last, err := strconv.ParseInt(string(keys[len(keys)-1].Bytes()), 10, 64)
			if err != nil {
				return err
			}
			next = last + 1
		}
		writer := tx.GetShelfWriter(logShelf)
		if err := writer.Put(stoabs.BytesKey(sequenceKey(next)), data); err != nil {
			return err
		}
		// keys are ordered, so the oldest entries come first
		for excess := len(keys) + 1 - MaxLogEntries; excess > 0; excess-- {
			if err := writer.Delete(keys[len(keys)+1-MaxLogEntries-excess]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *kvStore) ListLogs(ctx context.Context) ([]LogEntry, error) {
	result := make([]LogEntry, 0)
	err := s.db.ReadShelf(ctx, logShelf, func(reader stoabs.Reader) error {
		return reader.Iterate(func(_ stoabs.Key, value []byte) error {
			var entry LogEntry
			if err := json.Unmarshal(value, &entry); err != nil {
				return err
			}
			result = append(result, entry)
			return nil
		}, stoabs.BytesKey{})
	})
	return result, err
}

func collectKeys(reader stoabs.Reader) ([]stoabs.Key, error) {
	var keys []stoabs.Key
	err := reader.Iterate(func(key stoabs.Key, _ []byte) error {
		keys = append(keys, key)
		return nil
	}, stoabs.BytesKey{})
	return keys, err
}

func sequenceKey(n int64) string {
	return fmt.Sprintf("%0*d", sequenceKeyLength, n)
}
