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
	"errors"
	"path"

	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/storage/log"
)

const engineName = "Storage"

var _ core.Engine = (*Engine)(nil)
var _ core.Configurable = (*Engine)(nil)
var _ core.Runnable = (*Engine)(nil)
var _ core.Injectable = (*Engine)(nil)

// Engine provides the wallet's persistent store and its in-memory session store.
type Engine struct {
	config   Config
	datadir  string
	store    Store
	sessions *SessionDatabase
}

// New creates a new storage engine with the default configuration.
func New() *Engine {
	return &Engine{
		config: DefaultConfig(),
	}
}

func (e *Engine) Name() string {
	return engineName
}

func (e *Engine) ConfigKey() string {
	return "storage"
}

func (e *Engine) Config() interface{} {
	return &e.config
}

// Configure opens the database in the data directory.
func (e *Engine) Configure(config core.WalletConfig) error {
	if e.config.BBolt.Filename == "" {
		return errors.New("storage.bbolt.filename must be set")
	}
	e.datadir = config.Datadir
	store, err := NewBBoltStore(path.Join(e.datadir, e.config.BBolt.Filename), e.config.BBolt.NoSync)
	if err != nil {
		return err
	}
	e.store = store
	e.sessions = NewSessionDatabase()
	return nil
}

func (e *Engine) Start() error {
	return nil
}

func (e *Engine) Shutdown() error {
	if e.store == nil {
		return nil
	}
	if err := e.store.Close(); err != nil {
		log.Logger().WithError(err).Error("Failed to close store")
		return err
	}
	return nil
}

// Store returns the persistent store. It's only available after Configure has been called.
func (e *Engine) Store() Store {
	return e.store
}

// Sessions returns a session store with the configured TTL, which keys are prefixed with the given prefixes.
func (e *Engine) Sessions(prefixes ...string) SessionStore {
	return e.sessions.GetStore(e.config.Session.TTL, prefixes...)
}
