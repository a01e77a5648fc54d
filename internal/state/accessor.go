package state

import (
	"bytes"
	"context"
	"encoding/binary"

	"github.com/pkg/errors"

	"arc56/internal/arc56"
	"arc56/internal/codec"
	"arc56/internal/ledger"
	"arc56/internal/logging"
	"arc56/internal/metrics"
)

var (
	// ErrUnknownStorageName is returned when no namespace declares the key or map
	ErrUnknownStorageName = errors.New("unknown storage name")
	// ErrAddressRequired is returned for local storage reads without an account address
	ErrAddressRequired = errors.New("address required to read local storage")
	// ErrStateEntryNotFound is returned when the key is declared but nothing is stored under it
	ErrStateEntryNotFound = errors.New("state entry not found")
)

// AppIDSource yields the application the accessor reads from
type AppIDSource interface {
	AppID() uint64
}

// Accessor computes storage keys and reads decoded values through the ledger
type Accessor struct {
	contract *arc56.Contract
	codec    *codec.Codec
	ledger   ledger.Ledger
	app      AppIDSource
	log      logging.Logger
}

// NewAccessor creates a new Accessor
func NewAccessor(contract *arc56.Contract, c *codec.Codec, l ledger.Ledger, app AppIDSource, log logging.Logger) *Accessor {
	return &Accessor{
		contract: contract,
		codec:    c,
		ledger:   l,
		app:      app,
		log:      log,
	}
}

// Key reads the storage key called name.
// address is the account whose local state is read and is ignored for global and box keys.
func (a *Accessor) Key(ctx context.Context, name, address string) (any, error) {
	ns, key, ok := a.contract.State.Key(name)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownStorageName, "key %q", name)
	}

	raw, err := a.fetch(ctx, ns, key.Key, address)
	if err != nil {
		return nil, errors.Wrapf(err, "key %q", name)
	}
	return a.codec.Decode(key.ValueType, raw)
}

// Map reads the entry stored under mapKey in the storage map called name
func (a *Accessor) Map(ctx context.Context, name string, mapKey any, address string) (any, error) {
	ns, storageKey, m, err := a.mapKey(name, mapKey)
	if err != nil {
		return nil, err
	}

	raw, err := a.fetch(ctx, ns, storageKey, address)
	if err != nil {
		return nil, errors.Wrapf(err, "map %q", name)
	}
	return a.codec.Decode(m.ValueType, raw)
}

// MapKey returns the full storage key of an entry: the map prefix followed by the encoded key
func (a *Accessor) MapKey(name string, mapKey any) (arc56.Namespace, []byte, error) {
	ns, storageKey, _, err := a.mapKey(name, mapKey)
	return ns, storageKey, err
}

func (a *Accessor) mapKey(name string, mapKey any) (arc56.Namespace, []byte, *arc56.StorageMap, error) {
	ns, m, ok := a.contract.State.Map(name)
	if !ok {
		return "", nil, nil, errors.Wrapf(ErrUnknownStorageName, "map %q", name)
	}

	encoded, err := a.codec.Encode(m.KeyType, mapKey)
	if err != nil {
		return "", nil, nil, errors.Wrapf(err, "failed to encode key for map %q", name)
	}

	prefix := m.PrefixBytes()
	storageKey := make([]byte, 0, len(prefix)+len(encoded))
	storageKey = append(storageKey, prefix...)
	storageKey = append(storageKey, encoded...)
	return ns, storageKey, m, nil
}

// Dump decodes every declared key that currently holds a value.
// Local keys are skipped when address is empty.
func (a *Accessor) Dump(ctx context.Context, address string) (map[arc56.Namespace]map[string]any, error) {
	out := make(map[arc56.Namespace]map[string]any)
	for _, ns := range arc56.Namespaces {
		if ns == arc56.Local && address == "" {
			continue
		}
		for _, key := range a.contract.State.KeysIn(ns) {
			raw, err := a.fetch(ctx, ns, key.Key, address)
			if errors.Is(err, ErrStateEntryNotFound) {
				continue
			}
			if err != nil {
				return nil, errors.Wrapf(err, "key %q", key.Name)
			}
			value, err := a.codec.Decode(key.ValueType, raw)
			if err != nil {
				a.log.Warnw("Failed to decode stored value", "key", key.Name, "namespace", ns, "error", err)
				continue
			}
			if out[ns] == nil {
				out[ns] = make(map[string]any)
			}
			out[ns][key.Name] = value
		}
	}
	return out, nil
}

func (a *Accessor) fetch(ctx context.Context, ns arc56.Namespace, key []byte, address string) ([]byte, error) {
	if ns == arc56.Local && address == "" {
		return nil, ErrAddressRequired
	}

	appID := a.app.AppID()
	metrics.StateReads.WithLabelValues(string(ns)).Inc()

	switch ns {
	case arc56.Global:
		entries, err := a.ledger.GlobalState(ctx, appID)
		if err != nil {
			return nil, err
		}
		return find(entries, key)
	case arc56.Local:
		entries, err := a.ledger.LocalState(ctx, appID, address)
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, ErrStateEntryNotFound
		}
		if err != nil {
			return nil, err
		}
		return find(entries, key)
	case arc56.Box:
		value, err := a.ledger.Box(ctx, appID, key)
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, ErrStateEntryNotFound
		}
		return value, err
	}
	return nil, errors.Errorf("unknown namespace %q", ns)
}

func find(entries []ledger.StateEntry, key []byte) ([]byte, error) {
	for _, e := range entries {
		if bytes.Equal(e.Key, key) {
			return normalize(e.Value), nil
		}
	}
	return nil, ErrStateEntryNotFound
}

// normalize presents uint values as 8-byte big-endian buffers
func normalize(v ledger.TealValue) []byte {
	if v.Type == ledger.ValueUint {
		return binary.BigEndian.AppendUint64(nil, v.Uint)
	}
	return v.Bytes
}
