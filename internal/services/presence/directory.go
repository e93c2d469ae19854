package presence

import (
	"log/slog"
	"sync"

	"github.com/mcoot/battleship-go2/internal/model"
)

type entry struct {
	id   model.Identity
	name string
}

// Directory maps live connections to their normalized display names.
// Lookups by name scan in registration order, so the earliest connection
// carrying a name wins.
type Directory struct {
	mu      sync.RWMutex
	entries []entry
	logger  *slog.Logger
}

// New creates an empty Directory
func New(logger *slog.Logger) *Directory {
	return &Directory{
		logger: logger.With(slog.String("component", "presence")),
	}
}

// Register records the name for an identity, overwriting any previous name.
// Re-registering keeps the identity's original position in scan order.
func (d *Directory) Register(id model.Identity, rawName string) (string, error) {
	name := model.NormalizeName(rawName)
	if name == "" {
		return "", model.ErrInvalidName
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.entries {
		if d.entries[i].id == id {
			d.entries[i].name = name
			return name, nil
		}
	}
	d.entries = append(d.entries, entry{id: id, name: name})

	d.logger.Debug("user registered",
		slog.String("identity", string(id)),
		slog.String("name", name),
		slog.Int("online", len(d.entries)))
	return name, nil
}

// Unregister removes an identity, returning the name it carried
func (d *Directory) Unregister(id model.Identity) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, e := range d.entries {
		if e.id == id {
			d.entries = append(d.entries[:i], d.entries[i+1:]...)
			return e.name, true
		}
	}
	return "", false
}

// FindByName returns the first identity registered under the name
func (d *Directory) FindByName(rawName string) (model.Identity, bool) {
	name := model.NormalizeName(rawName)

	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, e := range d.entries {
		if e.name == name {
			return e.id, true
		}
	}
	return "", false
}

// NameOf returns the name registered for an identity
func (d *Directory) NameOf(id model.Identity) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, e := range d.entries {
		if e.id == id {
			return e.name, true
		}
	}
	return "", false
}

// Names lists every registered name in scan order. Duplicates are kept.
func (d *Directory) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, len(d.entries))
	for i, e := range d.entries {
		names[i] = e.name
	}
	return names
}

// Count returns the number of registered identities
func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}
