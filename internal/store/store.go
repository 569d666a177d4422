package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"webstudio/internal/models"
)

// File names of the persisted collections inside the data directory.
const (
	servicesFile = "services.json"
	partnersFile = "partner-services.json"
	ordersFile   = "orders.json"
	contactsFile = "contacts.json"
)

// collection is a whole-file JSON array of records of one kind. The mutex
// serializes every read-modify-write cycle, so concurrent writers cannot
// discard each other's changes.
type collection[T any] struct {
	path string
	mu   sync.Mutex
}

func (c *collection[T]) load() ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.read()
}

func (c *collection[T]) save(records []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.write(records)
}

// update runs fn on the loaded records under the collection lock and
// persists whatever it returns. If fn errors, nothing is written.
func (c *collection[T]) update(fn func([]T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.read()
	if err != nil {
		return err
	}

	updated, err := fn(records)
	if err != nil {
		return err
	}

	return c.write(updated)
}

// read returns the full collection. A missing file initializes the
// collection to empty instead of failing.
func (c *collection[T]) read() ([]T, error) {
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		if err := c.write([]T{}); err != nil {
			return nil, err
		}
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.path, err)
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &ParseError{File: filepath.Base(c.path), Err: err}
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// write replaces the collection atomically: the payload goes to a temp file
// in the same directory and is renamed over the target, so a failed save
// leaves the prior collection intact.
func (c *collection[T]) write(records []T) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.path, err)
	}

	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", c.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), c.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", c.path, err)
	}
	return nil
}

// Store owns the on-disk representation of the four collections. Every
// mutation goes through its load/save pair; no other component touches the
// backing files.
type Store struct {
	dir      string
	services collection[models.Service]
	partners collection[models.PartnerService]
	orders   collection[models.Order]
	contacts collection[models.Contact]
}

// Open prepares the data directory and returns a store handle. The files
// themselves are created lazily on first access.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &Store{
		dir:      dir,
		services: collection[models.Service]{path: filepath.Join(dir, servicesFile)},
		partners: collection[models.PartnerService]{path: filepath.Join(dir, partnersFile)},
		orders:   collection[models.Order]{path: filepath.Join(dir, ordersFile)},
		contacts: collection[models.Contact]{path: filepath.Join(dir, contactsFile)},
	}, nil
}

// Dir returns the data directory the store was opened with.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) LoadServices() ([]models.Service, error) {
	return s.services.load()
}

func (s *Store) SaveServices(records []models.Service) error {
	return s.services.save(records)
}

func (s *Store) UpdateServices(fn func([]models.Service) ([]models.Service, error)) error {
	return s.services.update(fn)
}

func (s *Store) LoadPartnerServices() ([]models.PartnerService, error) {
	return s.partners.load()
}

func (s *Store) SavePartnerServices(records []models.PartnerService) error {
	return s.partners.save(records)
}

func (s *Store) UpdatePartnerServices(fn func([]models.PartnerService) ([]models.PartnerService, error)) error {
	return s.partners.update(fn)
}

func (s *Store) LoadOrders() ([]models.Order, error) {
	return s.orders.load()
}

func (s *Store) SaveOrders(records []models.Order) error {
	return s.orders.save(records)
}

func (s *Store) UpdateOrders(fn func([]models.Order) ([]models.Order, error)) error {
	return s.orders.update(fn)
}

func (s *Store) LoadContacts() ([]models.Contact, error) {
	return s.contacts.load()
}

// AppendContact adds one inquiry to the append-only contact log.
func (s *Store) AppendContact(contact models.Contact) error {
	return s.contacts.update(func(records []models.Contact) ([]models.Contact, error) {
		return append(records, contact), nil
	})
}
