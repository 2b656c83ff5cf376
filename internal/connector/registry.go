package connector

import (
	"fmt"
	"sort"
	"sync"
)

// Factory is a function that creates a new Connector instance.
type Factory func() Connector

// Registry manages connector factories and the live connection held for
// each named service. A service has at most one open connection; Switch
// replaces it with one bound to a different database.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	active    map[string]Connector        // keyed by service name
	configs   map[string]ConnectionConfig // base config per service
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		active:    make(map[string]Connector),
		configs:   make(map[string]ConnectionConfig),
	}
}

// RegisterDriver registers a connector factory for a driver type.
func (r *Registry) RegisterDriver(driver string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[driver] = factory
}

// Connect creates a new connector for the given driver and connects it.
// The config is remembered as the service's base config for Switch.
func (r *Registry) Connect(serviceName string, cfg ConnectionConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, err := r.open(serviceName, cfg)
	if err != nil {
		return err
	}

	if existing, ok := r.active[serviceName]; ok {
		existing.Disconnect()
	}

	r.active[serviceName] = conn
	r.configs[serviceName] = cfg
	return nil
}

// Switch repoints serviceName at database. The current connection is
// closed and dropped before the new one is opened, so no query can reach
// the previous database through this service after Switch is called. The
// returned connector is the one now registered for the service.
func (r *Registry) Switch(serviceName, database string) (Connector, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	base, ok := r.configs[serviceName]
	if !ok {
		return nil, fmt.Errorf("service %q not found (available: %v)", serviceName, r.activeServices())
	}

	if existing, ok := r.active[serviceName]; ok {
		existing.Disconnect()
		delete(r.active, serviceName)
	}

	cfg := base
	cfg.Database = database
	conn, err := r.open(serviceName, cfg)
	if err != nil {
		return nil, err
	}
	r.active[serviceName] = conn
	return conn, nil
}

// Get returns the connector for a service.
func (r *Registry) Get(serviceName string) (Connector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.active[serviceName]
	if !ok {
		return nil, fmt.Errorf("service %q not found (available: %v)", serviceName, r.activeServices())
	}
	return conn, nil
}

// Disconnect removes and disconnects a service.
func (r *Registry) Disconnect(serviceName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.active[serviceName]
	if !ok {
		return fmt.Errorf("service %q not found", serviceName)
	}

	err := conn.Disconnect()
	delete(r.active, serviceName)
	delete(r.configs, serviceName)
	return err
}

// CloseAll disconnects all services.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, conn := range r.active {
		conn.Disconnect()
		delete(r.active, name)
	}
	for name := range r.configs {
		delete(r.configs, name)
	}
}

// ListServices returns active service names.
func (r *Registry) ListServices() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeServices()
}

func (r *Registry) open(serviceName string, cfg ConnectionConfig) (Connector, error) {
	factory, ok := r.factories[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported driver: %s (available: %v)", cfg.Driver, r.availableDrivers())
	}

	cfg.DSN = SanitizeDSN(cfg.Driver, cfg.DSN)

	conn := factory()
	if err := conn.Connect(cfg); err != nil {
		if cfg.Database != "" {
			return nil, fmt.Errorf("failed to connect service %q to database %q: %w", serviceName, cfg.Database, err)
		}
		return nil, fmt.Errorf("failed to connect service %q: %w", serviceName, err)
	}
	return conn, nil
}

func (r *Registry) availableDrivers() []string {
	drivers := make([]string, 0, len(r.factories))
	for d := range r.factories {
		drivers = append(drivers, d)
	}
	sort.Strings(drivers)
	return drivers
}

func (r *Registry) activeServices() []string {
	names := make([]string, 0, len(r.active))
	for n := range r.active {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
