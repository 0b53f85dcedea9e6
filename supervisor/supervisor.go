// Package supervisor owns the per-device lifecycle: connect, build and
// publish a tag subtree from specification, poll for liveness, tear the
// subtree down on disconnect, and hot-reload the whole fleet when
// clients.json or either specification document changes on disk.
package supervisor

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/CaptainPineapple/melsec-gateway/config"
	"github.com/CaptainPineapple/melsec-gateway/device"
	"github.com/CaptainPineapple/melsec-gateway/internal/logging"
	"github.com/CaptainPineapple/melsec-gateway/r3"
	"github.com/CaptainPineapple/melsec-gateway/slmp"
	"github.com/CaptainPineapple/melsec-gateway/specload"
	"github.com/CaptainPineapple/melsec-gateway/tagserver"
	"github.com/CaptainPineapple/melsec-gateway/tagtree"
)

const (
	clientsFileName     = "clients.json"
	plcSchemaFileName   = "plc-specification.json"
	robotSchemaFileName = "robot-specification.json"

	livenessInterval = time.Second
	reconnectBackoff = 3 * time.Second
	reloadDebounce   = 10 * time.Millisecond
)

// DeviceStatus is one device's health as reported by Status.
type DeviceStatus struct {
	Name      string
	Type      string
	Connected bool
	Attached  bool
	LastError string
}

// Supervisor runs one goroutine per configured device and restarts the
// whole fleet whenever the configuration directory changes, per §4.5.
type Supervisor struct {
	ConfigDir string
	Server    tagserver.Server

	log *logging.Entry

	mu       sync.Mutex
	statuses map[string]*DeviceStatus
	wg       sync.WaitGroup
}

// NewSupervisor builds a supervisor that reads clients.json and the two
// specification documents from configDir and publishes onto server.
func NewSupervisor(configDir string, server tagserver.Server) *Supervisor {
	return &Supervisor{
		ConfigDir: configDir,
		Server:    server,
		log:       logging.Log.WithField("component", "supervisor"),
		statuses:  make(map[string]*DeviceStatus),
	}
}

// Status returns a snapshot of every device's current health.
func (s *Supervisor) Status() []DeviceStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]DeviceStatus, 0, len(s.statuses))
	for _, st := range s.statuses {
		out = append(out, *st)
	}
	return out
}

// Run loads the configuration, starts the device fleet, and watches
// ConfigDir for changes until ctx is cancelled. It restarts the whole
// fleet on every debounced change, mirroring Clients::run_clients and
// Clients::handleFileAction from the original implementation.
func (s *Supervisor) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(s.ConfigDir); err != nil {
		return err
	}

	reload := make(chan struct{}, 1)
	go s.watchConfigDir(ctx, watcher, reload)

	for {
		genCtx, cancel := context.WithCancel(ctx)
		s.startGeneration(genCtx)

		select {
		case <-ctx.Done():
			cancel()
			s.wg.Wait()
			return ctx.Err()
		case <-reload:
			s.log.Info("supervisor: reloading configuration")
			cancel()
			s.wg.Wait()
		}
	}
}

// watchConfigDir forwards debounced clients.json/specification changes
// onto reload. Only a Write or Create on one of the three recognised
// filenames is acted on, and one arriving within reloadDebounce of the
// last accepted event is ignored, matching the original's 10ms threshold
// on Clients::handleFileAction.
func (s *Supervisor) watchConfigDir(ctx context.Context, watcher *fsnotify.Watcher, reload chan<- struct{}) {
	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			switch filepath.Base(event.Name) {
			case clientsFileName, plcSchemaFileName, robotSchemaFileName:
			default:
				continue
			}
			now := time.Now()
			if !last.IsZero() && now.Sub(last) <= reloadDebounce {
				s.log.WithField("file", event.Name).Debug("supervisor: change ignored (debounced)")
				continue
			}
			last = now
			select {
			case reload <- struct{}{}:
			default:
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.log.WithError(err).Warn("supervisor: filesystem watch error")
		}
	}
}

// startGeneration loads the current configuration and spawns one
// goroutine per device, tracked by s.wg. It returns immediately; the
// caller waits on s.wg to join a generation.
func (s *Supervisor) startGeneration(ctx context.Context) {
	s.mu.Lock()
	s.statuses = make(map[string]*DeviceStatus)
	s.mu.Unlock()

	clients, err := config.LoadClients(filepath.Join(s.ConfigDir, clientsFileName))
	if err != nil {
		s.log.WithError(err).Warn("supervisor: failed to load clients.json; fleet stays empty this generation")
		return
	}
	plcSchema, err := config.LoadSchema(filepath.Join(s.ConfigDir, plcSchemaFileName))
	if err != nil {
		s.log.WithError(err).Warn("supervisor: failed to load plc-specification.json")
	}
	robotSchema, err := config.LoadSchema(filepath.Join(s.ConfigDir, robotSchemaFileName))
	if err != nil {
		s.log.WithError(err).Warn("supervisor: failed to load robot-specification.json")
	}

	for i, entry := range clients.Clients {
		ns := uint16(2 + i)
		switch {
		case entry.IsPLC():
			s.wg.Add(1)
			go s.runPLC(ctx, entry, plcSchema, ns)
		case entry.IsRobot():
			s.wg.Add(1)
			go s.runRobot(ctx, entry, robotSchema, ns)
		default:
			s.log.WithField("type", entry.Type).WithField("name", entry.Name).
				Warn("supervisor: unknown client type, skipping")
		}
	}
}

func (s *Supervisor) setStatus(name, kind string, connected, attached bool, lastErr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[name] = &DeviceStatus{Name: name, Type: kind, Connected: connected, Attached: attached, LastError: lastErr}
}

func (s *Supervisor) clearStatus(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.statuses, name)
}

func (s *Supervisor) runPLC(ctx context.Context, entry config.ClientEntry, schema config.SchemaDocument, ns uint16) {
	defer s.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			s.log.WithField("device", entry.Name).Errorf("supervisor: PLC device panicked: %v", r)
		}
	}()

	client := slmp.NewClient(entry.Name, entry.IP, entry.Port,
		derefUint8(entry.NetworkNo), derefUint8(entry.StationNo),
		derefUint16(entry.ModuleIO), derefUint8(entry.MultidropStationNo))
	rootID := tagserver.NodeID{Namespace: ns, Identifier: 1}
	rec := device.NewRecord(entry.Name, client, rootID)
	s.setStatus(entry.Name, "PLC", false, false, "")

	for {
		if ctx.Err() != nil {
			s.clearStatus(entry.Name)
			return
		}
		if err := client.Connect(ctx); err != nil {
			s.setStatus(entry.Name, "PLC", false, false, err.Error())
		} else {
			loader := specload.NewPLCLoader(entry.Name, client, s.Server, ns)
			s.attach(ctx, entry.Name, "PLC", rec, func(root *tagtree.Node) error {
				return loader.Build(root, rootID, schema, entry)
			})
		}

		select {
		case <-ctx.Done():
			s.clearStatus(entry.Name)
			return
		case <-time.After(reconnectBackoff):
		}
	}
}

func (s *Supervisor) runRobot(ctx context.Context, entry config.ClientEntry, schema config.SchemaDocument, ns uint16) {
	defer s.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			s.log.WithField("device", entry.Name).Errorf("supervisor: robot device panicked: %v", r)
		}
	}()

	client := r3.NewClient(entry.Name, entry.IP, entry.Port)
	rootID := tagserver.NodeID{Namespace: ns, Identifier: 1}
	rec := device.NewRecord(entry.Name, client, rootID)
	s.setStatus(entry.Name, "Robot", false, false, "")

	for {
		if ctx.Err() != nil {
			s.clearStatus(entry.Name)
			return
		}
		if err := client.Connect(ctx); err != nil {
			s.setStatus(entry.Name, "Robot", false, false, err.Error())
		} else {
			loader := specload.NewRobotLoader(entry.Name, client, s.Server, ns)
			s.attach(ctx, entry.Name, "Robot", rec, func(root *tagtree.Node) error {
				return loader.Build(root, rootID, schema, entry)
			})
		}

		select {
		case <-ctx.Done():
			s.clearStatus(entry.Name)
			return
		case <-time.After(reconnectBackoff):
		}
	}
}

// attach publishes the device's root container, builds its subtree via
// build, then polls liveness every second until the connection drops or
// ctx is cancelled, tearing the subtree down either way. rec owns the
// live client and tracks whether its subtree is currently published.
func (s *Supervisor) attach(ctx context.Context, name, kind string, rec *device.Record, build func(*tagtree.Node) error) {
	rootID := rec.RootID()
	root := tagtree.NewContainer(name)
	root.NamespaceIndex, root.Identifier = rootID.Namespace, rootID.Identifier
	if err := s.Server.AddContainer(tagserver.NodeID{}, rootID, name); err != nil {
		s.log.WithError(err).WithField("device", name).Warn("supervisor: publishing root container failed")
		rec.Client.Close()
		s.setStatus(name, kind, false, false, err.Error())
		return
	}
	if err := build(root); err != nil {
		s.log.WithError(err).WithField("device", name).Warn("supervisor: building tag subtree failed")
	}
	rec.SetSubtree(root)
	s.setStatus(name, kind, true, rec.Attached(), "")

	ticker := time.NewTicker(livenessInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.teardown(name, kind, rec)
			return
		case <-ticker.C:
			if !rec.Client.Connected() {
				s.teardown(name, kind, rec)
				return
			}
		}
	}
}

func (s *Supervisor) teardown(name, kind string, rec *device.Record) {
	if err := s.Server.DeleteNode(rec.RootID()); err != nil {
		s.log.WithError(err).WithField("device", name).Warn("supervisor: DeleteNode failed")
	}
	rec.ClearSubtree()
	rec.Client.Close()
	s.setStatus(name, kind, false, rec.Attached(), "")
}

func derefUint8(p *uint8) uint8 {
	if p == nil {
		return 0
	}
	return *p
}

func derefUint16(p *uint16) uint16 {
	if p == nil {
		return 0
	}
	return *p
}
