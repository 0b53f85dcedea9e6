package supervisor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/CaptainPineapple/melsec-gateway/tagserver"
)

const emptySchema = `{"Nodes": []}`

func writeClients(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, clientsFileName), []byte(body), 0o644); err != nil {
		t.Fatalf("write clients.json: %v", err)
	}
}

func setupConfigDir(t *testing.T, clientsBody string) string {
	t.Helper()
	dir := t.TempDir()
	writeClients(t, dir, clientsBody)
	if err := os.WriteFile(filepath.Join(dir, plcSchemaFileName), []byte(emptySchema), 0o644); err != nil {
		t.Fatalf("write plc schema: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, robotSchemaFileName), []byte(emptySchema), 0o644); err != nil {
		t.Fatalf("write robot schema: %v", err)
	}
	return dir
}

func deviceA() string {
	return `{"Clients": [
		{"Type": "PLC", "Name": "DeviceA", "Ip": "127.0.0.1", "Port": 1}
	]}`
}

func deviceB() string {
	return `{"Clients": [
		{"Type": "Robot", "Name": "DeviceB", "Ip": "127.0.0.1", "Port": 2}
	]}`
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not satisfied within %s", timeout)
}

func hasDevice(sup *Supervisor, name string) bool {
	for _, st := range sup.Status() {
		if st.Name == name {
			return true
		}
	}
	return false
}

// TestSupervisor_HotReloadSwapsFleetWithinOneSecond exercises scenario 6:
// with device A's loop running, clients.json is rewritten to drop A and
// add B; within a second the supervisor's reported fleet must reflect
// only B. Neither device ever reaches a live connection (nothing is
// listening on the configured ports), so this exercises the
// startGeneration/debounce/cancel machinery, not an actual SLMP/R3
// session.
func TestSupervisor_HotReloadSwapsFleetWithinOneSecond(t *testing.T) {
	dir := setupConfigDir(t, deviceA())
	sup := NewSupervisor(dir, tagserver.NewInMemory())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- sup.Run(ctx) }()

	waitFor(t, time.Second, func() bool { return hasDevice(sup, "DeviceA") })

	writeClients(t, dir, deviceB())

	waitFor(t, time.Second, func() bool { return hasDevice(sup, "DeviceB") })
	if hasDevice(sup, "DeviceA") {
		t.Fatalf("DeviceA should have been detached after the reload")
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after context cancellation")
	}
}

// TestSupervisor_StatusEmptyBeforeRun confirms Status never panics and
// reports nothing for a supervisor that hasn't started a generation yet.
func TestSupervisor_StatusEmptyBeforeRun(t *testing.T) {
	sup := NewSupervisor(t.TempDir(), tagserver.NewInMemory())
	if len(sup.Status()) != 0 {
		t.Fatalf("expected no devices before Run")
	}
}
