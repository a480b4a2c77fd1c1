package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"testing"
	"time"
)

func TestServerServesHealthAndStopsOnCancel(t *testing.T) {
	t.Setenv("YOLNEXT_FREIGHT_DB_PATH", filepath.Join(t.TempDir(), "freight.db"))
	t.Setenv("YOLNEXT_KAFKA_BROKER", "")

	server, err := NewWithAddr("127.0.0.1:0")
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.Serve(ctx)
	}()

	url := fmt.Sprintf("http://%s/healthz", server.Addr())
	var resp *http.Response
	for attempt := 0; attempt < 50; attempt++ {
		resp, err = http.Get(url)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		cancel()
		t.Fatalf("health check never succeeded: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d, body = %s", resp.StatusCode, body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancellation")
	}
}

func TestLoadServerEnvDefaultsDBPath(t *testing.T) {
	t.Setenv("YOLNEXT_FREIGHT_DB_PATH", "")
	env := loadServerEnv()
	if env.DBPath != filepath.Join("data", "freight.db") {
		t.Fatalf("db path = %q, want default", env.DBPath)
	}
	if env.KafkaTopic != "freight.notifications" {
		t.Fatalf("kafka topic = %q, want default", env.KafkaTopic)
	}
}
