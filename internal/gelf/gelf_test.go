package gelf

import (
	"encoding/json"
	"net"
	"testing"
	"time"
)

func TestWriterSendsMessage(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer pc.Close()

	w, err := New(pc.LocalAddr().String(), "oxistory")
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	line := "2025/03/10 12:00:00 Warning: notification for submission 4 failed\n"
	if n, err := w.Write([]byte(line)); err != nil || n != len(line) {
		t.Fatalf("Write = %d, %v", n, err)
	}

	buf := make([]byte, 4096)
	pc.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := pc.ReadFrom(buf)
	if err != nil {
		t.Fatal(err)
	}
	var msg map[string]any
	if err := json.Unmarshal(buf[:n], &msg); err != nil {
		t.Fatal(err)
	}
	if msg["short_message"] != "Warning: notification for submission 4 failed" {
		t.Errorf("short_message = %v", msg["short_message"])
	}
	if msg["_service"] != "oxistory" || msg["level"] != float64(4) {
		t.Errorf("msg = %v", msg)
	}
}

func TestLevel(t *testing.T) {
	cases := map[string]int{
		"PANIC: boom":         3,
		"Fatal error":         3,
		"Warning: slow":       4,
		"POST /api/v1/intake": 6,
	}
	for in, want := range cases {
		if got := Level(in); got != want {
			t.Errorf("Level(%q) = %d, want %d", in, got, want)
		}
	}
}
