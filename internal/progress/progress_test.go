package progress

import (
	"testing"
	"time"
)

func TestPercent_Generate(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		want    float64
	}{
		{0, 0},
		{499 * time.Millisecond, 0},
		{500 * time.Millisecond, 5},
		{2 * time.Second, 20},
		{9 * time.Second, 90},
		{5 * time.Minute, 90},
		{-time.Second, 0},
	}

	for _, tt := range tests {
		if got := Percent(tt.elapsed, false); got != tt.want {
			t.Errorf("Percent(%v, false) = %v, want %v", tt.elapsed, got, tt.want)
		}
	}
}

func TestPercent_UpscaleRampsSlower(t *testing.T) {
	if got := Percent(2*time.Second, true); got != 8 {
		t.Errorf("Percent(2s, true) = %v, want 8", got)
	}
	if got := Percent(time.Hour, true); got != 90 {
		t.Errorf("Percent(1h, true) = %v, want the 90 cap", got)
	}
}

func TestMessage_Cycles(t *testing.T) {
	first := Message(0, false)
	if first != generateMessages[0] {
		t.Errorf("Message(0) = %q, want the first entry", first)
	}

	second := Message(3*time.Second, false)
	if second != generateMessages[1] {
		t.Errorf("Message(3s) = %q, want the second entry", second)
	}

	wrapped := Message(time.Duration(len(generateMessages))*3*time.Second, false)
	if wrapped != generateMessages[0] {
		t.Errorf("Message() should wrap around, got %q", wrapped)
	}
}

func TestMessage_UpscaleSet(t *testing.T) {
	got := Message(0, true)
	if got != upscaleMessages[0] {
		t.Errorf("Message(0, true) = %q, want the upscale set", got)
	}
	if got == generateMessages[0] {
		t.Error("upscale messages should differ from generate messages")
	}
}
