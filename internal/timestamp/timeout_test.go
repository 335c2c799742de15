package timestamp

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTimeout(t *testing.T) {
	t.Run("default is one minute", func(t *testing.T) {
		if got := DefaultTimeout.Duration(); got != time.Minute {
			t.Errorf("DefaultTimeout.Duration() = %v, want 1m", got)
		}
	})

	t.Run("converts milliseconds to a duration", func(t *testing.T) {
		if got := Timeout(250).Duration(); got != 250*time.Millisecond {
			t.Errorf("Timeout(250).Duration() = %v, want 250ms", got)
		}
	})

	t.Run("travels through JSON as a plain number", func(t *testing.T) {
		data, err := json.Marshal(Timeout(1500))
		if err != nil {
			t.Fatalf("Marshal returned error: %v", err)
		}
		if string(data) != "1500" {
			t.Errorf("Marshal = %s, want 1500", data)
		}
		var back Timeout
		if err := json.Unmarshal(data, &back); err != nil || back != Timeout(1500) {
			t.Errorf("Unmarshal = (%v, %v), want 1500", back, err)
		}
	})
}
