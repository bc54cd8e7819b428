package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLockTimeoutStatement(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		want    string
	}{
		{"whole seconds", 5 * time.Second, "SET LOCAL lock_timeout = '5000ms'"},
		{"whole milliseconds", 250 * time.Millisecond, "SET LOCAL lock_timeout = '250ms'"},
		{"below one millisecond", 500 * time.Microsecond, "SET LOCAL lock_timeout = '1ms'"},
		{"fraction rounds up", 1500 * time.Microsecond, "SET LOCAL lock_timeout = '2ms'"},
		{"one nanosecond", time.Nanosecond, "SET LOCAL lock_timeout = '1ms'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lockTimeoutStatement(tt.timeout))
		})
	}
}
