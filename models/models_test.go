package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFile_LinkExpired(t *testing.T) {
	expiry := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		expires *time.Time
		now     time.Time
		want    bool
	}{
		{"no expiry", nil, expiry.Add(100 * time.Hour), false},
		{"before expiry", &expiry, expiry.Add(-time.Second), false},
		{"at expiry", &expiry, expiry, false},
		{"after expiry", &expiry, expiry.Add(time.Nanosecond), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := File{LinkExpiresAt: tt.expires}
			assert.Equal(t, tt.want, f.LinkExpired(tt.now))
		})
	}
}

func TestShare_Active(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, (&Share{}).Active(now))
	assert.True(t, (&Share{ExpiresAt: &future}).Active(now))
	assert.False(t, (&Share{ExpiresAt: &past}).Active(now))
	assert.False(t, (&Share{ExpiresAt: &now}).Active(now))
}
