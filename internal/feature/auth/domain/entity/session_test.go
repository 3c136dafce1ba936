package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSession_Validity(t *testing.T) {
	t.Parallel()

	now := time.Now()
	revokedAt := now.Add(-time.Minute)

	tests := []struct {
		name        string
		session     Session
		wantExpired bool
		wantRevoked bool
		wantValid   bool
	}{
		{"active", Session{ExpiresAt: now.Add(time.Hour)}, false, false, true},
		{"expired", Session{ExpiresAt: now.Add(-time.Hour)}, true, false, false},
		{"revoked", Session{ExpiresAt: now.Add(time.Hour), RevokedAt: &revokedAt}, false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.wantExpired, tt.session.IsExpired())
			assert.Equal(t, tt.wantRevoked, tt.session.IsRevoked())
			assert.Equal(t, tt.wantValid, tt.session.IsValid())
		})
	}
}

func TestSession_IsExpiredAt_Boundary(t *testing.T) {
	t.Parallel()

	exp := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := Session{ExpiresAt: exp}

	assert.False(t, s.IsExpiredAt(exp.Add(-time.Nanosecond)))
	assert.True(t, s.IsExpiredAt(exp))
}
