package biometric

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStopIfDone(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name        string
		ctx         context.Context
		wantErr     error
		wantRecords int64
	}{
		{"live context", context.Background(), nil, 0},
		{"cancelled context", cancelled, context.Canceled, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var recorder statsRecorder
			err := recorder.stopIfDone(tt.ctx, time.Now())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("stopIfDone() error = %v, want %v", err, tt.wantErr)
			}
			stats := recorder.GetStats()
			if stats.TotalRequests != tt.wantRecords {
				t.Errorf("TotalRequests = %d, want %d", stats.TotalRequests, tt.wantRecords)
			}
			if stats.SuccessfulRequests != 0 {
				t.Errorf("SuccessfulRequests = %d, want 0", stats.SuccessfulRequests)
			}
		})
	}
}
