// internal/presence/ble/scanner.go
package ble

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/tamzrod/deskd/internal/presence"
)

// Scanner listens for BLE advertisements through the host adapter. Each
// Scan call opens one discovery window and reports every device heard,
// deduplicated by address with the strongest RSSI kept.
type Scanner struct {
	adapter *bluetooth.Adapter
	window  time.Duration
}

// NewScanner enables the default adapter. One scanner per process; the
// underlying adapter is a singleton.
func NewScanner(window time.Duration) (*Scanner, error) {
	if window <= 0 {
		return nil, errors.New("ble: scan window must be > 0")
	}

	adapter := bluetooth.DefaultAdapter
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("ble: enable adapter: %w", err)
	}

	return &Scanner{adapter: adapter, window: window}, nil
}

// Scan blocks for the scan window and returns the devices seen.
func (s *Scanner) Scan(ctx context.Context) ([]presence.Advertisement, error) {
	var (
		mu   sync.Mutex
		seen = make(map[string]int16)
	)

	// adapter.Scan blocks until StopScan; the callback runs on the
	// adapter's event goroutine.
	done := make(chan error, 1)
	go func() {
		done <- s.adapter.Scan(func(_ *bluetooth.Adapter, dev bluetooth.ScanResult) {
			mu.Lock()
			addr := dev.Address.String()
			if prev, ok := seen[addr]; !ok || dev.RSSI > prev {
				seen[addr] = dev.RSSI
			}
			mu.Unlock()
		})
	}()

	timer := time.NewTimer(s.window)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		s.adapter.StopScan()
		<-done
		return nil, ctx.Err()

	case err := <-done:
		// Discovery ended before the window closed.
		if err != nil {
			return nil, fmt.Errorf("ble: scan: %w", err)
		}

	case <-timer.C:
		// StopScan failing means discovery already ended; Scan's own
		// return carries the real verdict either way.
		s.adapter.StopScan()
		if err := <-done; err != nil {
			return nil, fmt.Errorf("ble: scan: %w", err)
		}
	}

	mu.Lock()
	defer mu.Unlock()

	ads := make([]presence.Advertisement, 0, len(seen))
	for addr, rssi := range seen {
		ads = append(ads, presence.Advertisement{Addr: addr, RSSI: rssi})
	}
	return ads, nil
}
