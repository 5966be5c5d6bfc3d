package scan

import (
	"fmt"
	"io"

	"github.com/dutchcoders/go-clamd"

	apperrors "safebox/internal/errors"
)

// Scanner inspects upload content before it is stored.
type Scanner interface {
	Scan(r io.Reader) error
}

// ClamAV streams content to a clamd daemon.
type ClamAV struct {
	client *clamd.Clamd
}

// NewClamAV connects lazily to address, e.g. "tcp://clamav:3310".
func NewClamAV(address string) *ClamAV {
	return &ClamAV{client: clamd.NewClamd(address)}
}

// Ping checks the daemon is reachable.
func (s *ClamAV) Ping() error {
	if err := s.client.Ping(); err != nil {
		return fmt.Errorf("clamd ping: %w", err)
	}
	return nil
}

// Scan returns an error wrapping ErrInfectedFile when clamd reports a match.
func (s *ClamAV) Scan(r io.Reader) error {
	abort := make(chan bool)
	defer close(abort)

	results, err := s.client.ScanStream(r, abort)
	if err != nil {
		return fmt.Errorf("clamd scan: %w", err)
	}

	var scanErr error
	for res := range results {
		switch res.Status {
		case clamd.RES_FOUND:
			if scanErr == nil {
				scanErr = fmt.Errorf("%w: %s", apperrors.ErrInfectedFile, res.Description)
			}
		case clamd.RES_ERROR, clamd.RES_PARSE_ERROR:
			if scanErr == nil {
				scanErr = fmt.Errorf("clamd scan: %s", res.Description)
			}
		}
	}
	return scanErr
}

// Nop accepts everything. Used when no daemon is configured.
type Nop struct{}

// Scan implements Scanner.
func (Nop) Scan(io.Reader) error { return nil }
