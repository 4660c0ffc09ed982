/*
Package register tracks cash-register (drawer) sessions.

PURPOSE:
  A session spans from drawer open to drawer close and accumulates the
  committed sales rung up during it. Closing yields an immutable Summary
  for the end-of-day count. The session never touches stock or the sale
  log; it only observes Sales the Processor already committed.

SEE ALSO:
  - pos/processor.go: produces the Sales recorded here
*/
package register

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/cantina/pos-engine/pos"
)

// ErrSessionClosed is returned when recording on, or re-closing, a closed session.
var ErrSessionClosed = errors.New("register session closed")

// Session is one open drawer. Safe for concurrent use: several terminals
// may share a drawer.
type Session struct {
	id       string
	operator string
	openedAt time.Time
	log      logrus.FieldLogger

	mu        sync.Mutex
	closed    bool
	saleCount int
	gross     decimal.Decimal
}

// Summary is the immutable result of closing a session.
type Summary struct {
	SessionID string
	Operator  string
	OpenedAt  time.Time
	ClosedAt  time.Time
	SaleCount int
	Gross     decimal.Decimal
}

// Open starts a session for the given operator. A nil logger falls back to
// the standard logrus logger.
func Open(operator string, log logrus.FieldLogger) *Session {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Session{
		id:       uuid.NewString(),
		operator: operator,
		openedAt: time.Now().UTC(),
		log:      log,
		gross:    decimal.Zero,
	}
	s.log.WithFields(logrus.Fields{
		"session_id": s.id,
		"operator":   operator,
	}).Info("register opened")
	return s
}

func (s *Session) ID() string          { return s.id }
func (s *Session) Operator() string    { return s.operator }
func (s *Session) OpenedAt() time.Time { return s.openedAt }

// RecordSale accumulates one committed sale into the drawer totals.
func (s *Session) RecordSale(sale pos.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	s.saleCount++
	s.gross = s.gross.Add(sale.Total)
	return nil
}

// Close ends the session and returns its summary. A second Close fails
// with ErrSessionClosed.
func (s *Session) Close() (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Summary{}, ErrSessionClosed
	}
	s.closed = true

	sum := Summary{
		SessionID: s.id,
		Operator:  s.operator,
		OpenedAt:  s.openedAt,
		ClosedAt:  time.Now().UTC(),
		SaleCount: s.saleCount,
		Gross:     s.gross,
	}
	s.log.WithFields(logrus.Fields{
		"session_id": s.id,
		"operator":   s.operator,
		"sales":      sum.SaleCount,
		"gross":      sum.Gross.StringFixed(2),
	}).Info("register closed")
	return sum, nil
}
