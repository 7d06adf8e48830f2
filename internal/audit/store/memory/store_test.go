package memory

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"spendtrail/internal/audit"
	"spendtrail/internal/event"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = New()
	s.ctx = context.Background()
}

func (s *MemoryStoreSuite) newRecord(entityID, userID string, action event.Action, ts time.Time) audit.Record {
	return audit.Record{
		EventType:       "ExpenseChanged",
		EntityID:        entityID,
		UserID:          userID,
		Action:          action,
		Timestamp:       ts,
		PayloadSnapshot: json.RawMessage(`{"amount":25.50}`),
	}
}

func (s *MemoryStoreSuite) TestAppendIsIdempotent() {
	rec := s.newRecord("100", "42", event.ActionCreate, time.Now().UTC())

	inserted, err := s.store.Append(s.ctx, rec)
	s.Require().NoError(err)
	s.True(inserted)

	inserted, err = s.store.Append(s.ctx, rec)
	s.Require().NoError(err)
	s.False(inserted, "re-delivery of the same logical event is a no-op")

	got, err := s.store.ListByUser(s.ctx, "42")
	s.Require().NoError(err)
	s.Len(got, 1)
}

func (s *MemoryStoreSuite) TestWindowIsClosedBothEnds() {
	t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)
	t3 := t1.Add(2 * time.Minute)

	for _, ts := range []time.Time{t1, t2, t3} {
		_, err := s.store.Append(s.ctx, s.newRecord("100", "42", event.ActionUpdate, ts))
		s.Require().NoError(err)
	}

	got, err := s.store.ListByWindow(s.ctx, t1, t2)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.True(got[0].Timestamp.Equal(t1))
	s.True(got[1].Timestamp.Equal(t2), "t3 falls outside the closed window")
}

func (s *MemoryStoreSuite) TestRecentBoundaryInclusive() {
	t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)
	t3 := t1.Add(2 * time.Minute)

	for _, ts := range []time.Time{t1, t2, t3} {
		_, err := s.store.Append(s.ctx, s.newRecord("100", "42", event.ActionUpdate, ts))
		s.Require().NoError(err)
	}

	got, err := s.store.ListRecent(s.ctx, t2)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.True(got[0].Timestamp.Equal(t2))
}

func (s *MemoryStoreSuite) TestQueriesReturnAscendingTimestamps() {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	// Insert out of order on purpose.
	for _, offset := range []time.Duration{2 * time.Minute, 0, time.Minute} {
		rec := s.newRecord("200", "42", event.ActionUpdate, base.Add(offset))
		_, err := s.store.Append(s.ctx, rec)
		s.Require().NoError(err)
	}

	got, err := s.store.ListByEntity(s.ctx, "200")
	s.Require().NoError(err)
	s.Require().Len(got, 3)
	for i := 1; i < len(got); i++ {
		s.False(got[i].Timestamp.Before(got[i-1].Timestamp))
	}
}

func (s *MemoryStoreSuite) TestActionFilters() {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	_, err := s.store.Append(s.ctx, s.newRecord("100", "42", event.ActionCreate, base))
	s.Require().NoError(err)
	_, err = s.store.Append(s.ctx, s.newRecord("100", "42", event.ActionDelete, base.Add(time.Minute)))
	s.Require().NoError(err)
	_, err = s.store.Append(s.ctx, s.newRecord("300", "7", event.ActionCreate, base.Add(2*time.Minute)))
	s.Require().NoError(err)

	creates, err := s.store.ListByAction(s.ctx, event.ActionCreate)
	s.Require().NoError(err)
	s.Len(creates, 2)

	got, err := s.store.ListByEntityAndAction(s.ctx, "100", event.ActionCreate)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("100", got[0].EntityID)
	s.Equal(event.ActionCreate, got[0].Action)
}
