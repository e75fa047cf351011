package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/jwalitptl/hms-api/internal/model"
)

type MemoryStoreSuite struct {
	suite.Suite
	ctx   context.Context
	now   time.Time
	store *MemoryStore
	user  *model.User
}

func (s *MemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2024, 12, 9, 8, 0, 0, 0, time.UTC)
	s.store = NewMemoryStore(time.Minute)
	s.store.now = func() time.Time { return s.now }
	s.user = &model.User{Base: model.Base{ID: 5}, Username: "rec_fatima", Role: model.RoleReceptionist}
}

func (s *MemoryStoreSuite) session(token string) *model.Session {
	return &model.Session{ID: "sid-" + token, Token: token, User: s.user, IssuedAt: s.now, ExpiresAt: s.now.Add(time.Hour)}
}

func (s *MemoryStoreSuite) TestSaveWritesBothKeys() {
	require.NoError(s.T(), s.store.Save(s.ctx, s.session("t1")))

	got, err := s.store.Get(s.ctx, "t1")
	s.Require().NoError(err)
	s.Equal("rec_fatima", got.User.Username)

	token, err := s.store.TokenForUser(s.ctx, 5)
	s.Require().NoError(err)
	s.Equal("t1", token)

	_, found := s.store.cache.Get("hms_token:t1")
	s.True(found)
	_, found = s.store.cache.Get("hms_user:5")
	s.True(found)
}

func (s *MemoryStoreSuite) TestDeleteClearsBothKeys() {
	s.Require().NoError(s.store.Save(s.ctx, s.session("t1")))
	s.Require().NoError(s.store.Delete(s.ctx, "t1"))

	_, err := s.store.Get(s.ctx, "t1")
	s.ErrorIs(err, ErrNotFound)
	_, err = s.store.TokenForUser(s.ctx, 5)
	s.ErrorIs(err, ErrNotFound)

	s.NoError(s.store.Delete(s.ctx, "t1"), "delete is idempotent")
}

func (s *MemoryStoreSuite) TestNewLoginReplacesPrevious() {
	s.Require().NoError(s.store.Save(s.ctx, s.session("t1")))
	s.Require().NoError(s.store.Save(s.ctx, s.session("t2")))

	_, err := s.store.Get(s.ctx, "t1")
	s.ErrorIs(err, ErrNotFound)

	// Logging out the stale token must not drop the live one.
	s.Require().NoError(s.store.Delete(s.ctx, "t1"))
	token, err := s.store.TokenForUser(s.ctx, 5)
	s.Require().NoError(err)
	s.Equal("t2", token)
}

func (s *MemoryStoreSuite) TestReturnedSessionIsACopy() {
	s.Require().NoError(s.store.Save(s.ctx, s.session("t1")))
	got, err := s.store.Get(s.ctx, "t1")
	s.Require().NoError(err)
	got.User.Username = "changed"

	again, err := s.store.Get(s.ctx, "t1")
	s.Require().NoError(err)
	s.Equal("rec_fatima", again.User.Username)
}

func (s *MemoryStoreSuite) TestExpiredSessionIsNotStored() {
	expired := s.session("t1")
	expired.ExpiresAt = s.now.Add(-time.Second)
	s.Require().NoError(s.store.Save(s.ctx, expired))

	_, err := s.store.Get(s.ctx, "t1")
	s.ErrorIs(err, ErrNotFound)
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "hms_token:abc", TokenKey("abc"))
	assert.Equal(t, "hms_user:42", UserKey(42))
}
