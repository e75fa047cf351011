// Package session keeps server side login state. Each login is stored under
// two keys: the token maps to the session record and the user id maps to
// the token, so a user has at most one live session.
package session

import (
	"context"
	"errors"
	"strconv"

	"github.com/jwalitptl/hms-api/internal/model"
)

const (
	TokenKeyPrefix = "hms_token:"
	UserKeyPrefix  = "hms_user:"
)

var ErrNotFound = errors.New("session not found")

type Store interface {
	// Save stores s and drops any earlier session of the same user.
	Save(ctx context.Context, s *model.Session) error
	Get(ctx context.Context, token string) (*model.Session, error)
	// Delete removes both keys. Deleting a missing session is not an error.
	Delete(ctx context.Context, token string) error
	TokenForUser(ctx context.Context, userID int64) (string, error)
	Ping(ctx context.Context) error
}

func TokenKey(token string) string {
	return TokenKeyPrefix + token
}

func UserKey(userID int64) string {
	return UserKeyPrefix + strconv.FormatInt(userID, 10)
}
