package shared

import (
	"hash/fnv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// GuestOwner is the owner key used for anonymous clients without a guest id
const GuestOwner OwnerKey = "guest"

const (
	userOwnerPrefix  = "user:"
	guestOwnerPrefix = "guest:"
	maxGuestIDLength = 64
)

// OwnerKey identifies whose cart or local favorites list is addressed.
// It is "user:<uuid>" for signed-in users, "guest:<id>" for identified
// anonymous clients and "guest" otherwise.
type OwnerKey string

// UserOwner returns the owner key for an authenticated user
func UserOwner(userID uuid.UUID) OwnerKey {
	return OwnerKey(userOwnerPrefix + userID.String())
}

// GuestOwnerFor returns the owner key for an anonymous client.
// Unusable guest ids fall back to the shared "guest" key.
func GuestOwnerFor(guestID string) OwnerKey {
	guestID = strings.TrimSpace(guestID)
	if guestID == "" || len(guestID) > maxGuestIDLength || strings.ContainsAny(guestID, ": \t\n") {
		return GuestOwner
	}
	return OwnerKey(guestOwnerPrefix + guestID)
}

// IsGuest reports whether the key belongs to an anonymous client
func (k OwnerKey) IsGuest() bool {
	return k == GuestOwner || strings.HasPrefix(string(k), guestOwnerPrefix)
}

// UserID extracts the user id from a user owner key
func (k OwnerKey) UserID() (uuid.UUID, bool) {
	s := string(k)
	if !strings.HasPrefix(s, userOwnerPrefix) {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(strings.TrimPrefix(s, userOwnerPrefix))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (k OwnerKey) String() string { return string(k) }

const ownerLockStripes = 64

// OwnerLocks serialises read-modify-write cycles per owner within one process.
// Keys share a fixed set of stripes, so a holder must not lock a second owner.
// The zero value is ready to use.
type OwnerLocks struct {
	stripes [ownerLockStripes]sync.Mutex
}

// Lock acquires the stripe for owner and returns its unlock function
func (l *OwnerLocks) Lock(owner OwnerKey) (unlock func()) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(owner))
	mu := &l.stripes[h.Sum32()%ownerLockStripes]
	mu.Lock()
	return mu.Unlock
}
