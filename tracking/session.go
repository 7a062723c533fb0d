package tracking

import (
	"time"
)

// session is the per-vessel, per-zone tracked state. A session is created
// the first time a vessel is observed inside a zone, refreshed on every
// later report for that vessel, and dropped once the persistence window has
// elapsed since the vessel was last inside.
type session struct {
	lastReport   Report
	lastInsideAt time.Time
}

// sessionStore holds sessions keyed by zone ID then MMSI. It is owned and
// mutated exclusively by the Tracker; each zone's sessions are independent.
type sessionStore struct {
	byZone map[string]map[int]*session
}

func newSessionStore() *sessionStore {
	return &sessionStore{byZone: map[string]map[int]*session{}}
}

func (s *sessionStore) get(zoneID string, mmsi int) *session {
	return s.byZone[zoneID][mmsi]
}

func (s *sessionStore) put(zoneID string, mmsi int, sess *session) {
	zone := s.byZone[zoneID]
	if zone == nil {
		zone = map[int]*session{}
		s.byZone[zoneID] = zone
	}
	zone[mmsi] = sess
}

// prune removes sessions whose last confirmed inside-time is older than the
// persistence window.
func (s *sessionStore) prune(now time.Time, persist time.Duration) {
	for zoneID, sessions := range s.byZone {
		for mmsi, sess := range sessions {
			if now.Sub(sess.lastInsideAt) > persist {
				delete(sessions, mmsi)
			}
		}
		if len(sessions) == 0 {
			delete(s.byZone, zoneID)
		}
	}
}

func (s *sessionStore) zone(zoneID string) map[int]*session {
	return s.byZone[zoneID]
}
