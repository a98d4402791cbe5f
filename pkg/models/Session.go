package models

import (
	"time"
)

type SessionPayload struct {
	UserID int `json:"userId"`
}

type Session struct {
	Key     string         `json:"key"`
	Expiry  time.Time      `json:"expiry"`
	Payload SessionPayload `json:"payload"`
}

func (s Session) IsExpired(now time.Time) bool {
	return !now.Before(s.Expiry)
}

/*
SessionCookie is what lives in the browser cookie. It only ever carries the
opaque key; the payload stays server side.
*/
type SessionCookie struct {
	Key string
}
