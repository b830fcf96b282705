// Package models defines the payloads exchanged with the account service.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ID is a user identifier. The service sends it either as a JSON number or
// as a numeric string; both decode to the same value.
type ID int64

func (id ID) String() string { return strconv.FormatInt(int64(id), 10) }

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*id = 0
			return nil
		}
		b = []byte(s)
	}
	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user id %s: %w", b, err)
	}
	*id = ID(v)
	return nil
}

// User mirrors the service's user record. Password is write-only and is
// never rendered; Token is only present on login and registration replies.
type User struct {
	ID           ID      `json:"id"`
	Username     string  `json:"username"`
	Password     string  `json:"password,omitempty"`
	Token        string  `json:"token,omitempty"`
	Status       string  `json:"status,omitempty"`
	CreationDate string  `json:"creationDate,omitempty"`
	Birthday     *string `json:"birthday,omitempty"`
}

func (u User) String() string {
	return fmt.Sprintf("User{id=%d username=%q status=%q}", u.ID, u.Username, u.Status)
}

// BirthdayOrEmpty returns the birthday or "".
func (u User) BirthdayOrEmpty() string {
	if u.Birthday == nil {
		return ""
	}
	return *u.Birthday
}

// CreatedAt parses CreationDate, accepting RFC 3339 timestamps and plain
// dates.
func (u User) CreatedAt() (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, u.CreationDate); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Credentials is the body of login and registration calls.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserUpdate is the body of a profile update. A nil Birthday is sent as
// JSON null, clearing the field.
type UserUpdate struct {
	Username string  `json:"username"`
	Birthday *string `json:"birthday"`
}
