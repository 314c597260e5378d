// Package models defines core domain types
package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Monthly credit allowance
const (
	BaselineOmnitokens = 10
	BaselineOmnicoins  = 45
)

// User represents an account that can generate presentations
type User struct {
	ID           uuid.UUID   `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"` // Never serialize to JSON
	Salt         string      `json:"-"`
	Permissions  Permissions `json:"permissions"`
	Omnitokens   int         `json:"omnitokens"`
	Omnicoins    int         `json:"omnicoins"`
	LastReset    time.Time   `json:"lastReset"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// NewUser creates a new user with generated ID, timestamps and a full allowance
func NewUser(username, email, passwordHash, salt string, perms Permissions) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Salt:         salt,
		Permissions:  perms,
		Omnitokens:   BaselineOmnitokens,
		Omnicoins:    BaselineOmnicoins,
		LastReset:    now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Credits returns the user's current balances
func (u *User) Credits() Credits {
	return Credits{Omnitokens: u.Omnitokens, Omnicoins: u.Omnicoins}
}

// NeedsReset reports whether the calendar month (UTC) has advanced since the last reset
func (u *User) NeedsReset(now time.Time) bool {
	return NeedsReset(u.LastReset, now)
}

// ResetCredits restores both counters to baseline and stamps the reset time
func (u *User) ResetCredits(now time.Time) {
	u.Omnitokens = BaselineOmnitokens
	u.Omnicoins = BaselineOmnicoins
	u.LastReset = now.UTC()
}

// NeedsReset compares (year, month) of both instants in UTC
func NeedsReset(lastReset, now time.Time) bool {
	if lastReset.IsZero() {
		return true
	}
	l, n := lastReset.UTC(), now.UTC()
	return l.Year() != n.Year() || l.Month() != n.Month()
}

// Credits holds both per-user counters
type Credits struct {
	Omnitokens int `json:"omnitokens"`
	Omnicoins  int `json:"omnicoins"`
}

// Counter names one of the two credit counters
type Counter string

const (
	CounterTokens Counter = "tokens"
	CounterCoins  Counter = "coins"
)

// Valid reports whether c is a known counter
func (c Counter) Valid() bool {
	return c == CounterTokens || c == CounterCoins
}

// Of returns the balance of counter c
func (c Counter) Of(credits Credits) int {
	if c == CounterCoins {
		return credits.Omnicoins
	}
	return credits.Omnitokens
}

// Permissions is the typed permission set stored as a JSON blob.
// Keys other than "sudo" are kept in Extra so that merges preserve them.
type Permissions struct {
	Sudo  bool
	Extra map[string]json.RawMessage
}

// ParsePermissions decodes a stored blob. Garbage yields an empty set.
func ParsePermissions(blob string) Permissions {
	var p Permissions
	if strings.TrimSpace(blob) == "" {
		return p
	}
	if err := json.Unmarshal([]byte(blob), &p); err != nil {
		return Permissions{}
	}
	return p
}

// String encodes the set for storage
func (p Permissions) String() string {
	b, err := json.Marshal(p)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// Apply overlays a partial update onto p
func (p Permissions) Apply(patch PermissionsPatch) Permissions {
	out := Permissions{Sudo: p.Sudo, Extra: map[string]json.RawMessage{}}
	if patch.Sudo != nil {
		out.Sudo = *patch.Sudo
	}
	for k, v := range p.Extra {
		out.Extra[k] = v
	}
	for k, v := range patch.Extra {
		out.Extra[k] = v
	}
	if len(out.Extra) == 0 {
		out.Extra = nil
	}
	return out
}

// PermissionsPatch is a partial permission update; a nil Sudo leaves the flag unchanged
type PermissionsPatch struct {
	Sudo  *bool
	Extra map[string]json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler with the same sudo coercion as Permissions
func (pp *PermissionsPatch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*pp = PermissionsPatch{}
	if v, ok := raw["sudo"]; ok {
		sudo := truthy(v)
		pp.Sudo = &sudo
		delete(raw, "sudo")
	}
	if len(raw) > 0 {
		pp.Extra = raw
	}
	return nil
}

// MarshalJSON implements json.Marshaler
func (p Permissions) MarshalJSON() ([]byte, error) {
	m := make(map[string]json.RawMessage, len(p.Extra)+1)
	for k, v := range p.Extra {
		m[k] = v
	}
	if p.Sudo {
		m["sudo"] = json.RawMessage("true")
	} else {
		m["sudo"] = json.RawMessage("false")
	}
	return json.Marshal(m)
}

// UnmarshalJSON accepts an object, a JSON-encoded object string, or null.
// The sudo flag is true for true, "true", 1 and "1".
func (p *Permissions) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = Permissions{}
		return nil
	}

	// Doubly encoded blobs from older rows
	if len(data) > 0 && data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return err
		}
		return p.UnmarshalJSON([]byte(inner))
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = Permissions{Sudo: truthy(raw["sudo"])}
	delete(raw, "sudo")
	if len(raw) > 0 {
		p.Extra = raw
	}
	return nil
}

func truthy(raw json.RawMessage) bool {
	switch strings.TrimSpace(string(raw)) {
	case "true", `"true"`, "1", `"1"`:
		return true
	}
	return false
}
