// Package world holds the world-building data model and its key-value
// persistence. A World is the root of a strict ownership tree: every other
// entity carries the id of exactly one world in WorldID.
package world

import (
	"encoding/json"
	"time"
)

type World struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Genre       string    `json:"genre,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Template    string    `json:"template,omitempty"`
	Series      string    `json:"series,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
	Extra       Fields    `json:"-"`
}

type Relationship struct {
	CharacterID string `json:"characterId"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Extra       Fields `json:"-"`
}

type Character struct {
	ID            string         `json:"id"`
	WorldID       string         `json:"worldId"`
	Name          string         `json:"name"`
	Role          string         `json:"role,omitempty"`
	Description   string         `json:"description,omitempty"`
	Appearance    string         `json:"appearance,omitempty"`
	Personality   string         `json:"personality,omitempty"`
	Backstory     string         `json:"backstory,omitempty"`
	Goals         string         `json:"goals,omitempty"`
	Tags          []string       `json:"tags,omitempty"`
	Relationships []Relationship `json:"relationships,omitempty"`
	CreatedAt     time.Time      `json:"createdAt,omitzero"`
	UpdatedAt     time.Time      `json:"updatedAt,omitzero"`
	Extra         Fields         `json:"-"`
}

type Location struct {
	ID          string    `json:"id"`
	WorldID     string    `json:"worldId"`
	Name        string    `json:"name"`
	Type        string    `json:"type,omitempty"`
	Description string    `json:"description,omitempty"`
	Climate     string    `json:"climate,omitempty"`
	Population  string    `json:"population,omitempty"`
	ParentID    string    `json:"parentId,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
	Extra       Fields    `json:"-"`
}

type Item struct {
	ID          string    `json:"id"`
	WorldID     string    `json:"worldId"`
	Name        string    `json:"name"`
	Type        string    `json:"type,omitempty"`
	Rarity      string    `json:"rarity,omitempty"`
	Description string    `json:"description,omitempty"`
	Powers      string    `json:"powers,omitempty"`
	OwnerID     string    `json:"ownerId,omitempty"`
	LocationID  string    `json:"locationId,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
	Extra       Fields    `json:"-"`
}

type Faction struct {
	ID          string    `json:"id"`
	WorldID     string    `json:"worldId"`
	Name        string    `json:"name"`
	Type        string    `json:"type,omitempty"`
	Description string    `json:"description,omitempty"`
	Goals       string    `json:"goals,omitempty"`
	LeaderID    string    `json:"leaderId,omitempty"`
	MemberIDs   []string  `json:"memberIds,omitempty"`
	AllyIDs     []string  `json:"allyIds,omitempty"`
	EnemyIDs    []string  `json:"enemyIds,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
	Extra       Fields    `json:"-"`
}

type TimelineEvent struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Date         string   `json:"date,omitempty"`
	Description  string   `json:"description,omitempty"`
	CharacterIDs []string `json:"characterIds,omitempty"`
	LocationIDs  []string `json:"locationIds,omitempty"`
	Extra        Fields   `json:"-"`
}

type Timeline struct {
	ID          string          `json:"id"`
	WorldID     string          `json:"worldId"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Events      []TimelineEvent `json:"events,omitempty"`
	CreatedAt   time.Time       `json:"createdAt,omitzero"`
	UpdatedAt   time.Time       `json:"updatedAt,omitzero"`
	Extra       Fields          `json:"-"`
}

// EntityLink points from a lore note at another entity of the same world.
// Type is a collection name such as "characters".
type EntityLink struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Extra Fields `json:"-"`
}

type LoreNote struct {
	ID             string       `json:"id"`
	WorldID        string       `json:"worldId"`
	Title          string       `json:"title"`
	Category       string       `json:"category,omitempty"`
	Content        string       `json:"content,omitempty"`
	Tags           []string     `json:"tags,omitempty"`
	LinkedEntities []EntityLink `json:"linkedEntities,omitempty"`
	CreatedAt      time.Time    `json:"createdAt,omitzero"`
	UpdatedAt      time.Time    `json:"updatedAt,omitzero"`
	Extra          Fields       `json:"-"`
}

type MagicSystem struct {
	ID          string    `json:"id"`
	WorldID     string    `json:"worldId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Source      string    `json:"source,omitempty"`
	Rules       []string  `json:"rules,omitempty"`
	Limitations []string  `json:"limitations,omitempty"`
	Costs       string    `json:"costs,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
	Extra       Fields    `json:"-"`
}

type Mythology struct {
	ID           string    `json:"id"`
	WorldID      string    `json:"worldId"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Deities      []string  `json:"deities,omitempty"`
	CreationMyth string    `json:"creationMyth,omitempty"`
	Beliefs      string    `json:"beliefs,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitzero"`
	UpdatedAt    time.Time `json:"updatedAt,omitzero"`
	Extra        Fields    `json:"-"`
}

// Snapshot is a saved point-in-time copy of a world's state. Data is opaque
// to the core.
type Snapshot struct {
	ID          string          `json:"id"`
	WorldID     string          `json:"worldId"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
	CreatedAt   time.Time       `json:"createdAt,omitzero"`
	Extra       Fields          `json:"-"`
}


func (w World) MarshalJSON() ([]byte, error) {
	type plain World
	return encodeFields(plain(w), w.Extra)
}

func (w *World) UnmarshalJSON(data []byte) error {
	type plain World
	extra, err := decodeFields(data, (*plain)(w))
	w.Extra = extra
	return err
}

func (r Relationship) MarshalJSON() ([]byte, error) {
	type plain Relationship
	return encodeFields(plain(r), r.Extra)
}

func (r *Relationship) UnmarshalJSON(data []byte) error {
	type plain Relationship
	extra, err := decodeFields(data, (*plain)(r))
	r.Extra = extra
	return err
}

func (c Character) MarshalJSON() ([]byte, error) {
	type plain Character
	return encodeFields(plain(c), c.Extra)
}

func (c *Character) UnmarshalJSON(data []byte) error {
	type plain Character
	extra, err := decodeFields(data, (*plain)(c))
	c.Extra = extra
	return err
}

func (l Location) MarshalJSON() ([]byte, error) {
	type plain Location
	return encodeFields(plain(l), l.Extra)
}

func (l *Location) UnmarshalJSON(data []byte) error {
	type plain Location
	extra, err := decodeFields(data, (*plain)(l))
	l.Extra = extra
	return err
}

func (i Item) MarshalJSON() ([]byte, error) {
	type plain Item
	return encodeFields(plain(i), i.Extra)
}

func (i *Item) UnmarshalJSON(data []byte) error {
	type plain Item
	extra, err := decodeFields(data, (*plain)(i))
	i.Extra = extra
	return err
}

func (f Faction) MarshalJSON() ([]byte, error) {
	type plain Faction
	return encodeFields(plain(f), f.Extra)
}

func (f *Faction) UnmarshalJSON(data []byte) error {
	type plain Faction
	extra, err := decodeFields(data, (*plain)(f))
	f.Extra = extra
	return err
}

func (t TimelineEvent) MarshalJSON() ([]byte, error) {
	type plain TimelineEvent
	return encodeFields(plain(t), t.Extra)
}

func (t *TimelineEvent) UnmarshalJSON(data []byte) error {
	type plain TimelineEvent
	extra, err := decodeFields(data, (*plain)(t))
	t.Extra = extra
	return err
}

func (t Timeline) MarshalJSON() ([]byte, error) {
	type plain Timeline
	return encodeFields(plain(t), t.Extra)
}

func (t *Timeline) UnmarshalJSON(data []byte) error {
	type plain Timeline
	extra, err := decodeFields(data, (*plain)(t))
	t.Extra = extra
	return err
}

func (e EntityLink) MarshalJSON() ([]byte, error) {
	type plain EntityLink
	return encodeFields(plain(e), e.Extra)
}

func (e *EntityLink) UnmarshalJSON(data []byte) error {
	type plain EntityLink
	extra, err := decodeFields(data, (*plain)(e))
	e.Extra = extra
	return err
}

func (l LoreNote) MarshalJSON() ([]byte, error) {
	type plain LoreNote
	return encodeFields(plain(l), l.Extra)
}

func (l *LoreNote) UnmarshalJSON(data []byte) error {
	type plain LoreNote
	extra, err := decodeFields(data, (*plain)(l))
	l.Extra = extra
	return err
}

func (m MagicSystem) MarshalJSON() ([]byte, error) {
	type plain MagicSystem
	return encodeFields(plain(m), m.Extra)
}

func (m *MagicSystem) UnmarshalJSON(data []byte) error {
	type plain MagicSystem
	extra, err := decodeFields(data, (*plain)(m))
	m.Extra = extra
	return err
}

func (m Mythology) MarshalJSON() ([]byte, error) {
	type plain Mythology
	return encodeFields(plain(m), m.Extra)
}

func (m *Mythology) UnmarshalJSON(data []byte) error {
	type plain Mythology
	extra, err := decodeFields(data, (*plain)(m))
	m.Extra = extra
	return err
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	type plain Snapshot
	return encodeFields(plain(s), s.Extra)
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	type plain Snapshot
	extra, err := decodeFields(data, (*plain)(s))
	s.Extra = extra
	return err
}
