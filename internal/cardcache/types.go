package cardcache

import (
	"maps"
	"slices"
)

// Kind discriminates the attribute shape of a card.
type Kind string

const (
	KindMonster Kind = "monster"
	KindSpell   Kind = "spell"
	KindTrap    Kind = "trap"
)

// Image is one artwork variant of a card.
type Image struct {
	VariantID string `json:"variantId"`
	Hash      string `json:"hash,omitempty"`
}

// MonsterFields holds the attributes of monster cards. ATK and DEF use -1
// for "?" values.
type MonsterFields struct {
	Attribute  string   `json:"attribute,omitempty"`
	Race       string   `json:"race,omitempty"`
	LevelType  string   `json:"levelType,omitempty"`
	LevelValue int      `json:"levelValue,omitempty"`
	ATK        int      `json:"atk"`
	DEF        int      `json:"def"`
	ExtraDeck  bool     `json:"extraDeck,omitempty"`
	Types      []string `json:"types,omitempty"`
}

// EffectFields holds the attributes of spell and trap cards.
type EffectFields struct {
	EffectType string `json:"effectType,omitempty"`
}

// Entity is a full card view. Producers fill ID, Lang, Name, Images, Kind
// and the matching attribute block. Reconstruct additionally fills Names,
// LangImages and FetchedAt.
type Entity struct {
	ID         string             `json:"id"`
	Lang       string             `json:"lang,omitempty"`
	Name       string             `json:"name"`
	Images     []Image            `json:"images,omitempty"`
	Kind       Kind               `json:"kind"`
	Monster    *MonsterFields     `json:"monster,omitempty"`
	Effect     *EffectFields      `json:"effect,omitempty"`
	Names      map[string]string  `json:"names,omitempty"`
	LangImages map[string][]Image `json:"langImages,omitempty"`
	FetchedAt  int64              `json:"fetchedAt,omitempty"`
}

// CardA is the identity record of a card: names and images per language.
// Lang is the language of the most recent write.
type CardA struct {
	ID        string             `json:"id"`
	Lang      string             `json:"lang"`
	Names     map[string]string  `json:"names"`
	Images    map[string][]Image `json:"images"`
	FetchedAt int64              `json:"fetchedAt"`
}

// Name returns the display name in the record's primary language.
func (a CardA) Name() string {
	return a.Names[a.Lang]
}

func (a CardA) clone() CardA {
	out := a
	out.Names = maps.Clone(a.Names)
	out.Images = cloneLangImages(a.Images)
	return out
}

// CardB is the typed attribute record of a card. Only the block matching
// Kind is set.
type CardB struct {
	ID        string         `json:"id"`
	Kind      Kind           `json:"kind"`
	Monster   *MonsterFields `json:"monster,omitempty"`
	Effect    *EffectFields  `json:"effect,omitempty"`
	FetchedAt int64          `json:"fetchedAt"`
}

func (b CardB) clone() CardB {
	out := b
	out.Monster = cloneMonster(b.Monster)
	out.Effect = cloneEffect(b.Effect)
	return out
}

// CardC is the long-form detail record of a card. LangFetchedAt tracks
// freshness per language.
type CardC struct {
	ID            string           `json:"id"`
	Lang          string           `json:"lang"`
	Text          string           `json:"text"`
	FetchedAt     int64            `json:"fetchedAt"`
	LangFetchedAt map[string]int64 `json:"langFetchedAt,omitempty"`
}

func (c CardC) clone() CardC {
	out := c
	out.LangFetchedAt = maps.Clone(c.LangFetchedAt)
	return out
}

// BasicInfo is the pair of always-loaded records for one card. Either
// pointer is nil when that record is absent.
type BasicInfo struct {
	A *CardA
	B *CardB
}

// ProductA is the summary record of a product pack.
type ProductA struct {
	ID          string `json:"id"`
	Lang        string `json:"lang"`
	Name        string `json:"name"`
	ReleaseDate string `json:"releaseDate,omitempty"`
	CardCount   int    `json:"cardCount,omitempty"`
	FetchedAt   int64  `json:"fetchedAt"`
}

// ProductB is the card list of a product pack.
type ProductB struct {
	ID        string   `json:"id"`
	Lang      string   `json:"lang"`
	CardIDs   []string `json:"cardIds"`
	FetchedAt int64    `json:"fetchedAt"`
}

// FAQA is the summary record of an FAQ entry. LastAccessed drives expiry.
type FAQA struct {
	ID           string   `json:"id"`
	Lang         string   `json:"lang"`
	Question     string   `json:"question"`
	CardIDs      []string `json:"cardIds,omitempty"`
	FetchedAt    int64    `json:"fetchedAt"`
	LastAccessed int64    `json:"lastAccessed"`
}

// FAQB is the answer text of an FAQ entry.
type FAQB struct {
	ID        string `json:"id"`
	Lang      string `json:"lang"`
	Answer    string `json:"answer"`
	FetchedAt int64  `json:"fetchedAt"`
}

func cloneLangImages(in map[string][]Image) map[string][]Image {
	if in == nil {
		return nil
	}
	out := make(map[string][]Image, len(in))
	for lang, images := range in {
		out[lang] = slices.Clone(images)
	}
	return out
}

func cloneMonster(m *MonsterFields) *MonsterFields {
	if m == nil {
		return nil
	}
	out := *m
	out.Types = slices.Clone(m.Types)
	return &out
}

func cloneEffect(e *EffectFields) *EffectFields {
	if e == nil {
		return nil
	}
	out := *e
	return &out
}
