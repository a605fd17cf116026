// Package engine implements the deterministic Psychometric Duel game: card
// and stack types, monster derivation, legal-action enumeration, and the
// transition function. All state is value-semantic — every mutation works
// on a deep clone, and the caller's original state remains valid.
package engine

import (
	"encoding/json"
	"strconv"

	"duel/rules"
)

// CardKind discriminates the two Card shapes.
type CardKind int

const (
	ItemCard CardKind = iota
	SpellCard
)

// Card is a tagged variant: an item card carries construct fields, a spell
// card carries only an id. Cards are plain values — copying a Card by
// assignment is always a correct deep copy.
type Card struct {
	Kind        CardKind
	ConstructID string
	Construct   string
	Type        rules.ConstructType
	Short       string
	AvgR        float64
	SpellID     string
}

func makeItemCard(constructID string) Card {
	c := rules.Constructs[constructID]
	return Card{
		Kind:        ItemCard,
		ConstructID: constructID,
		Construct:   c.Name,
		Type:        c.Type,
		Short:       c.Short,
		AvgR:        c.AvgR,
	}
}

func makeSpellCard(id string) Card {
	return Card{Kind: SpellCard, SpellID: id}
}

// ConstructStack is an ordered, nonempty collection of up to three item
// cards sharing a construct id and category.
type ConstructStack struct {
	Type        rules.ConstructType
	ConstructID string
	Cards       []Card
}

func (s *ConstructStack) clone() *ConstructStack {
	if s == nil {
		return nil
	}
	cards := make([]Card, len(s.Cards))
	copy(cards, s.Cards)
	return &ConstructStack{Type: s.Type, ConstructID: s.ConstructID, Cards: cards}
}

func makeConstructStackFromCard(card Card) *ConstructStack {
	return &ConstructStack{Type: card.Type, ConstructID: card.ConstructID, Cards: []Card{card}}
}

// Monster is a composite combat entity derived from a predictor stack and
// an outcome stack. It has no slice/pointer fields, so copying by value is
// always a correct deep copy.
type Monster struct {
	Name                   string
	PredID                 string
	OutID                  string
	PredAlpha              float64
	OutAlpha               float64
	RTrue                  float64
	AdverseImpact          float64
	AdverseStars           int
	AdverseStarsText       string
	RequiresJobRelevance   bool
	RObs                   float64
	BaseAtk                int
	Atk                    int
	BaseN                  int
	N                      int
	Power                  float64
	AttacksMade            int
	MaxAttacks             int
	SummoningSick          bool
	HasJobRelevance        bool
	HasImputation          bool
	HasPHacking            bool
	HasPracticeEffect      bool
	ItemLeakageApplied     bool
	CorrectionApplied      bool
	RangeRestrictionStacks int
	ValidityMultiplier     float64
	IsMeta                 bool
}

func (m *Monster) clone() *Monster {
	if m == nil {
		return nil
	}
	cp := *m
	return &cp
}

// PlayerZone holds one player's cards, board, and turn-scoped counters.
type PlayerZone struct {
	LP               int
	Deck             []Card
	Hand             []Card
	Constructs       [3]*ConstructStack
	Monsters         [3]*Monster
	Summoned         bool
	ExperienceTokens int
	PendingDiscard   int
}

func (p *PlayerZone) clone() *PlayerZone {
	cp := &PlayerZone{
		LP:               p.LP,
		Summoned:         p.Summoned,
		ExperienceTokens: p.ExperienceTokens,
		PendingDiscard:   p.PendingDiscard,
	}
	cp.Deck = make([]Card, len(p.Deck))
	copy(cp.Deck, p.Deck)
	cp.Hand = make([]Card, len(p.Hand))
	copy(cp.Hand, p.Hand)
	for i := 0; i < 3; i++ {
		cp.Constructs[i] = p.Constructs[i].clone()
		cp.Monsters[i] = p.Monsters[i].clone()
	}
	return cp
}

// Status is the game's lifecycle stage.
type Status string

const (
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

// Mulligan tracks the opening mulligan phase. The distilled rules never
// enter mulligan (both players are marked done at initial_state), but the
// field is carried through since the reference engine's state dictionary
// includes it and downstream tooling may inspect it.
type Mulligan struct {
	Phase bool
	Done  map[int]bool
}

func (m Mulligan) clone() Mulligan {
	done := make(map[int]bool, len(m.Done))
	for k, v := range m.Done {
		done[k] = v
	}
	return Mulligan{Phase: m.Phase, Done: done}
}

// GameState is the full, value-semantic snapshot of a duel in progress.
// Winner is 0 when no winner has been decided yet.
type GameState struct {
	Status        Status
	CurrentPlayer int
	Winner        int
	Mulligan      Mulligan
	Players       map[int]*PlayerZone
}

// Clone returns a deep copy of s; mutating the copy never affects s.
func (s *GameState) Clone() *GameState {
	cp := &GameState{
		Status:        s.Status,
		CurrentPlayer: s.CurrentPlayer,
		Winner:        s.Winner,
		Mulligan:      s.Mulligan.clone(),
		Players:       make(map[int]*PlayerZone, 2),
	}
	for pid, zone := range s.Players {
		cp.Players[pid] = zone.clone()
	}
	return cp
}

// Opponent returns the other player id (1<->2).
func Opponent(player int) int {
	if player == 1 {
		return 2
	}
	return 1
}

// Key returns the canonical, sort-keyed, compact JSON serialization of s,
// used for hashing and replay identity.
func (s *GameState) Key() string {
	b, err := json.Marshal(toCanonical(s))
	if err != nil {
		panic(err)
	}
	return string(b)
}

func toCanonical(s *GameState) map[string]interface{} {
	var winner interface{}
	if s.Winner != 0 {
		winner = s.Winner
	}
	done := map[string]interface{}{}
	for k, v := range s.Mulligan.Done {
		done[strconv.Itoa(k)] = v
	}
	players := map[string]interface{}{}
	for pid, zone := range s.Players {
		players[strconv.Itoa(pid)] = zoneCanonical(zone)
	}
	return map[string]interface{}{
		"status":        string(s.Status),
		"currentPlayer": s.CurrentPlayer,
		"winner":        winner,
		"mulligan": map[string]interface{}{
			"phase": s.Mulligan.Phase,
			"done":  done,
		},
		"players": players,
	}
}

func zoneCanonical(p *PlayerZone) map[string]interface{} {
	constructs := make([]interface{}, 3)
	for i, c := range p.Constructs {
		if c == nil {
			constructs[i] = nil
			continue
		}
		cards := make([]interface{}, len(c.Cards))
		for j, card := range c.Cards {
			cards[j] = cardCanonical(card)
		}
		constructs[i] = map[string]interface{}{
			"type":        string(c.Type),
			"constructId": c.ConstructID,
			"cards":       cards,
		}
	}
	monsters := make([]interface{}, 3)
	for i, m := range p.Monsters {
		if m == nil {
			monsters[i] = nil
			continue
		}
		monsters[i] = monsterCanonical(m)
	}
	hand := make([]interface{}, len(p.Hand))
	for i, c := range p.Hand {
		hand[i] = cardCanonical(c)
	}
	deck := make([]interface{}, len(p.Deck))
	for i, c := range p.Deck {
		deck[i] = cardCanonical(c)
	}
	return map[string]interface{}{
		"lp":               p.LP,
		"deck":             deck,
		"hand":             hand,
		"constructs":       constructs,
		"monsters":         monsters,
		"summoned":         p.Summoned,
		"experienceTokens": p.ExperienceTokens,
		"pendingDiscard":   p.PendingDiscard,
	}
}

func cardCanonical(c Card) map[string]interface{} {
	if c.Kind == SpellCard {
		return map[string]interface{}{"isItem": false, "id": c.SpellID}
	}
	return map[string]interface{}{
		"isItem":      true,
		"type":        string(c.Type),
		"constructId": c.ConstructID,
		"construct":   c.Construct,
		"short":       c.Short,
		"avgR":        c.AvgR,
	}
}

func monsterCanonical(m *Monster) map[string]interface{} {
	return map[string]interface{}{
		"name": m.Name, "predId": m.PredID, "outId": m.OutID,
		"predAlpha": m.PredAlpha, "outAlpha": m.OutAlpha, "rTrue": m.RTrue,
		"adverseImpact": m.AdverseImpact, "adverseStars": m.AdverseStars,
		"adverseStarsText": m.AdverseStarsText, "requiresJobRelevance": m.RequiresJobRelevance,
		"rObs": m.RObs, "baseAtk": m.BaseAtk, "atk": m.Atk,
		"baseN": m.BaseN, "n": m.N, "power": m.Power,
		"attacksMade": m.AttacksMade, "maxAttacks": m.MaxAttacks, "summoningSick": m.SummoningSick,
		"hasJobRelevance": m.HasJobRelevance, "hasImputation": m.HasImputation,
		"hasPHacking": m.HasPHacking, "hasPracticeEffect": m.HasPracticeEffect,
		"itemLeakageApplied": m.ItemLeakageApplied, "correctionApplied": m.CorrectionApplied,
		"rangeRestrictionStacks": m.RangeRestrictionStacks, "validityMultiplier": m.ValidityMultiplier,
		"isMeta": m.IsMeta,
	}
}
