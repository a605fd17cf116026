package engine

import "duel/rules"

// BuildStartingDeck assembles one player's starting deck in the fixed
// COUNTS order. The engine never shuffles; reproducing runs from a seed is
// entirely the search/self-play layer's responsibility (§5).
func BuildStartingDeck() []Card {
	deck := make([]Card, 0, 80)
	for _, id := range rules.CountsOrder {
		n := rules.Counts[id]
		_, isConstruct := rules.Constructs[id]
		for i := 0; i < n; i++ {
			if isConstruct {
				deck = append(deck, makeItemCard(id))
			} else {
				deck = append(deck, makeSpellCard(id))
			}
		}
	}
	return deck
}

// drawCards moves up to n cards from the tail of p.Deck into p.Hand. If
// allowOverflow is false, drawing stops once the hand reaches MaxHandSize.
func drawCards(p *PlayerZone, n int, allowOverflow bool) {
	for i := 0; i < n; i++ {
		if !allowOverflow && len(p.Hand) >= rules.MaxHandSize {
			break
		}
		if len(p.Deck) == 0 {
			break
		}
		last := len(p.Deck) - 1
		p.Hand = append(p.Hand, p.Deck[last])
		p.Deck = p.Deck[:last]
	}
}

func enforceHandLimit(p *PlayerZone) {
	over := len(p.Hand) - rules.MaxHandSize
	if over < 0 {
		over = 0
	}
	p.PendingDiscard = over
}

// InitialState builds the starting GameState: both decks built and drawn to
// STARTING_HAND_SIZE, player 1 to move, mulligan already resolved (neither
// player enters the mulligan phase).
func InitialState() *GameState {
	p1 := &PlayerZone{LP: rules.StartingLP, Deck: BuildStartingDeck()}
	p2 := &PlayerZone{LP: rules.StartingLP, Deck: BuildStartingDeck()}
	drawCards(p1, rules.StartingHandSize, false)
	drawCards(p2, rules.StartingHandSize, false)
	return &GameState{
		Status:        StatusActive,
		CurrentPlayer: 1,
		Winner:        0,
		Mulligan: Mulligan{
			Phase: false,
			Done:  map[int]bool{1: true, 2: true},
		},
		Players: map[int]*PlayerZone{1: p1, 2: p2},
	}
}
