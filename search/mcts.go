// Package search implements prior-guided Monte Carlo Tree Search with PUCT
// selection, lazy child-state materialization, and root Dirichlet noise —
// the AlphaZero-style search half of the training loop.
package search

import (
	"math"
	"math/rand"

	"duel/actionspace"
	"duel/encoder"
	"duel/engine"
)

// Node is one tree node. State is nil for a child that has never been
// visited; it is materialized from the parent's state and the child's
// action on first traversal.
type Node struct {
	state      *engine.GameState
	toPlay     int
	parent     *Node
	actionID   int
	prior      float64
	visitCount int
	valueSum   float64
	children   map[int]*Node
	childOrder []int
}

// Q returns the node's mean backed-up value, or 0 if unvisited.
func (n *Node) Q() float64 {
	if n.visitCount == 0 {
		return 0
	}
	return n.valueSum / float64(n.visitCount)
}

// MCTS holds everything a search run needs: the rule engine's action
// space, the evaluator, and the PUCT/noise hyperparameters.
type MCTS struct {
	Space          *actionspace.Space
	Evaluator      encoder.Evaluator
	Simulations    int
	Cpuct          float64
	DirichletAlpha float64
	DirichletEps   float64
}

// Run executes Simulations playouts from rootState (whose mover is toPlay)
// and returns the length-|A| visit-count policy over the root's children.
// rng drives Dirichlet noise and must never be a shared global generator —
// callers thread their own stream explicitly (§9 Randomness).
func (mc *MCTS) Run(rootState *engine.GameState, toPlay int, training bool, rng *rand.Rand) []float64 {
	root := &Node{state: rootState.Clone(), toPlay: toPlay}
	mc.expand(root, training, rng)

	for i := 0; i < mc.Simulations; i++ {
		node := root
		path := []*Node{node}

		for len(node.children) > 0 {
			child := mc.selectChild(node)
			if child.state == nil {
				action := mc.Space.Action(child.actionID)
				nextState := engine.NextState(node.state, action)
				child.state = nextState
				child.toPlay = nextState.CurrentPlayer
			}
			node = child
			path = append(path, node)
			if engine.IsTerminal(node.state) {
				break
			}
		}

		var value float64
		if engine.IsTerminal(node.state) {
			value = float64(engine.TerminalValue(node.state, node.toPlay))
		} else {
			value = mc.expand(node, false, rng)
		}

		for i := len(path) - 1; i >= 0; i-- {
			path[i].visitCount++
			path[i].valueSum += value
			value = -value
		}
	}

	policy := make([]float64, mc.Space.Size())
	totalVisits := 0
	for _, child := range root.children {
		totalVisits += child.visitCount
	}
	if totalVisits > 0 {
		for actionID, child := range root.children {
			policy[actionID] = float64(child.visitCount) / float64(totalVisits)
		}
	}
	return policy
}

// expand evaluates node.state and creates one lazily-materialized child
// per legal action, returning the evaluator's value estimate. A node with
// no legal actions (terminal-ish) is left childless.
func (mc *MCTS) expand(node *Node, addRootNoise bool, rng *rand.Rand) float64 {
	features := encoder.Encode(node.state, node.toPlay)
	logits, value := mc.Evaluator.Evaluate(features)
	legalIDs := mc.Space.LegalIDs(node.state)
	if len(legalIDs) == 0 {
		return value
	}

	priors := softmaxOver(logits, legalIDs)
	if addRootNoise {
		noise := dirichlet(rng, mc.DirichletAlpha, len(legalIDs))
		for i := range priors {
			priors[i] = (1-mc.DirichletEps)*priors[i] + mc.DirichletEps*noise[i]
		}
	}

	if node.children == nil {
		node.children = make(map[int]*Node, len(legalIDs))
	}
	for i, id := range legalIDs {
		if _, exists := node.children[id]; !exists {
			node.children[id] = &Node{parent: node, actionID: id, prior: priors[i]}
			node.childOrder = append(node.childOrder, id)
		}
	}
	return value
}

// selectChild walks node.childOrder rather than ranging over node.children
// directly: map iteration order is randomized per range, and every child
// starts tied at Q=0, so an unordered walk would make the very first visit
// of any expanded node nondeterministic under a fixed seed.
func (mc *MCTS) selectChild(node *Node) *Node {
	sqrtParent := math.Sqrt(math.Max(1, float64(node.visitCount)))
	var best *Node
	bestScore := math.Inf(-1)
	for _, id := range node.childOrder {
		child := node.children[id]
		u := mc.Cpuct * child.prior * sqrtParent / (1 + float64(child.visitCount))
		score := child.Q() + u
		if score > bestScore {
			bestScore = score
			best = child
		}
	}
	return best
}

// softmaxOver computes softmax(logits[i] for i in ids), floored at 1e-8
// before renormalizing, matching the reference's legal-prior extraction.
func softmaxOver(logits []float64, ids []int) []float64 {
	maxLogit := math.Inf(-1)
	for _, id := range ids {
		if logits[id] > maxLogit {
			maxLogit = logits[id]
		}
	}
	exps := make([]float64, len(ids))
	sum := 0.0
	for i, id := range ids {
		e := math.Exp(logits[id] - maxLogit)
		exps[i] = e
		sum += e
	}
	priors := make([]float64, len(ids))
	total := 0.0
	for i, e := range exps {
		p := math.Max(1e-8, e/sum)
		priors[i] = p
		total += p
	}
	for i := range priors {
		priors[i] /= total
	}
	return priors
}

// dirichlet draws a Dirichlet(alpha, ..., alpha) sample of dimension n
// using the standard gamma-normalization construction.
func dirichlet(rng *rand.Rand, alpha float64, n int) []float64 {
	if n == 0 {
		return nil
	}
	samples := make([]float64, n)
	sum := 0.0
	for i := range samples {
		g := sampleGamma(rng, alpha)
		samples[i] = g
		sum += g
	}
	if sum <= 0 {
		uniform := 1.0 / float64(n)
		for i := range samples {
			samples[i] = uniform
		}
		return samples
	}
	for i := range samples {
		samples[i] /= sum
	}
	return samples
}

// sampleGamma draws from Gamma(shape, 1) via the Marsaglia-Tsang method,
// valid for shape > 0 (typical Dirichlet alphas are well under 1, so the
// shape < 1 boost transform is applied per Marsaglia & Tsang 2000).
func sampleGamma(rng *rand.Rand, shape float64) float64 {
	if shape < 1 {
		u := rng.Float64()
		return sampleGamma(rng, shape+1) * math.Pow(u, 1/shape)
	}
	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9*d)
	for {
		var x, v float64
		for {
			x = rng.NormFloat64()
			v = 1 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := rng.Float64()
		if u < 1-0.0331*(x*x*x*x) {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}
