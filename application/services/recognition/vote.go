package recognition

import (
	"facevote.io/entities"
)

// Ballot is one backend's best match.
type Ballot struct {
	Backend    entities.Backend
	IdentityID string
	Name       string
	Similarity float64
}

// TallyResult is the leading identity after counting ballots.
type TallyResult struct {
	IdentityID   string
	Name         string
	Votes        int
	Backends     []entities.Backend
	Similarities []float64
}

// Confirmed reports a strict majority of the backends that produced an
// embedding. With a single producing backend one vote is a majority.
func (t TallyResult) Confirmed(total int) bool {
	return total > 0 && t.Votes*2 > total
}

// AverageSimilarity averages over the backends that voted for the winner.
func (t TallyResult) AverageSimilarity() float64 {
	if len(t.Similarities) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range t.Similarities {
		sum += s
	}
	return sum / float64(len(t.Similarities))
}

// Tally counts one vote per ballot. The identity with the most votes leads;
// ties go to the identity whose first ballot came first. ok is false when
// there are no ballots.
func Tally(ballots []Ballot) (result TallyResult, ok bool) {
	if len(ballots) == 0 {
		return TallyResult{}, false
	}

	order := []string{}
	counts := map[string]*TallyResult{}
	for _, b := range ballots {
		entry, exists := counts[b.IdentityID]
		if !exists {
			entry = &TallyResult{IdentityID: b.IdentityID, Name: b.Name}
			counts[b.IdentityID] = entry
			order = append(order, b.IdentityID)
		}
		entry.Votes++
		entry.Backends = append(entry.Backends, b.Backend)
		entry.Similarities = append(entry.Similarities, b.Similarity)
	}

	best := counts[order[0]]
	for _, id := range order[1:] {
		if counts[id].Votes > best.Votes {
			best = counts[id]
		}
	}
	return *best, true
}
