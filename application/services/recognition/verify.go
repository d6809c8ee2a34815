package recognition

import (
	"context"
	"fmt"
	"sort"
	"time"

	"facevote.io/application/services/similarity"
	"facevote.io/application/utils"
	"facevote.io/entities"
	"facevote.io/infrastructure/logger"
)

// BackendResult is one backend's contribution to a verification.
type BackendResult struct {
	Backend      entities.Backend `json:"backend"`
	Encoded      bool             `json:"encoded"`
	Matched      bool             `json:"success"`
	IdentityID   string           `json:"user_id,omitempty"`
	IdentityName string           `json:"name,omitempty"`
	Similarity   float64          `json:"similarity"`
	Threshold    float64          `json:"threshold"`
	Message      string           `json:"message,omitempty"`
}

// Verdict is a confirmed verification.
type Verdict struct {
	IdentityID        string             `json:"id"`
	IdentityName      string             `json:"name"`
	VoteCount         int                `json:"vote_count"`
	TotalBackends     int                `json:"total_algorithms"`
	VotingBackends    []entities.Backend `json:"voting_methods"`
	AverageSimilarity float64            `json:"average_similarity"`
	BackendResults    []BackendResult    `json:"method_results"`
}

// Verify identifies the person in image. A verdict requires that more than
// half of the backends that produced an embedding chose the same identity.
func (e *Engine) Verify(ctx context.Context, image []byte) (verdict *Verdict, err error) {
	startTime := time.Now()
	var results []BackendResult
	var tally TallyResult
	total := 0
	defer func() {
		e.audit(ctx, verifyAudit(results, tally, total, err, time.Since(startTime)))
	}()

	if len(image) == 0 {
		return nil, ErrInvalidInput
	}

	encodings, err := e.encode(ctx, image)
	if err != nil {
		return nil, err
	}
	total = len(succeeded(encodings))
	if total == 0 {
		return nil, ErrNoFaceDetected
	}

	profiles, err := e.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	if len(profiles) == 0 {
		return nil, ErrEmptyStore
	}
	ids := enrollmentOrder(profiles)

	ballots := []Ballot{}
	results = make([]BackendResult, 0, len(encodings))
	for _, enc := range encodings {
		if !enc.ok() {
			results = append(results, BackendResult{Backend: enc.Backend, Message: enc.Reason})
			continue
		}

		result, ballot, err := e.bestMatch(ctx, enc, ids, profiles)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
		if ballot != nil {
			ballots = append(ballots, *ballot)
		}
	}

	tally, found := Tally(ballots)
	if !found {
		return nil, ErrNoMatch
	}
	if !tally.Confirmed(total) {
		logger.Info("verification vote did not reach a majority", logger.LoggerOptions{
			Key: "tally",
			Data: map[string]interface{}{
				"total":       total,
				"top_votes":   tally.Votes,
				"top_methods": entities.BackendNames(tally.Backends),
			},
		})
		return nil, ErrNoMatch
	}
	if total == 1 {
		logger.Warning("identity confirmed by a single backend", logger.LoggerOptions{
			Key: "tally",
			Data: map[string]interface{}{
				"id":      tally.IdentityID,
				"backend": tally.Backends[0],
			},
		})
	}

	verdict = &Verdict{
		IdentityID:        tally.IdentityID,
		IdentityName:      tally.Name,
		VoteCount:         tally.Votes,
		TotalBackends:     total,
		VotingBackends:    tally.Backends,
		AverageSimilarity: tally.AverageSimilarity(),
		BackendResults:    results,
	}
	logger.Info("identity verified", logger.LoggerOptions{
		Key: "verdict",
		Data: map[string]interface{}{
			"id":                 verdict.IdentityID,
			"votes":              fmt.Sprintf("%d/%d", verdict.VoteCount, verdict.TotalBackends),
			"voting_methods":     entities.BackendNames(verdict.VotingBackends),
			"average_similarity": verdict.AverageSimilarity,
		},
	})
	return verdict, nil
}

// enrollmentOrder lists ids oldest enrollment first, by id when two were
// created at the same instant.
func enrollmentOrder(profiles map[string]entities.IdentityProfile) []string {
	ids := utils.SortedKeys(profiles)
	sort.SliceStable(ids, func(i, j int) bool {
		return profiles[ids[i]].CreatedAt.Before(profiles[ids[j]].CreatedAt)
	})
	return ids
}

// bestMatch compares the probe against every enrolled embedding of the same
// backend. The highest similarity strictly above the threshold wins, earliest
// enrollment on ties.
func (e *Engine) bestMatch(ctx context.Context, enc encoding, ids []string, profiles map[string]entities.IdentityProfile) (BackendResult, *Ballot, error) {
	threshold := similarity.DefaultThreshold
	if profile, known := similarity.ProfileFor(enc.Backend); known {
		threshold = profile.EffectiveThreshold(enc.Embedding)
	}
	result := BackendResult{Backend: enc.Backend, Encoded: true, Threshold: threshold}

	var best *Ballot
	for _, id := range ids {
		stored, err := e.store.GetEmbedding(ctx, id, enc.Backend)
		if err != nil {
			return result, nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
		}
		if stored == nil {
			continue
		}
		sim := similarity.Similarity(enc.Backend, enc.Embedding, stored)
		if !similarity.Matches(sim, threshold) {
			continue
		}
		if best == nil || sim > best.Similarity {
			best = &Ballot{Backend: enc.Backend, IdentityID: id, Name: profiles[id].Name, Similarity: sim}
		}
	}

	if best == nil {
		result.Message = "no matching face found"
		return result, nil, nil
	}
	result.Matched = true
	result.IdentityID = best.IdentityID
	result.IdentityName = best.Name
	result.Similarity = best.Similarity
	return result, best, nil
}

func verifyAudit(results []BackendResult, tally TallyResult, total int, err error, took time.Duration) entities.RecognitionAudit {
	audit := entities.RecognitionAudit{
		Operation:  entities.AuditVerify,
		Outcome:    Outcome(err),
		Total:      total,
		DurationMs: took.Milliseconds(),
		Backends:   []entities.BackendAudit{},
	}
	if err == nil {
		audit.IdentityID = tally.IdentityID
		audit.VoteCount = tally.Votes
	}
	for _, r := range results {
		audit.Backends = append(audit.Backends, entities.BackendAudit{
			Backend:    r.Backend,
			Encoded:    r.Encoded,
			Matched:    r.Matched,
			IdentityID: r.IdentityID,
			Similarity: r.Similarity,
		})
	}
	return audit
}
