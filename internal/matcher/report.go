package matcher

import "petmatch/internal/models"

type Outcome string

const (
	// OutcomeMatched means the candidates were evaluated. Individual
	// results are in Report.Candidates.
	OutcomeMatched      Outcome = "matched"
	OutcomeNoImage      Outcome = "no_image"
	OutcomeNoCandidates Outcome = "no_candidates"
	OutcomeAborted      Outcome = "aborted"
)

type CandidateStatus string

const (
	CandidateMatched               CandidateStatus = "matched"
	CandidateNotified              CandidateStatus = "notified"
	CandidateSkippedType           CandidateStatus = "skipped_type"
	CandidateSkippedParse          CandidateStatus = "skipped_parse"
	CandidateSkippedUnknown        CandidateStatus = "skipped_unknown"
	CandidateMatchFailed           CandidateStatus = "match_failed"
	CandidateRecipientUnresolvable CandidateStatus = "recipient_unresolvable"
	CandidateDeliveryFailed        CandidateStatus = "delivery_failed"
)

// Stored reports whether a match row exists for the candidate.
func (s CandidateStatus) Stored() bool {
	switch s {
	case CandidateMatched, CandidateNotified, CandidateRecipientUnresolvable, CandidateDeliveryFailed:
		return true
	}
	return false
}

type CandidateResult struct {
	Label    string
	PostID   int64
	Distance float64
	Status   CandidateStatus
	Err      error
}

func (r CandidateResult) with(status CandidateStatus, err error) CandidateResult {
	r.Status = status
	r.Err = err
	return r
}

// Report describes one match run.
type Report struct {
	PostID     int64
	PostType   models.PostType
	Outcome    Outcome
	Candidates []CandidateResult
	Err        error
}

// Matches counts the match rows stored by the run.
func (r *Report) Matches() int {
	n := 0
	for _, c := range r.Candidates {
		if c.Status.Stored() {
			n++
		}
	}
	return n
}

// Notified counts the notifications handed to the dispatcher.
func (r *Report) Notified() int {
	n := 0
	for _, c := range r.Candidates {
		if c.Status == CandidateNotified {
			n++
		}
	}
	return n
}

func (r *Report) abort(err error) (*Report, error) {
	r.Outcome = OutcomeAborted
	r.Err = err
	return r, err
}
