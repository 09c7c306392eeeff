package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"frictionstudy/internal/cache"
	"frictionstudy/internal/catalog"
	"frictionstudy/internal/clock"
	"frictionstudy/internal/config"
	"frictionstudy/internal/model"
	"frictionstudy/internal/observability"
	"frictionstudy/internal/repository"
	"frictionstudy/internal/study"
)

// ConditionPicker assigns a condition to a new session
type ConditionPicker func() model.Condition

// RandomCondition picks uniformly among the assignable conditions
func RandomCondition() model.Condition {
	return model.Conditions[rand.Intn(len(model.Conditions))]
}

// DecisionInput is one Approve/Reject action. Justification, when set, is
// applied to the gate before the action is checked.
type DecisionInput struct {
	ItemID        int
	Decision      model.Decision
	Justification *string
}

// StudyService runs the phase handlers. Every method is one participant
// interaction: it locks the session, checks the phase the router assigns,
// mutates, persists and saves before the next interaction is accepted.
type StudyService struct {
	catalog       *catalog.Catalog
	sessions      cache.SessionStore
	sink          repository.Sink
	authSvc       *AuthService
	cfg           *config.Study
	policies      map[model.Condition]study.Policy
	clock         clock.Clock
	pickCondition ConditionPicker
	broadcaster   Broadcaster
	stats         cache.StatsCache

	timersMu sync.Mutex
	timers   map[string]clock.Timer
}

// NewStudyService creates a new study service
func NewStudyService(
	cat *catalog.Catalog,
	sessions cache.SessionStore,
	sink repository.Sink,
	authSvc *AuthService,
	cfg *config.Study,
) *StudyService {
	return &StudyService{
		catalog:       cat,
		sessions:      sessions,
		sink:          sink,
		authSvc:       authSvc,
		cfg:           cfg,
		policies:      study.NewPolicies(cfg.Policy),
		clock:         clock.Real(),
		pickCondition: RandomCondition,
		timers:        make(map[string]clock.Timer),
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *StudyService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetClock replaces the wall clock. Session tokens follow the same clock.
func (s *StudyService) SetClock(c clock.Clock) {
	s.clock = c
	s.authSvc.SetClock(c)
}

// SetConditionPicker replaces random assignment
func (s *StudyService) SetConditionPicker(p ConditionPicker) {
	s.pickCondition = p
}

func (s *StudyService) phase(session *model.Session) model.Phase {
	return study.Route(session.Progress, s.cfg.Phases)
}

func (s *StudyService) policyFor(session *model.Session) study.Policy {
	return s.policies[session.Condition]
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// Start creates a session with a fresh id and a random condition
func (s *StudyService) Start(ctx context.Context) (*model.StartSessionResponse, error) {
	now := s.clock.Now()
	first, _ := s.catalog.At(0)

	session := &model.Session{
		ID:          uuid.NewString(),
		Condition:   s.pickCondition(),
		Gate:        model.NewGateState(first.ID),
		ResponseLog: []model.LoggedDecision{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if !session.Condition.Valid() {
		return nil, fmt.Errorf("condition picker returned %q", session.Condition)
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	token, err := s.authSvc.IssueSessionToken(session.ID, now)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	observability.LoggerFromContext(ctx).Info("session started",
		"session_id", session.ID, "condition", session.Condition)
	s.count(ctx, statStarted, string(session.Condition))
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToMonitor(EventSessionStarted, map[string]interface{}{
			"sessionId": session.ID,
			"condition": session.Condition,
		})
	}

	return &model.StartSessionResponse{
		SessionID: session.ID,
		Condition: session.Condition,
		Token:     token,
		View:      s.view(session, now),
	}, nil
}

// View returns the session as the participant surface should render it
func (s *StudyService) View(ctx context.Context, sessionID string) (*model.SessionView, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return s.view(session, s.clock.Now()), nil
}

func (s *StudyService) view(session *model.Session, now time.Time) *model.SessionView {
	phase := s.phase(session)
	v := &model.SessionView{
		SessionID: session.ID,
		Condition: session.Condition,
		Phase:     phase,
	}
	switch phase {
	case model.PhaseGuidelines:
		v.Guidelines = s.cfg.Guidelines
	case model.PhaseDecisionLoop:
		v.Guidelines = s.cfg.Guidelines
		if item, ok := s.catalog.At(session.CurrentItemIndex); ok {
			v.Item = &model.ItemView{
				Item:   item,
				Number: session.CurrentItemIndex + 1,
				Total:  s.catalog.Len(),
				Gate:   s.policyFor(session).Describe(session.Gate, now),
			}
		}
	case model.PhaseSurvey, model.PhaseCompleted:
		v.ResponseLog = session.ResponseLog
	}
	return v
}

func (s *StudyService) requirePhase(session *model.Session, want model.Phase) error {
	current := s.phase(session)
	if current == model.PhaseCompleted {
		return ErrSessionCompleted
	}
	if current != want {
		return fmt.Errorf("%w: session is in %s", ErrWrongPhase, current)
	}
	return nil
}

// withSession runs fn as one interaction. The session is saved only when fn
// reports a change and returns no error.
func (s *StudyService) withSession(
	ctx context.Context,
	sessionID string,
	fn func(session *model.Session, now time.Time) (bool, error),
) (*model.Session, time.Time, error) {
	unlock, err := s.sessions.Lock(ctx, sessionID)
	if errors.Is(err, cache.ErrLocked) {
		return nil, time.Time{}, ErrSessionBusy
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("lock session: %w", err)
	}
	defer unlock()

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, time.Time{}, ErrSessionNotFound
	}

	before := s.phase(session)
	now := s.clock.Now()
	changed, err := fn(session, now)
	if err != nil {
		return nil, time.Time{}, err
	}
	if !changed {
		return session, now, nil
	}

	session.UpdatedAt = now
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, time.Time{}, fmt.Errorf("save session: %w", err)
	}

	if after := s.phase(session); after != before {
		observability.LoggerFromContext(ctx).Info("phase changed",
			"session_id", session.ID, "from", before, "to", after)
		if after == model.PhaseCompleted {
			s.count(ctx, statCompleted, string(session.Condition))
		}
		if s.broadcaster != nil {
			payload := map[string]interface{}{"sessionId": session.ID, "from": before, "to": after}
			s.broadcaster.BroadcastToSession(session.ID, EventPhaseChanged, payload)
			s.broadcaster.BroadcastToMonitor(EventPhaseChanged, payload)
		}
	}
	return session, now, nil
}

func (s *StudyService) persistenceFailed(ctx context.Context, session *model.Session, stream model.Stream, err error) error {
	observability.LoggerFromContext(ctx).Error("append failed",
		"session_id", session.ID, "stream", stream, "error", err)
	s.count(ctx, statFailed, string(stream))
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToMonitor(EventPersistenceFail, map[string]interface{}{
			"sessionId": session.ID,
			"stream":    stream,
			"error":     err.Error(),
		})
	}
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}

// Consent records the participant's agreement to take part
func (s *StudyService) Consent(ctx context.Context, sessionID string, consent bool) (*model.SessionView, error) {
	session, now, err := s.withSession(ctx, sessionID, func(session *model.Session, now time.Time) (bool, error) {
		if err := s.requirePhase(session, model.PhaseConsent); err != nil {
			return false, err
		}
		if !consent {
			return false, ErrConsentRequired
		}
		session.Progress.ConsentGiven = true
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(session, now), nil
}

// SubmitPrescreening validates and appends the demographic answers. The
// phase is only completed once the append succeeded.
func (s *StudyService) SubmitPrescreening(ctx context.Context, sessionID string, answers model.PrescreeningAnswers) (*model.SessionView, error) {
	session, now, err := s.withSession(ctx, sessionID, func(session *model.Session, now time.Time) (bool, error) {
		if err := s.requirePhase(session, model.PhasePrescreening); err != nil {
			return false, err
		}
		if err := s.cfg.Questionnaire.ValidatePrescreening(&answers); err != nil {
			return false, err
		}
		rec := model.PrescreeningRecord{
			SessionID: session.ID,
			Timestamp: timestamp(now),
			Condition: session.Condition,
			Answers:   answers,
		}
		if err := repository.AppendRecord(ctx, s.sink, rec); err != nil {
			return false, s.persistenceFailed(ctx, session, rec.Stream(), err)
		}
		session.Progress.PrescreeningComplete = true
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(session, now), nil
}

// AcknowledgeGuidelines marks the content policy as read
func (s *StudyService) AcknowledgeGuidelines(ctx context.Context, sessionID string) (*model.SessionView, error) {
	session, now, err := s.withSession(ctx, sessionID, func(session *model.Session, now time.Time) (bool, error) {
		if err := s.requirePhase(session, model.PhaseGuidelines); err != nil {
			return false, err
		}
		session.Progress.GuidelinesAcknowledged = true
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(session, now), nil
}

// Verify starts the verification delay for the current item (condition B)
func (s *StudyService) Verify(ctx context.Context, sessionID string) (*model.SessionView, error) {
	var (
		verifier     study.Verifier
		startedDelay bool
	)
	session, now, err := s.withSession(ctx, sessionID, func(session *model.Session, now time.Time) (bool, error) {
		if err := s.requirePhase(session, model.PhaseDecisionLoop); err != nil {
			return false, err
		}
		v, ok := s.policyFor(session).(study.Verifier)
		if !ok {
			return false, ErrActionUnsupported
		}
		verifier = v
		startedDelay = session.Gate.Verify == model.VerifyClosed || session.Gate.Verify == ""
		session.Gate = v.Verify(session.Gate, now)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	if readyAt, pending := verifier.ReadyAt(session.Gate); startedDelay && pending {
		observability.LoggerFromContext(ctx).Info("verification started",
			"session_id", session.ID, "item_id", session.Gate.ItemID, "ready_at", readyAt)
		s.scheduleVerifyNotice(session.ID, session.Gate.ItemID, readyAt.Sub(now))
	}
	return s.view(session, now), nil
}

func (s *StudyService) scheduleVerifyNotice(sessionID string, itemID int, d time.Duration) {
	if s.broadcaster == nil {
		return
	}
	notify := func() {
		s.broadcaster.BroadcastToSession(sessionID, EventVerifyComplete, map[string]interface{}{
			"itemId": itemID,
		})
	}
	if d <= 0 {
		notify()
		return
	}

	s.timersMu.Lock()
	defer s.timersMu.Unlock()

	if t, ok := s.timers[sessionID]; ok {
		t.Stop()
	}
	var timer clock.Timer
	timer = s.clock.AfterFunc(d, func() {
		s.timersMu.Lock()
		if s.timers[sessionID] == timer {
			delete(s.timers, sessionID)
		}
		s.timersMu.Unlock()
		notify()
	})
	s.timers[sessionID] = timer
}

func (s *StudyService) cancelVerifyNotice(sessionID string) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()

	if t, ok := s.timers[sessionID]; ok {
		t.Stop()
		delete(s.timers, sessionID)
	}
}

// Justify stores the justification draft for the current item (condition C)
func (s *StudyService) Justify(ctx context.Context, sessionID string, itemID int, text string) (*model.SessionView, error) {
	session, now, err := s.withSession(ctx, sessionID, func(session *model.Session, now time.Time) (bool, error) {
		if err := s.requirePhase(session, model.PhaseDecisionLoop); err != nil {
			return false, err
		}
		j, ok := s.policyFor(session).(study.Justifier)
		if !ok {
			return false, ErrActionUnsupported
		}
		gate, err := j.Justify(session.Gate, itemID, text)
		if err != nil {
			return false, err
		}
		session.Gate = gate
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(session, now), nil
}

// Decide records an Approve/Reject for the current item and advances the
// cursor. Acting again on an item that is already decided is a no-op.
func (s *StudyService) Decide(ctx context.Context, sessionID string, in DecisionInput) (*model.SessionView, error) {
	var (
		duplicate bool
		warning   string
	)
	session, now, err := s.withSession(ctx, sessionID, func(session *model.Session, now time.Time) (bool, error) {
		if session.Decided(in.ItemID) {
			duplicate = true
			return false, nil
		}
		if err := s.requirePhase(session, model.PhaseDecisionLoop); err != nil {
			return false, err
		}
		item, ok := s.catalog.At(session.CurrentItemIndex)
		if !ok {
			return false, fmt.Errorf("cursor %d is outside the catalog", session.CurrentItemIndex)
		}
		if in.ItemID != item.ID {
			return false, fmt.Errorf("%w: got item %d, current item is %d", study.ErrItemMismatch, in.ItemID, item.ID)
		}

		policy := s.policyFor(session)
		gate := session.Gate
		if in.Justification != nil {
			j, ok := policy.(study.Justifier)
			if !ok {
				return false, ErrActionUnsupported
			}
			var err error
			if gate, err = j.Justify(gate, item.ID, *in.Justification); err != nil {
				return false, err
			}
		}
		if !policy.Enabled(gate, now) {
			return false, ErrGateClosed
		}

		rec := model.ResponseRecord{
			SessionID:     session.ID,
			Timestamp:     timestamp(now),
			Condition:     session.Condition,
			ItemID:        item.ID,
			ItemText:      item.Text,
			AISuggestion:  item.AISuggestion,
			Decision:      in.Decision,
			Justification: policy.Capture(gate),
		}
		entry := model.LoggedDecision{
			ItemID:        item.ID,
			ItemText:      item.Text,
			AISuggestion:  item.AISuggestion,
			Decision:      in.Decision,
			Justification: rec.Justification,
			DecidedAt:     now,
			Persisted:     true,
		}
		if err := repository.AppendRecord(ctx, s.sink, rec); err != nil {
			failure := s.persistenceFailed(ctx, session, rec.Stream(), err)
			if s.cfg.ResponseFailure != config.FailureContinue {
				return false, failure
			}
			warning = failure.Error()
			entry.Persisted = false
		}

		session.ResponseLog = append(session.ResponseLog, entry)
		s.advance(session)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	v := s.view(session, now)
	v.Duplicate = duplicate
	v.Warning = warning
	if duplicate {
		return v, nil
	}

	s.cancelVerifyNotice(session.ID)
	s.count(ctx, statDecisions, string(session.Condition))
	last := session.ResponseLog[len(session.ResponseLog)-1]
	observability.LoggerFromContext(ctx).Info("decision recorded",
		"session_id", session.ID, "item_id", last.ItemID, "decision", last.Decision, "persisted", last.Persisted)
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToMonitor(EventDecisionSaved, map[string]interface{}{
			"sessionId": session.ID,
			"condition": session.Condition,
			"itemId":    last.ItemID,
			"decided":   session.CurrentItemIndex,
			"total":     s.catalog.Len(),
		})
	}
	return v, nil
}

// advance moves the cursor to the next item and resets its gate. Reaching
// the end of the catalog is the only way out of the decision loop.
func (s *StudyService) advance(session *model.Session) {
	session.CurrentItemIndex++
	if next, ok := s.catalog.At(session.CurrentItemIndex); ok {
		session.Gate = model.NewGateState(next.ID)
		return
	}
	session.Gate = model.GateState{}
	if session.CurrentItemIndex == s.catalog.Len() {
		session.Progress.AllItemsDecided = true
	}
}

// SubmitSurvey validates and appends the post-task answers
func (s *StudyService) SubmitSurvey(ctx context.Context, sessionID string, answers []int) (*model.SessionView, error) {
	session, now, err := s.withSession(ctx, sessionID, func(session *model.Session, now time.Time) (bool, error) {
		if err := s.requirePhase(session, model.PhaseSurvey); err != nil {
			return false, err
		}
		if err := s.cfg.Questionnaire.ValidateSurvey(answers); err != nil {
			return false, err
		}
		rec := model.SurveyRecord{
			SessionID: session.ID,
			Timestamp: timestamp(now),
			Condition: session.Condition,
			Answers:   answers,
		}
		if err := repository.AppendRecord(ctx, s.sink, rec); err != nil {
			return false, s.persistenceFailed(ctx, session, rec.Stream(), err)
		}
		session.Progress.SurveySubmitted = true
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(session, now), nil
}
