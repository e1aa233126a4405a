package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-advisor/internal/catalog"
	"github.com/spigell/job-advisor/internal/intent"
	"github.com/spigell/job-advisor/internal/logger"
	"github.com/spigell/job-advisor/internal/matching"
	"github.com/spigell/job-advisor/internal/profile"
	"github.com/spigell/job-advisor/internal/utils"
)

// ErrSessionEnded is returned for turns sent after the farewell.
var ErrSessionEnded = errors.New("session has ended")

// Classifier maps an utterance to an intent.
type Classifier interface {
	Classify(ctx context.Context, text string) (intent.Intent, error)
}

// Ranker orders jobs for a profile.
type Ranker interface {
	Rank(ctx context.Context, p profile.UserProfile, jobs []catalog.JobRecord) ([]matching.Result, error)
}

// Catalog lists the jobs on offer.
type Catalog interface {
	ListAll() []catalog.JobRecord
}

// Corrector fixes spelling in user input before it is classified.
type Corrector interface {
	Correct(text string) string
}

// Passthrough is a Corrector that returns its input unchanged.
type Passthrough struct{}

// Correct implements Corrector.
func (Passthrough) Correct(text string) string { return text }

// Deps are the collaborators of an Engine.
type Deps struct {
	Classifier Classifier
	Ranker     Ranker
	Catalog    Catalog
	// Corrector defaults to Passthrough.
	Corrector  Corrector
	Normalizer *profile.Normalizer
	// Show limits how many matches are listed; 0 lists all.
	Show   int
	Logger *zap.Logger
}

// turn is the working copy a transition mutates. It is committed only when the
// transition succeeds.
type turn struct {
	text    string
	intent  intent.Intent
	stage   Stage
	profile profile.UserProfile
	matches []matching.Result
}

type action func(ctx context.Context, t *turn) (string, error)

type transitionKey struct {
	stage  Stage
	intent intent.Intent
}

// anyStage matches every stage in the transition table.
const anyStage Stage = ""

// Engine applies user turns to sessions. It holds no per-session state.
type Engine struct {
	deps      Deps
	table     map[transitionKey]action
	fallbacks map[Stage]action
}

// NewEngine wires the transition table.
func NewEngine(deps Deps) (*Engine, error) {
	if deps.Classifier == nil || deps.Ranker == nil || deps.Catalog == nil {
		return nil, errors.New("dialogue engine requires a classifier, a ranker and a catalog")
	}
	if deps.Corrector == nil {
		deps.Corrector = Passthrough{}
	}
	if deps.Normalizer == nil {
		deps.Normalizer = profile.NewNormalizer(nil)
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	e := &Engine{deps: deps}
	e.table = map[transitionKey]action{
		{anyStage, intent.Exit}:                e.exit,
		{StageStart, intent.SeeJobs}:           e.listJobs,
		{StageStart, intent.Qualify}:           e.startElicitation,
		{StageChoice, intent.SeeJobs}:          e.listJobs,
		{StageChoice, intent.Qualify}:          e.startElicitation,
		{StageAfterMatches, intent.ShowDetail}: e.showTopDetail,
	}
	e.fallbacks = map[Stage]action{
		StageStart:            e.promptChoice,
		StageChoice:           e.promptChoice,
		StageAskQualification: e.storeQualification,
		StageAskSkills:        e.storeSkills,
		StageAskFields:        e.storeFields,
		StageAskSalary:        e.storeSalaryAndRank,
		StageAfterMatches:     e.reenterChoice,
	}

	return e, nil
}

// Handle processes one user utterance and returns the assistant reply. On error the
// session is left exactly as it was.
func (e *Engine) Handle(ctx context.Context, s *Session, utterance string) (string, error) {
	if s.Ended() {
		return "", ErrSessionEnded
	}

	log := logger.WithSession(e.deps.Logger, s.ID)
	text := e.deps.Corrector.Correct(utterance)

	in, err := e.deps.Classifier.Classify(ctx, text)
	if err != nil {
		return "", fmt.Errorf("classifying utterance: %w", err)
	}

	t := &turn{
		text:    strings.ToLower(strings.TrimSpace(text)),
		intent:  in,
		stage:   s.Stage,
		profile: s.Profile.Clone(),
		matches: s.LastMatches,
	}

	reply, err := e.dispatch(ctx, t)
	if err != nil {
		return "", err
	}

	log.Debug("turn handled",
		zap.String("text", utils.TruncateForLog(text, 80)),
		zap.String("intent", string(in)),
		zap.String("from", string(s.Stage)),
		zap.String("to", string(t.stage)),
	)

	s.Stage = t.stage
	s.Profile = t.profile
	s.LastMatches = t.matches
	s.History = append(s.History,
		Turn{Role: RoleUser, Content: text},
		Turn{Role: RoleAssistant, Content: reply},
	)

	return reply, nil
}

func (e *Engine) dispatch(ctx context.Context, t *turn) (string, error) {
	if act, ok := e.table[transitionKey{t.stage, t.intent}]; ok {
		return act(ctx, t)
	}
	if act, ok := e.table[transitionKey{anyStage, t.intent}]; ok {
		return act(ctx, t)
	}
	if act, ok := e.fallbacks[t.stage]; ok {
		return act(ctx, t)
	}
	return "", fmt.Errorf("no transition from stage %q", t.stage)
}

func (e *Engine) exit(_ context.Context, t *turn) (string, error) {
	t.stage = StageEnded
	return Farewell, nil
}

func (e *Engine) listJobs(_ context.Context, t *turn) (string, error) {
	t.stage = StageChoice
	return RenderJobs(e.deps.Catalog.ListAll()), nil
}

func (e *Engine) startElicitation(_ context.Context, t *turn) (string, error) {
	t.profile = profile.UserProfile{}
	t.stage = StageAskQualification
	return QualificationAsk, nil
}

// promptChoice leaves the stage unchanged.
func (e *Engine) promptChoice(_ context.Context, _ *turn) (string, error) {
	return ChoicePrompt, nil
}

func (e *Engine) storeQualification(_ context.Context, t *turn) (string, error) {
	t.profile.Qualification = e.deps.Normalizer.Qualification(t.text)
	t.stage = StageAskSkills
	return SkillsAsk, nil
}

func (e *Engine) storeSkills(_ context.Context, t *turn) (string, error) {
	t.profile.Skills = e.deps.Normalizer.List(t.text)
	t.stage = StageAskFields
	return FieldsAsk, nil
}

func (e *Engine) storeFields(_ context.Context, t *turn) (string, error) {
	t.profile.Fields = e.deps.Normalizer.List(t.text)
	t.stage = StageAskSalary
	return SalaryAsk, nil
}

func (e *Engine) storeSalaryAndRank(ctx context.Context, t *turn) (string, error) {
	t.profile.MinSalary = profile.ParseSalary(t.text)

	results, err := e.deps.Ranker.Rank(ctx, t.profile, e.deps.Catalog.ListAll())
	if err != nil {
		return "", fmt.Errorf("ranking jobs: %w", err)
	}

	t.matches = results
	t.stage = StageAfterMatches
	return RenderMatches(matching.Top(results, e.deps.Show)), nil
}

func (e *Engine) showTopDetail(_ context.Context, t *turn) (string, error) {
	t.stage = StageChoice
	if len(t.matches) == 0 {
		return NoTopJob, nil
	}
	return RenderDetail(t.matches[0].Job), nil
}

// reenterChoice handles anything but show_detail after matches as if it were typed at
// the choice stage.
func (e *Engine) reenterChoice(ctx context.Context, t *turn) (string, error) {
	t.stage = StageChoice
	return e.dispatch(ctx, t)
}
