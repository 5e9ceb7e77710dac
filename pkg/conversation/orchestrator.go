package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"roboto-sai-be/internal/constant"
	"roboto-sai-be/internal/entity"
	"roboto-sai-be/internal/pkg/logger"
	"roboto-sai-be/internal/repository/contract"
	"roboto-sai-be/pkg/emotion"
	"roboto-sai-be/pkg/llm"
	"roboto-sai-be/pkg/store"
)

const module = "Orchestrator"

// EmotionAnnotator tags a text with an emotion. The cursor is passed in and
// returned explicitly.
type EmotionAnnotator interface {
	Annotate(text string, prior emotion.Label) (*emotion.Descriptor, emotion.Label)
}

// ModelInvoker never fails; errors come back as Result{Success: false}.
type ModelInvoker interface {
	Invoke(ctx context.Context, history []entity.Turn, emotionHint, displayName, previousResponseID string, opts ...llm.Option) llm.Result
}

// SessionState keeps the chaining token and emotion cursor between turns.
type SessionState interface {
	Get(id string) (*store.Session, bool)
	Save(session *store.Session)
	Delete(id string)
}

type TurnInput struct {
	Key             entity.SessionKey
	Message         string
	ReasoningEffort string
	DisplayName     string
	// Overrides the token remembered for the session when set.
	PreviousResponseID string
}

type EmotionPair struct {
	User      *emotion.Descriptor
	Assistant *emotion.Descriptor
}

type Metadata struct {
	TraceID            *string
	ResponseID         *string
	TokensUsed         *int
	Mode               string
	EncryptedThinking  *string
	UserMessageID      *string
	AssistantMessageID *string
	Emotion            EmotionPair
	// Turns loaded before the new user turn was added.
	HistoryLength    int
	MemoryIntegrated bool
	Elapsed          float64
}

type Orchestrator struct {
	store     contract.MessageStore
	annotator EmotionAnnotator
	invoker   ModelInvoker
	sessions  SessionState
	logger    logger.ILogger

	defaultEffort string
}

func NewOrchestrator(
	messageStore contract.MessageStore,
	annotator EmotionAnnotator,
	invoker ModelInvoker,
	sessions SessionState,
	log logger.ILogger,
) *Orchestrator {
	return &Orchestrator{
		store:     messageStore,
		annotator: annotator,
		invoker:   invoker,
		sessions:  sessions,
		logger:    log,
	}
}

// SetDefaultReasoningEffort sets the effort used when a turn names none.
// Empty leaves the parameter off the model call, since not every model
// accepts it.
func (o *Orchestrator) SetDefaultReasoningEffort(effort string) {
	o.defaultEffort = effort
}

// RunTurn executes one chat turn. Only a model failure changes the reply;
// emotion and persistence failures just leave their metadata empty.
func (o *Orchestrator) RunTurn(ctx context.Context, in TurnInput) (string, Metadata) {
	start := time.Now()
	key := entity.NewSessionKey(in.Key.UserID, in.Key.SessionID)
	session := o.loadSession(key)

	// load_history
	history := o.store.Load(ctx, key)
	meta := Metadata{HistoryLength: len(history), MemoryIntegrated: true}

	// annotate_user_emotion
	userEmotion, cursor := o.annotate(in.Message, emotion.Label(session.Emotion))
	userTurn := entity.Turn{
		Role:      constant.TurnRoleUser,
		Content:   in.Message,
		CreatedAt: start,
	}
	applyEmotion(&userTurn, userEmotion)

	// invoke_model
	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		displayName = constant.DefaultDisplayName
	}
	previous := in.PreviousResponseID
	if previous == "" {
		previous = session.LastResponseID
	}
	effort := in.ReasoningEffort
	if effort == "" {
		effort = o.defaultEffort
	}

	transcript := make([]entity.Turn, 0, len(history)+1)
	transcript = append(transcript, history...)
	transcript = append(transcript, userTurn)

	hint := ""
	if userEmotion != nil {
		hint = userEmotion.Text
	}

	var opts []llm.Option
	if effort != "" {
		opts = append(opts, llm.WithReasoningEffort(effort))
	}
	result := o.invoker.Invoke(ctx, transcript, hint, displayName, previous, opts...)

	reply := result.Response
	if result.Success {
		meta.Mode = constant.ModeEntangled
		meta.TraceID = result.ResponseID
		meta.ResponseID = result.ResponseID
		meta.TokensUsed = result.TokensUsed
		meta.EncryptedThinking = result.EncryptedThinking
		if result.ResponseID != nil {
			session.LastResponseID = *result.ResponseID
		}
	} else {
		o.logger.Warn(module, "Model unavailable, using offline reply", map[string]interface{}{
			"session": key.String(),
			"error":   result.Error,
		})
		reply = constant.OfflineNotice
		meta.Mode = constant.ModeDemo
	}

	// annotate_assistant_emotion
	assistantEmotion, cursor := o.annotate(reply, cursor)
	assistantTurn := entity.Turn{
		Role:      constant.TurnRoleAssistant,
		Content:   reply,
		CreatedAt: time.Now(),
	}
	applyEmotion(&assistantTurn, assistantEmotion)
	meta.Emotion = EmotionPair{User: userEmotion, Assistant: assistantEmotion}

	// persist_both_turns
	meta.UserMessageID = o.store.Append(ctx, key, userTurn)
	meta.AssistantMessageID = o.store.Append(ctx, key, assistantTurn)

	session.Emotion = string(cursor)
	session.Mode = meta.Mode
	session.LastInteraction = time.Now()
	if o.sessions != nil {
		o.sessions.Save(session)
	}

	meta.Elapsed = time.Since(start).Seconds()
	o.logger.Info(module, "Turn completed", map[string]interface{}{
		"session":        key.String(),
		"mode":           meta.Mode,
		"history_length": meta.HistoryLength,
		"elapsed":        meta.Elapsed,
		"store":          o.store.Kind(),
	})
	return reply, meta
}

// Reset forgets the chaining token and emotion cursor of a session so the
// next turn starts a fresh model conversation.
func (o *Orchestrator) Reset(key entity.SessionKey) {
	if o.sessions == nil {
		return
	}
	key = entity.NewSessionKey(key.UserID, key.SessionID)
	o.sessions.Delete(key.String())
}

func (o *Orchestrator) loadSession(key entity.SessionKey) *store.Session {
	id := key.String()
	if o.sessions != nil {
		if s, ok := o.sessions.Get(id); ok && s != nil {
			cp := *s
			return &cp
		}
	}
	return &store.Session{ID: id, UserID: key.UserID}
}

// annotate converts annotator panics into a missing descriptor and leaves
// the cursor where it was.
func (o *Orchestrator) annotate(text string, prior emotion.Label) (d *emotion.Descriptor, next emotion.Label) {
	next = prior
	if o.annotator == nil {
		return nil, prior
	}
	defer func() {
		if r := recover(); r != nil {
			o.logger.Warn(module, "Emotion annotation failed", map[string]interface{}{
				"error": fmt.Sprint(r),
			})
			d, next = nil, prior
		}
	}()
	d, next = o.annotator.Annotate(text, prior)
	if d == nil {
		next = prior
	}
	return d, next
}

func applyEmotion(turn *entity.Turn, d *emotion.Descriptor) {
	if d == nil {
		return
	}
	label := string(d.Emotion)
	text := d.Text
	turn.Emotion = &label
	turn.EmotionText = &text
	turn.EmotionProbabilities = d.Probabilities
}
