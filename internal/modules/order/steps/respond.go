package steps

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kbrou/chatorder-backend/internal/catalog"
	types "github.com/kbrou/chatorder-backend/internal/domain/order"
	"github.com/kbrou/chatorder-backend/internal/platform/logger"
	"github.com/kbrou/chatorder-backend/internal/platform/openai"
)

type RespondDeps struct {
	Log     *logger.Logger
	AI      openai.Client
	Catalog *catalog.Catalog
	Now     func() time.Time
}

const llmCallTimeout = 20 * time.Second

var validTransitions = map[types.ConversationStatus][]types.ConversationStatus{
	types.StatusCollecting:          {types.StatusCollecting, types.StatusConfirmationPending, types.StatusComplete},
	types.StatusConfirmationPending: {types.StatusCollecting, types.StatusConfirmationPending, types.StatusComplete},
	types.StatusComplete:            {types.StatusComplete},
}

func canTransition(from, to types.ConversationStatus) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Respond runs one customer turn end to end: aggregate signals, reconcile
// conflicts, check completion, classify the trigger, and produce the reply.
// Every turn produces a reply; any internal panic degrades to a conservative
// "ask for the next missing field" with the persisted state untouched.
func Respond(ctx context.Context, deps RespondDeps, in TurnInput) (out TurnOutput) {
	defer func() {
		if r := recover(); r != nil {
			deps.Log.Error("Turn processing panicked", "panic", fmt.Sprintf("%v", r))
			out = conservativeFallback(in)
		}
	}()

	if in.Status == "" {
		in.Status = types.StatusCollecting
	}

	if in.HasSnapshot || in.Status == types.StatusComplete {
		return TurnOutput{
			ReplyText: "Votre commande est déjà confirmée ✅. Un agent vous contacte pour la suite. Merci !",
			Source:    SourceDeterministic,
			Trigger:   TriggerResult{Triggered: false, Category: TriggerNone},
			Status:    types.StatusComplete,
			Fields:    in.Fields,
			Pending:   in.Pending,
			Checklist: BuildChecklist(in.Fields, in.Pending),
		}
	}

	agg := Aggregate(AggregateDeps{Log: deps.Log, Catalog: deps.Catalog, Now: deps.Now}, in)
	fields, pending := Reconcile(deps.Log, in.Fields, in.Pending, agg)

	status := in.Status
	var resolvedNote string

	// An open confirmation is resolved before anything else; unrelated field
	// progress from this turn has already been applied above.
	if status == types.StatusConfirmationPending && len(pending) > 0 {
		affirmed, parsed := parseConfirmation(in.MessageText)
		if !parsed {
			checklist := BuildChecklist(fields, pending)
			return TurnOutput{
				ReplyText: confirmationQuestion(pending[0]),
				Source:    SourceDeterministic,
				Trigger:   TriggerResult{Triggered: true, Category: TriggerConfirmation},
				Status:    types.StatusConfirmationPending,
				Fields:    fields,
				Pending:   pending,
				Checklist: checklist,
			}
		}
		p := pending[0]
		pending = pending[1:]
		if affirmed {
			fields = applyCandidate(fields, p)
			resolvedNote = fmt.Sprintf("C'est changé : %s pour %s. ", p.NewValue, FieldLabel(p.Field))
		} else {
			resolvedNote = fmt.Sprintf("D'accord, on garde %s. ", p.OldValue)
		}
		deps.Log.Info("Confirmation resolved",
			"field", string(p.Field),
			"affirmed", affirmed,
		)
		status = types.StatusCollecting
	}

	snapshot := DetectCompletion(CompleteDeps{Catalog: deps.Catalog, Now: deps.Now}, fields)
	trigger := ClassifyTrigger(fields, pending, agg, snapshot != nil)
	if resolvedNote != "" && trigger.Category != TriggerCompletion {
		trigger = TriggerResult{Triggered: true, Category: TriggerConfirmation}
	}

	if snapshot != nil {
		// Completion beats every other signal, including an open
		// confirmation: the collected values are the authoritative ones.
		pending = nil
		checklist := BuildChecklist(fields, pending)
		reply, source := completionReply(ctx, deps, snapshot)
		return TurnOutput{
			ReplyText: reply,
			Source:    source,
			Trigger:   trigger,
			Status:    nextStatus(deps, status, types.StatusComplete),
			Fields:    fields,
			Pending:   pending,
			Snapshot:  snapshot,
			Checklist: checklist,
		}
	}

	checklist := BuildChecklist(fields, pending)

	if trigger.Category == TriggerConfirmation && resolvedNote == "" {
		return TurnOutput{
			ReplyText: confirmationQuestion(pending[0]),
			Source:    SourceDeterministic,
			Trigger:   trigger,
			Status:    nextStatus(deps, status, types.StatusConfirmationPending),
			Fields:    fields,
			Pending:   pending,
			Checklist: checklist,
		}
	}

	next := nextStatus(deps, status, types.StatusCollecting)
	if len(pending) > 0 {
		next = nextStatus(deps, status, types.StatusConfirmationPending)
	}

	if trigger.Category == TriggerNone {
		reply, source := delegatedReply(ctx, deps, in.MessageText, checklist, fields)
		return TurnOutput{
			ReplyText: resolvedNote + reply,
			Source:    source,
			Trigger:   trigger,
			Status:    next,
			Fields:    fields,
			Pending:   pending,
			Checklist: checklist,
		}
	}

	return TurnOutput{
		ReplyText: resolvedNote + deterministicReply(trigger, fields),
		Source:    SourceDeterministic,
		Trigger:   trigger,
		Status:    next,
		Fields:    fields,
		Pending:   pending,
		Checklist: checklist,
	}
}

func nextStatus(deps RespondDeps, from, to types.ConversationStatus) types.ConversationStatus {
	if canTransition(from, to) {
		return to
	}
	deps.Log.Warn("Rejected status transition", "from", string(from), "to", string(to))
	return from
}

func conservativeFallback(in TurnInput) TurnOutput {
	fields := in.Fields
	return TurnOutput{
		ReplyText: nextFieldPrompt(fields),
		Source:    SourceFallback,
		Trigger:   TriggerResult{Triggered: false, Category: TriggerNone},
		Status:    in.Status,
		Fields:    fields,
		Pending:   in.Pending,
		Checklist: BuildChecklist(fields, in.Pending),
	}
}

func applyCandidate(fields types.OrderFields, p types.PendingConfirmation) types.OrderFields {
	switch {
	case p.CandidateZone != nil:
		fields.Zone = *p.CandidateZone
	case p.CandidatePhone != nil:
		fields.Phone = *p.CandidatePhone
	case p.CandidatePayment != nil:
		fields.Payment = *p.CandidatePayment
	}
	return fields
}

var affirmWords = []string{"oui", "ok", "okay", "d'accord", "daccord", "exact", "correct", "confirme", "yes", "c'est ca", "bien sur", "volontiers"}
var denyWords = []string{"non", "no", "pas du tout", "garde", "annule", "c'est faux", "laisse"}

// parseConfirmation reads a yes/no answer from free text. Accent and case
// folding means "Oui", "OUI" and "d'accord" all count.
func parseConfirmation(text string) (affirmed bool, parsed bool) {
	folded := " " + catalog.Fold(text) + " "
	for _, w := range denyWords {
		if strings.Contains(folded, " "+w+" ") {
			return false, true
		}
	}
	for _, w := range affirmWords {
		if strings.Contains(folded, " "+w+" ") {
			return true, true
		}
	}
	return false, false
}

func confirmationQuestion(p types.PendingConfirmation) string {
	return fmt.Sprintf(
		"Vous aviez indiqué %s pour %s. Faut-il remplacer par %s ? Répondez oui ou non.",
		p.OldValue, FieldLabel(p.Field), p.NewValue,
	)
}

func completionReply(ctx context.Context, deps RespondDeps, snapshot *SnapshotData) (string, ReplySource) {
	fallback := deterministicRecap(snapshot)
	if deps.AI == nil {
		return fallback, SourceFallback
	}
	callCtx, cancel := context.WithTimeout(ctx, llmCallTimeout)
	defer cancel()

	system, user := promptCompletionRecap(snapshotJSON(snapshot))
	reply, err := deps.AI.GenerateText(callCtx, system, user)
	if err != nil || strings.TrimSpace(reply) == "" {
		deps.Log.Warn("Completion recap fell back to template", "error", fmt.Sprintf("%v", err))
		return fallback, SourceFallback
	}
	return reply, SourceLLM
}

func delegatedReply(ctx context.Context, deps RespondDeps, messageText string, checklist Checklist, fields types.OrderFields) (string, ReplySource) {
	fallback := nextFieldPrompt(fields)
	if deps.AI == nil {
		return fallback, SourceFallback
	}
	callCtx, cancel := context.WithTimeout(ctx, llmCallTimeout)
	defer cancel()

	system, user := promptGuide(messageText, checklist)
	reply, err := deps.AI.GenerateText(callCtx, system, user)
	if err != nil || strings.TrimSpace(reply) == "" {
		deps.Log.Warn("Delegated reply fell back to template", "error", fmt.Sprintf("%v", err))
		return fallback, SourceFallback
	}
	return reply, SourceLLM
}
