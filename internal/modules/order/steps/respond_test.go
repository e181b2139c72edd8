package steps

import (
	"context"
	"strings"
	"testing"

	types "github.com/kbrou/chatorder-backend/internal/domain/order"
)

func respondDeps(t *testing.T, ai *fakeAI) RespondDeps {
	t.Helper()
	return RespondDeps{Log: testLogger(t), AI: ai, Catalog: testCatalog(t), Now: fixedNow}
}

// Four turns, in the usual order: photo, payment screenshot, zone, phone.
// The fourth turn completes the order with a single snapshot.
func TestRespondEndToEnd(t *testing.T) {
	ai := &fakeAI{text: "Merci, votre commande est confirmée !"}
	deps := respondDeps(t, ai)
	ctx := context.Background()

	out := Respond(ctx, deps, TurnInput{
		Vision: &VisionSignal{Description: "shoe, footwear, sneakers", Confidence: 0.9},
		Status: types.StatusCollecting,
	})
	if out.Trigger.Category != TriggerPhoto || !out.Fields.Photo.Collected {
		t.Fatalf("turn 1: %+v", out.Trigger)
	}
	if out.Source != SourceDeterministic {
		t.Fatalf("turn 1: expected deterministic reply, got %q", out.Source)
	}

	out = Respond(ctx, deps, TurnInput{
		Vision: &VisionSignal{Description: "screenshot, text, font"},
		OCR:    &OCRSignal{Amount: intp(2000), Currency: "XOF", Recipient: "0707070707", Valid: true},
		Status: out.Status,
		Fields: out.Fields,
	})
	if out.Trigger.Category != TriggerPayment || out.Fields.Payment.Amount != 2000 {
		t.Fatalf("turn 2: %+v %+v", out.Trigger, out.Fields.Payment)
	}

	out = Respond(ctx, deps, TurnInput{
		MessageText: "je suis à Cocody",
		Status:      out.Status,
		Fields:      out.Fields,
	})
	if out.Trigger.Category != TriggerZone || out.Fields.Zone.Cost != 1500 {
		t.Fatalf("turn 3: %+v %+v", out.Trigger, out.Fields.Zone)
	}
	if !strings.Contains(out.ReplyText, "1500") {
		t.Fatalf("turn 3 reply must state the cost: %q", out.ReplyText)
	}

	out = Respond(ctx, deps, TurnInput{
		MessageText: "0787360757",
		Status:      out.Status,
		Fields:      out.Fields,
	})
	if out.Trigger.Category != TriggerCompletion {
		t.Fatalf("turn 4: expected completion, got %+v", out.Trigger)
	}
	if out.Status != types.StatusComplete {
		t.Fatalf("turn 4: expected COMPLETE, got %q", out.Status)
	}
	if out.Snapshot == nil || out.Snapshot.Phone != "0787360757" || out.Snapshot.Amount != 2000 || out.Snapshot.ZoneName != "Cocody" {
		t.Fatalf("turn 4: snapshot mismatch: %+v", out.Snapshot)
	}
	if out.Source != SourceLLM || ai.calls == 0 {
		t.Fatalf("turn 4: expected LLM recap, got %q (%d calls)", out.Source, ai.calls)
	}
}

func TestRespondCompletionFallsBackWhenLLMFails(t *testing.T) {
	deps := respondDeps(t, &fakeAI{err: errAIDown})

	fields := completeFields()
	fields.Phone = types.PhoneField{}
	out := Respond(context.Background(), deps, TurnInput{
		MessageText: "0787360757",
		Status:      types.StatusCollecting,
		Fields:      fields,
	})
	if out.Trigger.Category != TriggerCompletion || out.Snapshot == nil {
		t.Fatalf("expected completion, got %+v", out.Trigger)
	}
	if out.Source != SourceFallback {
		t.Fatalf("expected fallback recap, got %q", out.Source)
	}
	for _, want := range []string{"chaussures", "2000", "Cocody", "0787360757"} {
		if !strings.Contains(out.ReplyText, want) {
			t.Fatalf("fallback recap missing %q:\n%s", want, out.ReplyText)
		}
	}
}

func TestRespondDelegatesWithChecklist(t *testing.T) {
	ai := &fakeAI{text: "Bonjour ! Envoyez-moi la photo de l'article."}
	out := Respond(context.Background(), respondDeps(t, ai), TurnInput{
		MessageText: "bonjour, vous vendez quoi ?",
		Status:      types.StatusCollecting,
	})
	if out.Trigger.Category != TriggerNone || out.Source != SourceLLM {
		t.Fatalf("expected LLM delegation, got %+v %q", out.Trigger, out.Source)
	}
	if out.Checklist.Machine == "" || out.Checklist.Human == "" {
		t.Fatalf("checklist must accompany every delegated turn")
	}
}

func TestRespondNeverLeavesCustomerWithoutReply(t *testing.T) {
	out := Respond(context.Background(), respondDeps(t, &fakeAI{err: errAIDown}), TurnInput{
		MessageText: "bonjour",
		Status:      types.StatusCollecting,
	})
	if out.Source != SourceFallback || strings.TrimSpace(out.ReplyText) == "" {
		t.Fatalf("expected deterministic fallback reply, got %q (%q)", out.ReplyText, out.Source)
	}
	if !strings.Contains(out.ReplyText, "photo") {
		t.Fatalf("fallback must ask for the next missing field: %q", out.ReplyText)
	}
}

func TestRespondConflictAndResolution(t *testing.T) {
	deps := respondDeps(t, &fakeAI{text: "ok"})
	ctx := context.Background()

	fields := types.OrderFields{Zone: collectedZone("Cocody", 1500)}
	out := Respond(ctx, deps, TurnInput{
		MessageText: "finalement je suis à Yopougon",
		Status:      types.StatusCollecting,
		Fields:      fields,
	})
	if out.Trigger.Category != TriggerConfirmation || out.Status != types.StatusConfirmationPending {
		t.Fatalf("expected confirmation request, got %+v %q", out.Trigger, out.Status)
	}
	if out.Fields.Zone.Name != "Cocody" {
		t.Fatalf("zone must stay Cocody until confirmed: %+v", out.Fields.Zone)
	}
	for _, want := range []string{"Cocody", "Yopougon", "oui ou non"} {
		if !strings.Contains(out.ReplyText, want) {
			t.Fatalf("confirmation question missing %q: %q", want, out.ReplyText)
		}
	}

	// Customer affirms: the new zone applies and collection resumes.
	affirmed := Respond(ctx, deps, TurnInput{
		MessageText: "oui",
		Status:      out.Status,
		Fields:      out.Fields,
		Pending:     out.Pending,
	})
	if affirmed.Fields.Zone.Name != "Yopougon" {
		t.Fatalf("affirmation must apply the candidate: %+v", affirmed.Fields.Zone)
	}
	if affirmed.Status != types.StatusCollecting || len(affirmed.Pending) != 0 {
		t.Fatalf("expected collection to resume, got %q %+v", affirmed.Status, affirmed.Pending)
	}

	// Customer denies: the old zone stays.
	denied := Respond(ctx, deps, TurnInput{
		MessageText: "non non",
		Status:      out.Status,
		Fields:      out.Fields,
		Pending:     out.Pending,
	})
	if denied.Fields.Zone.Name != "Cocody" || len(denied.Pending) != 0 {
		t.Fatalf("denial must keep the old value: %+v %+v", denied.Fields.Zone, denied.Pending)
	}

	// An unparseable answer re-asks the same question.
	reasked := Respond(ctx, deps, TurnInput{
		MessageText: "euh je sais pas trop",
		Status:      out.Status,
		Fields:      out.Fields,
		Pending:     out.Pending,
	})
	if reasked.Status != types.StatusConfirmationPending || len(reasked.Pending) != 1 {
		t.Fatalf("unparseable answer must keep the confirmation open: %q %+v", reasked.Status, reasked.Pending)
	}
	if !strings.Contains(reasked.ReplyText, "oui ou non") {
		t.Fatalf("expected the question again: %q", reasked.ReplyText)
	}
}

func TestRespondUnrelatedFieldsProgressDuringConfirmation(t *testing.T) {
	deps := respondDeps(t, &fakeAI{text: "ok"})

	pending := []types.PendingConfirmation{{
		Field: types.FieldZone, OldValue: "Cocody", NewValue: "Yopougon",
		CandidateZone: &types.ZoneField{Collected: true, Valid: true, Name: "Yopougon", Cost: 1500, Category: types.ZoneLocal},
	}}
	out := Respond(context.Background(), deps, TurnInput{
		MessageText: "0787360757",
		Status:      types.StatusConfirmationPending,
		Fields:      types.OrderFields{Zone: collectedZone("Cocody", 1500)},
		Pending:     pending,
	})
	// The phone is recorded even though the zone question is still open.
	if !out.Fields.Phone.Collected || out.Fields.Phone.Number != "0787360757" {
		t.Fatalf("unrelated field must progress: %+v", out.Fields.Phone)
	}
	if out.Status != types.StatusConfirmationPending || len(out.Pending) != 1 {
		t.Fatalf("confirmation must stay open: %q %+v", out.Status, out.Pending)
	}
}

func TestRespondPostCompletionTurn(t *testing.T) {
	out := Respond(context.Background(), respondDeps(t, &fakeAI{text: "ok"}), TurnInput{
		MessageText: "merci !",
		Status:      types.StatusComplete,
		Fields:      completeFields(),
		HasSnapshot: true,
	})
	if out.Status != types.StatusComplete || out.Snapshot != nil {
		t.Fatalf("post-completion turns must not mint a new snapshot: %q %+v", out.Status, out.Snapshot)
	}
	if strings.TrimSpace(out.ReplyText) == "" {
		t.Fatalf("post-completion turn still needs a reply")
	}
}

func TestRespondPanicDegradesToFallback(t *testing.T) {
	// A nil catalog makes aggregation panic; the turn must still reply.
	deps := RespondDeps{Log: testLogger(t), AI: &fakeAI{text: "ok"}, Catalog: nil, Now: fixedNow}
	out := Respond(context.Background(), deps, TurnInput{
		MessageText: "je suis à Cocody",
		Status:      types.StatusCollecting,
	})
	if out.Source != SourceFallback || strings.TrimSpace(out.ReplyText) == "" {
		t.Fatalf("panic must degrade to a fallback reply, got %q (%q)", out.ReplyText, out.Source)
	}
	if out.Status != types.StatusCollecting {
		t.Fatalf("state must be untouched after a panic: %q", out.Status)
	}
}
