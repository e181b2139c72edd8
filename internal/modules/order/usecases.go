package order

import (
	"context"
	"time"

	"github.com/kbrou/chatorder-backend/internal/catalog"
	"github.com/kbrou/chatorder-backend/internal/modules/order/steps"
	"github.com/kbrou/chatorder-backend/internal/platform/logger"
	"github.com/kbrou/chatorder-backend/internal/platform/openai"
)

type UsecasesDeps struct {
	Log     *logger.Logger
	AI      openai.Client
	Catalog *catalog.Catalog

	// Now is injectable so delivery-day estimates are testable.
	Now func() time.Time
}

type Usecases struct {
	deps UsecasesDeps
}

func New(deps UsecasesDeps) Usecases {
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now() }
	}
	return Usecases{deps: deps}
}

// ProcessTurn runs the order state machine for one inbound customer turn.
// It is pure with respect to storage: the caller rehydrates TurnInput and
// persists TurnOutput.
func (u Usecases) ProcessTurn(ctx context.Context, in steps.TurnInput) steps.TurnOutput {
	return steps.Respond(ctx, steps.RespondDeps{
		Log:     u.deps.Log,
		AI:      u.deps.AI,
		Catalog: u.deps.Catalog,
		Now:     u.deps.Now,
	}, in)
}
