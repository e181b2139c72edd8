package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/kbrou/chatorder-backend/internal/clients/twilio"
	"github.com/kbrou/chatorder-backend/internal/data/dbctx"
	"github.com/kbrou/chatorder-backend/internal/data/repos"
	types "github.com/kbrou/chatorder-backend/internal/domain/order"
	ordermod "github.com/kbrou/chatorder-backend/internal/modules/order"
	"github.com/kbrou/chatorder-backend/internal/modules/order/steps"
	"github.com/kbrou/chatorder-backend/internal/platform/apperr"
	"github.com/kbrou/chatorder-backend/internal/platform/logger"
	"github.com/kbrou/chatorder-backend/internal/platform/redisx"
)

// InboundMessage is one normalized webhook delivery.
type InboundMessage struct {
	From             string
	To               string
	Body             string
	MessageSID       string
	MediaURL         string
	MediaContentType string
}

// ConversationDetail is the admin read view of one conversation.
type ConversationDetail struct {
	Conversation *types.Conversation          `json:"conversation"`
	State        *types.ConversationState     `json:"state,omitempty"`
	Messages     []*types.ConversationMessage `json:"messages"`
	Snapshot     *types.OrderSnapshot         `json:"snapshot,omitempty"`
}

type ConversationService interface {
	// HandleInbound runs one customer turn: rehydrate, process, persist,
	// send the reply. It always produces a reply for a known conversation.
	HandleInbound(ctx context.Context, in InboundMessage) (string, error)

	ListConversations(ctx context.Context, limit int) ([]*types.Conversation, error)
	GetConversation(ctx context.Context, conversationID uuid.UUID) (*ConversationDetail, error)
	ListOrders(ctx context.Context, limit int) ([]*types.OrderSnapshot, error)
}

type conversationService struct {
	db  *gorm.DB
	log *logger.Logger

	conversations repos.ConversationRepo
	messages      repos.MessageRepo
	states        repos.StateRepo
	snapshots     repos.SnapshotRepo

	cache   redisx.StateCache
	signals SignalExtractionService
	orders  ordermod.Usecases
	twilio  twilio.Client
}

// NewConversationService wires the inbound turn pipeline. cache may be nil
// (Postgres-only rehydration); signals may be nil when no media providers are
// configured.
func NewConversationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	conversations repos.ConversationRepo,
	messages repos.MessageRepo,
	states repos.StateRepo,
	snapshots repos.SnapshotRepo,
	cache redisx.StateCache,
	signals SignalExtractionService,
	orders ordermod.Usecases,
	tw twilio.Client,
) (ConversationService, error) {
	if db == nil || baseLog == nil || conversations == nil || messages == nil || states == nil || snapshots == nil || tw == nil {
		return nil, fmt.Errorf("conversation service: missing deps")
	}
	return &conversationService{
		db:            db,
		log:           baseLog.With("service", "ConversationService"),
		conversations: conversations,
		messages:      messages,
		states:        states,
		snapshots:     snapshots,
		cache:         cache,
		signals:       signals,
		orders:        orders,
		twilio:        tw,
	}, nil
}

func (s *conversationService) HandleInbound(ctx context.Context, in InboundMessage) (string, error) {
	dbc := dbctx.Context{Ctx: ctx}

	conv, err := s.conversations.GetOrCreateByAddr(dbc, in.From, channelFromAddr(in.From))
	if err != nil {
		return "", fmt.Errorf("get or create conversation: %w", err)
	}

	state, err := s.rehydrate(ctx, conv.ID)
	if err != nil {
		return "", err
	}

	turnIn, archiveURI := s.buildTurnInput(ctx, conv.ID, state, in)
	out := s.orders.ProcessTurn(ctx, turnIn)

	// The cached copy is dropped before the write so a crash mid-persist
	// leaves a cache miss, never a stale hit.
	s.invalidateCache(ctx, conv.ID)

	if err := s.persistTurn(ctx, conv, state, in, out, archiveURI); err != nil {
		return "", err
	}

	s.refreshCache(ctx, conv.ID, state)

	if _, err := s.twilio.SendReply(ctx, in.From, out.ReplyText); err != nil {
		// The turn is already persisted; delivery failure is logged, not fatal.
		s.log.Error("Reply delivery failed", "conversation_id", conv.ID.String(), "error", err.Error())
	}

	s.log.Info("Turn processed",
		"conversation_id", conv.ID.String(),
		"trigger", string(out.Trigger.Category),
		"source", string(out.Source),
		"status", string(out.Status),
	)
	return out.ReplyText, nil
}

// rehydrate loads the conversation state, Redis first, Postgres on miss.
func (s *conversationService) rehydrate(ctx context.Context, conversationID uuid.UUID) (*types.ConversationState, error) {
	if s.cache != nil {
		var cached types.ConversationState
		if hit, err := s.cache.Get(ctx, conversationID, &cached); err == nil && hit && cached.ConversationID == conversationID {
			return &cached, nil
		}
	}

	dbc := dbctx.Context{Ctx: ctx}
	if err := s.states.Ensure(dbc, conversationID); err != nil {
		return nil, fmt.Errorf("ensure state: %w", err)
	}
	state, err := s.states.GetByConversationID(dbc, conversationID)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if state == nil {
		return nil, fmt.Errorf("state row missing after ensure")
	}
	return state, nil
}

func (s *conversationService) buildTurnInput(ctx context.Context, conversationID uuid.UUID, state *types.ConversationState, in InboundMessage) (steps.TurnInput, string) {
	fields, err := state.DecodeFields()
	if err != nil {
		// Treat a corrupt state blob as "nothing collected yet"; the customer
		// re-answers instead of seeing an error.
		s.log.Error("Corrupt fields blob", "conversation_id", conversationID.String(), "error", err.Error())
		fields = types.OrderFields{}
	}
	pending, err := state.DecodePending()
	if err != nil {
		s.log.Error("Corrupt pending blob", "conversation_id", conversationID.String(), "error", err.Error())
		pending = nil
	}

	turnIn := steps.TurnInput{
		MessageText: in.Body,
		Status:      types.ConversationStatus(state.Status),
		Fields:      fields,
		Pending:     pending,
		HasSnapshot: state.SnapshotID != nil,
	}

	var archiveURI string
	if in.MediaURL != "" && s.signals != nil {
		extracted, err := s.signals.Extract(ctx, conversationID, in.MediaURL, in.MediaContentType)
		if err != nil {
			s.log.Warn("Signal extraction failed", "conversation_id", conversationID.String(), "error", err.Error())
		} else if extracted != nil {
			turnIn.Vision = extracted.Vision
			turnIn.OCR = extracted.OCR
			archiveURI = extracted.ArchiveURI
		}
	}
	return turnIn, archiveURI
}

// persistTurn writes the state row, both messages, and the snapshot (when
// the turn completed the order) in one transaction, so a crash mid-turn never
// leaves a half-applied turn.
func (s *conversationService) persistTurn(ctx context.Context, conv *types.Conversation, state *types.ConversationState, in InboundMessage, out steps.TurnOutput, archiveURI string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		if out.Snapshot != nil {
			row := &types.OrderSnapshot{
				ConversationID:   conv.ID,
				PhotoDescription: out.Snapshot.PhotoDescription,
				ProductName:      out.Snapshot.ProductName,
				Amount:           out.Snapshot.Amount,
				Currency:         out.Snapshot.Currency,
				ZoneName:         out.Snapshot.ZoneName,
				ZoneCost:         out.Snapshot.ZoneCost,
				ZoneCategory:     string(out.Snapshot.ZoneCategory),
				Phone:            out.Snapshot.Phone,
				DeliveryEstimate: out.Snapshot.DeliveryEstimate,
			}
			created, err := s.snapshots.Create(dbc, row)
			if err != nil {
				return fmt.Errorf("create snapshot: %w", err)
			}
			if created != nil {
				state.SnapshotID = &created.ID
			}
		}

		state.Status = string(out.Status)
		if err := state.SetFields(out.Fields); err != nil {
			return fmt.Errorf("encode fields: %w", err)
		}
		if err := state.SetPending(out.Pending); err != nil {
			return fmt.Errorf("encode pending: %w", err)
		}
		if err := s.states.Save(dbc, state); err != nil {
			return fmt.Errorf("save state: %w", err)
		}

		now := time.Now().UTC()
		inboundMeta := map[string]any{"message_sid": in.MessageSID}
		if archiveURI != "" {
			inboundMeta["archive_uri"] = archiveURI
		}
		outboundMeta := map[string]any{"checklist": json.RawMessage(out.Checklist.Machine)}

		mediaCount := 0
		if in.MediaURL != "" {
			mediaCount = 1
		}
		msgs := []*types.ConversationMessage{
			{
				ConversationID: conv.ID,
				Direction:      "inbound",
				Body:           in.Body,
				MediaCount:     mediaCount,
				Metadata:       mustJSON(inboundMeta),
			},
			{
				ConversationID:  conv.ID,
				Direction:       "outbound",
				Body:            out.ReplyText,
				ReplySource:     string(out.Source),
				TriggerCategory: string(out.Trigger.Category),
				Metadata:        mustJSON(outboundMeta),
			},
		}
		if _, err := s.messages.Create(dbc, msgs); err != nil {
			return fmt.Errorf("record messages: %w", err)
		}

		if err := s.conversations.TouchLastMessage(dbc, conv.ID, now); err != nil {
			return fmt.Errorf("touch conversation: %w", err)
		}
		if conv.Status != string(out.Status) {
			if err := s.conversations.UpdateStatus(dbc, conv.ID, out.Status); err != nil {
				return fmt.Errorf("update conversation status: %w", err)
			}
		}
		return nil
	})
}

func (s *conversationService) invalidateCache(ctx context.Context, conversationID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, conversationID); err != nil {
		s.log.Warn("State cache invalidate failed", "conversation_id", conversationID.String(), "error", err.Error())
	}
}

func (s *conversationService) refreshCache(ctx context.Context, conversationID uuid.UUID, state *types.ConversationState) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(ctx, conversationID, state); err != nil {
		s.log.Warn("State cache refresh failed", "conversation_id", conversationID.String(), "error", err.Error())
	}
}

func (s *conversationService) ListConversations(ctx context.Context, limit int) ([]*types.Conversation, error) {
	return s.conversations.ListRecent(dbctx.Context{Ctx: ctx}, limit)
}

func (s *conversationService) GetConversation(ctx context.Context, conversationID uuid.UUID) (*ConversationDetail, error) {
	dbc := dbctx.Context{Ctx: ctx}
	conv, err := s.conversations.GetByID(dbc, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, apperr.ErrNotFound
	}
	state, err := s.states.GetByConversationID(dbc, conversationID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListByConversation(dbc, conversationID, 0)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.snapshots.GetByConversationID(dbc, conversationID)
	if err != nil {
		return nil, err
	}
	return &ConversationDetail{Conversation: conv, State: state, Messages: msgs, Snapshot: snapshot}, nil
}

func (s *conversationService) ListOrders(ctx context.Context, limit int) ([]*types.OrderSnapshot, error) {
	return s.snapshots.ListRecent(dbctx.Context{Ctx: ctx}, limit)
}

func channelFromAddr(addr string) string {
	if i := strings.Index(addr, ":"); i > 0 {
		return addr[:i]
	}
	return "sms"
}

func mustJSON(m map[string]any) datatypes.JSON {
	raw, err := json.Marshal(m)
	if err != nil {
		return datatypes.JSON([]byte(`{}`))
	}
	return datatypes.JSON(raw)
}
