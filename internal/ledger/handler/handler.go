package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	auctionmodels "givekindly/internal/auction/models"
	donationmodels "givekindly/internal/donation/models"
	escrowmodels "givekindly/internal/escrow/models"
	idmodels "givekindly/internal/identity/models"
	"givekindly/internal/ledger/service"
	"givekindly/pkg/domain"
	dErrors "givekindly/pkg/domain-errors"
	"givekindly/pkg/platform/audit"
	"givekindly/pkg/platform/httputil"
	"givekindly/pkg/requestcontext"
)

// Ledger defines the ledger operations exposed over HTTP.
type Ledger interface {
	Register(ctx context.Context, caller domain.ActorID, role idmodels.Role, profile idmodels.Profile) (*idmodels.Actor, error)
	Actor(ctx context.Context, id domain.ActorID) (*idmodels.Actor, error)
	NumActorsRegistered(ctx context.Context) (int, error)
	AuditTrail(ctx context.Context, caller, actorID domain.ActorID) ([]audit.Event, error)

	Donate(ctx context.Context, caller, charityID domain.ActorID, category donationmodels.Category, description string) (domain.DonationID, error)
	AssignAssessor(ctx context.Context, caller domain.ActorID, donationID domain.DonationID, assessorID domain.ActorID) error
	DonationCount(ctx context.Context) (uint64, error)
	Donation(ctx context.Context, id domain.DonationID) (*donationmodels.Donation, error)
	SaleValueOf(ctx context.Context, id domain.DonationID) (domain.Amount, error)
	AssessorDonationAt(ctx context.Context, assessor domain.ActorID, index uint64) (domain.DonationID, error)
	AssessorDonations(ctx context.Context, assessor domain.ActorID) ([]domain.DonationID, error)

	AuctionItem(ctx context.Context, caller domain.ActorID, donationID domain.DonationID) error
	NewBid(ctx context.Context, caller domain.ActorID, amount domain.Amount) error
	EndAuction(ctx context.Context, caller domain.ActorID) (*service.Settlement, error)
	AuctionSnapshot(ctx context.Context) (*auctionmodels.Slot, error)

	CharityWithdraw(ctx context.Context, caller domain.ActorID) (domain.Amount, error)
	ReturnLosingBid(ctx context.Context, caller domain.ActorID) (domain.Amount, error)
	CharityBalanceOf(ctx context.Context, charity domain.ActorID) (domain.Amount, error)
	BidderBalanceOf(ctx context.Context, bidder domain.ActorID) (domain.Amount, error)
	Payouts(ctx context.Context, actor domain.ActorID) ([]escrowmodels.Payout, error)
}

// Handler serves the ledger's HTTP surface. Routes expect the caller to be
// bound to the request context by the auth middleware.
type Handler struct {
	ledger Ledger
	logger *slog.Logger
}

func New(ledger Ledger, logger *slog.Logger) *Handler {
	return &Handler{ledger: ledger, logger: logger}
}

// Register mounts the ledger routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/actors", func(r chi.Router) {
		r.Post("/donors", h.handleRegister(idmodels.RoleDonor))
		r.Post("/charities", h.handleRegister(idmodels.RoleCharity))
		r.Post("/auctioneers", h.handleRegister(idmodels.RoleAuctioneer))
		r.Post("/bidders", h.handleRegister(idmodels.RoleBidder))
		r.Get("/{id}", h.handleGetActor)
		r.Get("/{id}/audit", h.handleAuditTrail)
	})
	r.Route("/donations", func(r chi.Router) {
		r.Post("/", h.handleDonate)
		r.Get("/{id}", h.handleGetDonation)
		r.Get("/{id}/sale-value", h.handleSaleValue)
		r.Post("/{id}/assessor", h.handleAssignAssessor)
	})
	r.Get("/assessors/{id}/donations", h.handleAssessorDonations)
	r.Get("/assessors/{id}/donations/{index}", h.handleAssessorDonationAt)
	r.Route("/auction", func(r chi.Router) {
		r.Get("/", h.handleGetAuction)
		r.Post("/", h.handleAuctionItem)
		r.Post("/bids", h.handleNewBid)
		r.Post("/end", h.handleEndAuction)
	})
	r.Route("/escrow", func(r chi.Router) {
		r.Post("/charity/withdraw", h.handleWithdraw(escrowmodels.AccountCharity))
		r.Post("/bidder/withdraw", h.handleWithdraw(escrowmodels.AccountBidder))
		r.Get("/charities/{id}", h.handleBalance(escrowmodels.AccountCharity))
		r.Get("/bidders/{id}", h.handleBalance(escrowmodels.AccountBidder))
		r.Get("/payouts/{id}", h.handlePayouts)
	})
	r.Get("/stats", h.handleStats)
}

func (h *Handler) handleRegister(role idmodels.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		caller, ok := h.caller(w, r)
		if !ok {
			return
		}
		req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
		if !ok {
			return
		}
		actor, err := h.ledger.Register(ctx, caller, role, req.Profile())
		if err != nil {
			h.fail(ctx, w, "register", err)
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, toActorResponse(actor))
	}
}

func (h *Handler) handleGetActor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.actorParam(w, r)
	if !ok {
		return
	}
	actor, err := h.ledger.Actor(ctx, id)
	if err != nil {
		h.fail(ctx, w, "get_actor", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toActorResponse(actor))
}

func (h *Handler) handleAuditTrail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := h.actorParam(w, r)
	if !ok {
		return
	}
	events, err := h.ledger.AuditTrail(ctx, caller, id)
	if err != nil {
		h.fail(ctx, w, "audit_trail", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAuditResponses(events))
}

func (h *Handler) handleDonate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[DonateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	id, err := h.ledger.Donate(ctx, caller, req.CharityID, *req.Category, req.Description)
	if err != nil {
		h.fail(ctx, w, "donate", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, DonationCreatedResponse{DonationID: id})
}

func (h *Handler) handleGetDonation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.donationParam(w, r)
	if !ok {
		return
	}
	donation, err := h.ledger.Donation(ctx, id)
	if err != nil {
		h.fail(ctx, w, "get_donation", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDonationResponse(donation))
}

func (h *Handler) handleSaleValue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.donationParam(w, r)
	if !ok {
		return
	}
	value, err := h.ledger.SaleValueOf(ctx, id)
	if err != nil {
		h.fail(ctx, w, "sale_value", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SaleValueResponse{DonationID: id, SaleValue: value})
}

func (h *Handler) handleAssignAssessor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := h.donationParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AssignAssessorRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.ledger.AssignAssessor(ctx, caller, id, req.AssessorID); err != nil {
		h.fail(ctx, w, "assign_assessor", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAssessorDonations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.actorParam(w, r)
	if !ok {
		return
	}
	ids, err := h.ledger.AssessorDonations(ctx, id)
	if err != nil {
		h.fail(ctx, w, "assessor_donations", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, AssessorDonationsResponse{AssessorID: id, DonationIDs: ids})
}

func (h *Handler) handleAssessorDonationAt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.actorParam(w, r)
	if !ok {
		return
	}
	index, err := strconv.ParseUint(chi.URLParam(r, "index"), 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "index must be a non-negative integer"))
		return
	}
	donationID, err := h.ledger.AssessorDonationAt(ctx, id, index)
	if err != nil {
		h.fail(ctx, w, "assessor_donation_at", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, AssessorDonationResponse{AssessorID: id, Index: index, DonationID: donationID})
}

func (h *Handler) handleGetAuction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slot, err := h.ledger.AuctionSnapshot(ctx)
	if err != nil {
		h.fail(ctx, w, "get_auction", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAuctionResponse(slot))
}

func (h *Handler) handleAuctionItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AuctionItemRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.ledger.AuctionItem(ctx, caller, *req.DonationID); err != nil {
		h.fail(ctx, w, "auction_item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleNewBid(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[BidRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.ledger.NewBid(ctx, caller, req.Amount); err != nil {
		h.fail(ctx, w, "new_bid", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleEndAuction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	settlement, err := h.ledger.EndAuction(ctx, caller)
	if err != nil {
		h.fail(ctx, w, "end_auction", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSettlementResponse(settlement))
}

func (h *Handler) handleWithdraw(kind escrowmodels.AccountKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		caller, ok := h.caller(w, r)
		if !ok {
			return
		}
		var (
			amount domain.Amount
			err    error
		)
		if kind == escrowmodels.AccountCharity {
			amount, err = h.ledger.CharityWithdraw(ctx, caller)
		} else {
			amount, err = h.ledger.ReturnLosingBid(ctx, caller)
		}
		if err != nil {
			h.fail(ctx, w, "withdraw", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, WithdrawResponse{Kind: kind, Amount: amount})
	}
}

func (h *Handler) handleBalance(kind escrowmodels.AccountKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, ok := h.actorParam(w, r)
		if !ok {
			return
		}
		var (
			balance domain.Amount
			err     error
		)
		if kind == escrowmodels.AccountCharity {
			balance, err = h.ledger.CharityBalanceOf(ctx, id)
		} else {
			balance, err = h.ledger.BidderBalanceOf(ctx, id)
		}
		if err != nil {
			h.fail(ctx, w, "balance", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, BalanceResponse{ActorID: id, Kind: kind, Balance: balance})
	}
}

func (h *Handler) handlePayouts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.actorParam(w, r)
	if !ok {
		return
	}
	payouts, err := h.ledger.Payouts(ctx, id)
	if err != nil {
		h.fail(ctx, w, "payouts", err)
		return
	}
	if payouts == nil {
		payouts = []escrowmodels.Payout{}
	}
	httputil.WriteJSON(w, http.StatusOK, PayoutsResponse{ActorID: id, Payouts: payouts})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actors, err := h.ledger.NumActorsRegistered(ctx)
	if err != nil {
		h.fail(ctx, w, "stats", err)
		return
	}
	donations, err := h.ledger.DonationCount(ctx)
	if err != nil {
		h.fail(ctx, w, "stats", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, StatsResponse{ActorsRegistered: actors, DonationCount: donations})
}

// caller returns the authenticated identity. A missing caller means the auth
// middleware was not mounted.
func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (domain.ActorID, bool) {
	caller := requestcontext.ActorID(r.Context())
	if caller.IsNil() {
		h.logger.ErrorContext(r.Context(), "caller missing from context despite auth middleware",
			"request_id", requestcontext.RequestID(r.Context()),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return domain.ActorID{}, false
	}
	return caller, true
}

func (h *Handler) actorParam(w http.ResponseWriter, r *http.Request) (domain.ActorID, bool) {
	id, err := domain.ParseActorID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return domain.ActorID{}, false
	}
	return id, true
}

func (h *Handler) donationParam(w http.ResponseWriter, r *http.Request) (domain.DonationID, bool) {
	id, err := domain.ParseDonationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return 0, false
	}
	return id, true
}

// fail logs and writes err. Ledger rejections are expected traffic and log
// at warn; anything uncoded is an internal failure.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, op string, err error) {
	code := dErrors.CodeOf(err)
	attrs := []any{
		"operation", op,
		"code", string(code),
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	}
	if code == dErrors.CodeInternal || code == dErrors.CodeInvariantViolation {
		h.logger.ErrorContext(ctx, "ledger operation failed", attrs...)
	} else {
		h.logger.WarnContext(ctx, "ledger operation rejected", attrs...)
	}
	httputil.WriteError(w, err)
}
