package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	auctionstore "givekindly/internal/auction/store"
	assignmentstore "givekindly/internal/donation/store/assignment"
	donationstore "givekindly/internal/donation/store/donation"
	balancestore "givekindly/internal/escrow/store/balance"
	payoutstore "givekindly/internal/escrow/store/payout"
	identitystore "givekindly/internal/identity/store"
	jwttoken "givekindly/internal/jwt_token"
	"givekindly/internal/ledger/service"
	"givekindly/internal/platform/middleware"
	"givekindly/pkg/domain"
	"givekindly/pkg/platform/audit/publisher"
	auditmemory "givekindly/pkg/platform/audit/store/memory"
	"givekindly/pkg/testutil"
)

type LedgerHandlerSuite struct {
	suite.Suite
	router http.Handler
	jwt    *jwttoken.JWTService
}

func TestLedgerHandlerSuite(t *testing.T) {
	suite.Run(t, new(LedgerHandlerSuite))
}

func (s *LedgerHandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ledger, err := service.New(service.Stores{
		Actors:      identitystore.NewInMemory(),
		Donations:   donationstore.NewInMemory(),
		Assignments: assignmentstore.NewInMemory(),
		Slot:        auctionstore.NewInMemory(),
		Escrow:      balancestore.NewInMemory(),
		Payouts:     payoutstore.NewRecordingDisburser(),
	}, service.NewInMemoryTx(time.Second),
		service.WithLogger(logger),
		service.WithAuditPublisher(publisher.New(auditmemory.NewInMemoryStore())),
	)
	s.Require().NoError(err)

	s.jwt = jwttoken.NewJWTService("test-signing-key", "givekindly-test", "givekindly")
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequireAuth(s.jwt, logger))
	New(ledger, logger).Register(r)
	s.router = r
}

// do sends body as caller. A nil caller sends no Authorization header.
func (s *LedgerHandlerSuite) do(method, path string, caller *domain.ActorID, body any) *httptest.ResponseRecorder {
	req := testutil.NewJSONRequest(s.T(), method, path, body)
	if caller != nil {
		token, err := s.jwt.GenerateAccessToken(*caller, time.Minute)
		s.Require().NoError(err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return testutil.DoRequest(s.router, req)
}

func (s *LedgerHandlerSuite) register(path string) *domain.ActorID {
	id := domain.NewActorID()
	rr := s.do(http.MethodPost, "/actors/"+path, &id, RegisterRequest{
		Name: "Name", ContactEmail: "name@example.org", PhysicalAddress: "1 Main St",
	})
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
	return &id
}

func (s *LedgerHandlerSuite) TestAuctionLifecycleOverHTTP() {
	t := s.T()
	donor := s.register("donors")
	charity := s.register("charities")
	auctioneer := s.register("auctioneers")
	bidder1 := s.register("bidders")
	bidder2 := s.register("bidders")

	rr := s.do(http.MethodGet, "/stats", donor, nil)
	testutil.AssertStatusOK(t, rr)
	stats := testutil.UnmarshalResponse[StatsResponse](t, rr)
	s.Equal(5, stats.ActorsRegistered)

	category := 2
	rr = s.do(http.MethodPost, "/donations", donor, map[string]any{
		"charity_id": charity.String(), "category": category, "description": "MinnieWinnie",
	})
	testutil.AssertStatus(t, rr, http.StatusCreated)
	created := testutil.UnmarshalResponse[DonationCreatedResponse](t, rr)
	s.Equal(domain.DonationID(0), created.DonationID)

	rr = s.do(http.MethodPost, "/donations/0/assessor", charity, AssignAssessorRequest{AssessorID: *auctioneer})
	testutil.AssertStatus(t, rr, http.StatusNoContent)

	rr = s.do(http.MethodGet, "/assessors/"+auctioneer.String()+"/donations/0", donor, nil)
	testutil.AssertStatusOK(t, rr)
	at := testutil.UnmarshalResponse[AssessorDonationResponse](t, rr)
	s.Equal(domain.DonationID(0), at.DonationID)

	rr = s.do(http.MethodPost, "/auction", auctioneer, map[string]any{"donation_id": 0})
	testutil.AssertStatus(t, rr, http.StatusNoContent)

	rr = s.do(http.MethodPost, "/auction/bids", bidder1, BidRequest{Amount: 100})
	testutil.AssertStatus(t, rr, http.StatusNoContent)
	rr = s.do(http.MethodPost, "/auction/bids", bidder2, BidRequest{Amount: 100})
	testutil.AssertStatusAndError(t, rr, http.StatusUnprocessableEntity, "bid_too_low")
	rr = s.do(http.MethodPost, "/auction/bids", bidder2, BidRequest{Amount: 300})
	testutil.AssertStatus(t, rr, http.StatusNoContent)

	rr = s.do(http.MethodGet, "/auction", bidder1, nil)
	testutil.AssertStatusOK(t, rr)
	auction := testutil.UnmarshalResponse[AuctionResponse](t, rr)
	s.Equal("auctioning", auction.State)
	s.Require().NotNil(auction.HighestBidder)
	s.Equal(*bidder2, *auction.HighestBidder)
	s.Equal(domain.Amount(300), auction.HighestBid)

	rr = s.do(http.MethodPost, "/auction/end", auctioneer, nil)
	testutil.AssertStatusOK(t, rr)
	settlement := testutil.UnmarshalResponse[SettlementResponse](t, rr)
	s.Equal("sold", settlement.Status)
	s.Equal(domain.Amount(300), settlement.SaleValue)

	rr = s.do(http.MethodGet, "/donations/0/sale-value", donor, nil)
	testutil.AssertStatusOK(t, rr)
	s.Equal(domain.Amount(300), testutil.UnmarshalResponse[SaleValueResponse](t, rr).SaleValue)

	rr = s.do(http.MethodGet, "/escrow/bidders/"+bidder1.String(), bidder1, nil)
	testutil.AssertStatusOK(t, rr)
	s.Equal(domain.Amount(100), testutil.UnmarshalResponse[BalanceResponse](t, rr).Balance)

	rr = s.do(http.MethodPost, "/escrow/charity/withdraw", charity, nil)
	testutil.AssertStatusOK(t, rr)
	s.Equal(domain.Amount(300), testutil.UnmarshalResponse[WithdrawResponse](t, rr).Amount)

	rr = s.do(http.MethodPost, "/escrow/bidder/withdraw", bidder1, nil)
	testutil.AssertStatusOK(t, rr)
	s.Equal(domain.Amount(100), testutil.UnmarshalResponse[WithdrawResponse](t, rr).Amount)

	rr = s.do(http.MethodGet, "/escrow/payouts/"+charity.String(), charity, nil)
	testutil.AssertStatusOK(t, rr)
	payouts := testutil.UnmarshalResponse[PayoutsResponse](t, rr)
	s.Require().Len(payouts.Payouts, 1)
	s.Equal(domain.Amount(300), payouts.Payouts[0].Amount)

	rr = s.do(http.MethodGet, "/donations/0", donor, nil)
	testutil.AssertStatusOK(t, rr)
	donation := testutil.UnmarshalResponse[DonationResponse](t, rr)
	s.Equal("sold", donation.Status)
	s.Equal("rv", donation.Category)
	s.Require().NotNil(donation.AssessorID)
	s.Equal(*auctioneer, *donation.AssessorID)

	rr = s.do(http.MethodGet, "/actors/"+charity.String()+"/audit", charity, nil)
	testutil.AssertStatusOK(t, rr)
	events := testutil.UnmarshalResponse[[]AuditEventResponse](t, rr)
	s.NotEmpty(*events)
}

func (s *LedgerHandlerSuite) TestRejections() {
	t := s.T()

	s.Run("missing bearer token", func() {
		rr := s.do(http.MethodGet, "/stats", nil, nil)
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("unknown fields are a bad request", func() {
		caller := domain.NewActorID()
		rr := s.do(http.MethodPost, "/actors/donors", &caller, map[string]string{"nickname": "x"})
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("missing profile fields fail validation", func() {
		caller := domain.NewActorID()
		rr := s.do(http.MethodPost, "/actors/donors", &caller, RegisterRequest{Name: "only a name"})
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("second registration conflicts", func() {
		donor := s.register("donors")
		rr := s.do(http.MethodPost, "/actors/bidders", donor, RegisterRequest{
			Name: "n", ContactEmail: "n@example.org", PhysicalAddress: "a",
		})
		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "already_registered")
	})

	s.Run("donation needs a category", func() {
		donor := s.register("donors")
		charity := s.register("charities")
		rr := s.do(http.MethodPost, "/donations", donor, map[string]any{
			"charity_id": charity.String(), "description": "Canoe",
		})
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("bidding from the wrong role is forbidden", func() {
		donor := s.register("donors")
		rr := s.do(http.MethodPost, "/auction/bids", donor, BidRequest{Amount: 5})
		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "wrong_role")
	})

	s.Run("ending an idle auction conflicts", func() {
		auctioneer := s.register("auctioneers")
		rr := s.do(http.MethodPost, "/auction/end", auctioneer, nil)
		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "no_active_auction")
	})

	s.Run("unknown donation", func() {
		caller := domain.NewActorID()
		rr := s.do(http.MethodGet, "/donations/42", &caller, nil)
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "unknown_donation")
	})

	s.Run("malformed path parameters", func() {
		caller := domain.NewActorID()
		rr := s.do(http.MethodGet, "/donations/abc", &caller, nil)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")

		rr = s.do(http.MethodGet, "/escrow/charities/not-a-uuid", &caller, nil)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")

		rr = s.do(http.MethodGet, "/assessors/"+caller.String()+"/donations/-1", &caller, nil)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
	})

	s.Run("reading another actor's audit trail is forbidden", func() {
		charity := s.register("charities")
		other := domain.NewActorID()
		rr := s.do(http.MethodGet, "/actors/"+charity.String()+"/audit", &other, nil)
		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
	})
}
