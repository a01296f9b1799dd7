package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitledger/internal/activity"
	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/internal/validator"
)

const testCurrency = "USD"

// syncSink delivers activities inline so tests can read the feed right after a write.
type syncSink struct {
	deliverer *activity.FeedDeliverer
}

func (s syncSink) Notify(ctx context.Context, a *models.Activity) {
	_ = s.deliverer.Deliver(ctx, a)
}

type testEnv struct {
	t      *testing.T
	ctx    context.Context
	store  *sqlite.SQLiteStore
	server *httptest.Server
}

// newTestEnv serves every service over HTTP, backed by a fresh SQLite database.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
	v := validator.New(store)
	engine := ledger.NewEngine(store, store)
	sink := syncSink{deliverer: activity.NewFeedDeliverer(store, testCurrency)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	interceptors := connect.WithInterceptors(
		middleware.RequireAuth(jwtManager, PublicProcedures...),
		middleware.LoggingInterceptor(),
	)

	mux := http.NewServeMux()
	mux.Handle(NewAuthServiceHandler(NewAuthService(authenticator, jwtManager, logger), interceptors))
	mux.Handle(NewLedgerServiceHandler(NewLedgerService(engine, store, store, v, testCurrency), interceptors))
	mux.Handle(NewExpenseServiceHandler(NewExpenseService(store, v, sink, testCurrency), interceptors))
	mux.Handle(NewSettlementServiceHandler(NewSettlementService(store, v, sink, testCurrency), interceptors))
	mux.Handle(NewFriendServiceHandler(NewFriendService(store, store, engine, sink, testCurrency), interceptors))
	mux.Handle(NewActivityServiceHandler(NewActivityService(store, testCurrency), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testEnv{t: t, ctx: context.Background(), store: store, server: server}
}

// anonymous returns a client that sends no token.
func (e *testEnv) anonymous() *Client {
	return NewClient(http.DefaultClient, e.server.URL)
}

// withToken returns a client that authenticates every call with token.
func (e *testEnv) withToken(token string) *Client {
	bearer := connect.UnaryInterceptorFunc(func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			req.Header().Set("Authorization", "Bearer "+token)
			return next(ctx, req)
		}
	})
	return NewClient(http.DefaultClient, e.server.URL, connect.WithInterceptors(bearer))
}

// register signs up a user named name and returns an authenticated client for them.
func (e *testEnv) register(name string) (*Client, User) {
	e.t.Helper()
	resp, err := e.anonymous().Register.CallUnary(e.ctx, connect.NewRequest(&RegisterRequest{
		Email:       name + "@example.com",
		DisplayName: name,
		Password:    "password123",
	}))
	require.NoError(e.t, err)
	return e.withToken(resp.Msg.Token), resp.Msg.User
}

func (e *testEnv) createExpense(c *Client, req *CreateExpenseRequest) Expense {
	e.t.Helper()
	resp, err := c.CreateExpense.CallUnary(e.ctx, connect.NewRequest(req))
	require.NoError(e.t, err)
	return resp.Msg.Expense
}

func (e *testEnv) pairwise(c *Client, otherID string) *GetPairwiseBalanceResponse {
	e.t.Helper()
	resp, err := c.GetPairwiseBalance.CallUnary(e.ctx, connect.NewRequest(&GetPairwiseBalanceRequest{OtherUserID: otherID}))
	require.NoError(e.t, err)
	return resp.Msg
}

func equalSplit(amount int64, payerID string, userIDs ...string) *CreateExpenseRequest {
	req := &CreateExpenseRequest{
		Title:       "Dinner",
		Amount:      money.Amount(amount),
		PayerID:     payerID,
		SplitMethod: string(models.SplitEqual),
	}
	for _, id := range userIDs {
		req.Participants = append(req.Participants, ParticipantInput{UserID: id})
	}
	return req
}
