package service

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// Fully-qualified service names.
const (
	AuthServiceName       = "splitledger.v1.AuthService"
	LedgerServiceName     = "splitledger.v1.LedgerService"
	ExpenseServiceName    = "splitledger.v1.ExpenseService"
	SettlementServiceName = "splitledger.v1.SettlementService"
	FriendServiceName     = "splitledger.v1.FriendService"
	ActivityServiceName   = "splitledger.v1.ActivityService"
)

// Procedure paths, as routed by the handlers below.
const (
	AuthServiceRegisterProcedure = "/" + AuthServiceName + "/Register"
	AuthServiceLoginProcedure    = "/" + AuthServiceName + "/Login"

	LedgerServiceGetAggregateBalanceProcedure  = "/" + LedgerServiceName + "/GetAggregateBalance"
	LedgerServiceGetPairwiseBalanceProcedure   = "/" + LedgerServiceName + "/GetPairwiseBalance"
	LedgerServiceValidateExpenseInputProcedure = "/" + LedgerServiceName + "/ValidateExpenseInput"

	ExpenseServiceCreateExpenseProcedure  = "/" + ExpenseServiceName + "/CreateExpense"
	ExpenseServiceGetExpenseProcedure     = "/" + ExpenseServiceName + "/GetExpense"
	ExpenseServiceListExpensesProcedure   = "/" + ExpenseServiceName + "/ListExpenses"
	ExpenseServiceUpdateExpenseProcedure  = "/" + ExpenseServiceName + "/UpdateExpense"
	ExpenseServiceDeleteExpenseProcedure  = "/" + ExpenseServiceName + "/DeleteExpense"
	ExpenseServiceRestoreExpenseProcedure = "/" + ExpenseServiceName + "/RestoreExpense"

	SettlementServiceCreateSettlementProcedure = "/" + SettlementServiceName + "/CreateSettlement"
	SettlementServiceGetSettlementProcedure    = "/" + SettlementServiceName + "/GetSettlement"
	SettlementServiceListSettlementsProcedure  = "/" + SettlementServiceName + "/ListSettlements"

	FriendServiceAddFriendProcedure    = "/" + FriendServiceName + "/AddFriend"
	FriendServiceRemoveFriendProcedure = "/" + FriendServiceName + "/RemoveFriend"
	FriendServiceListFriendsProcedure  = "/" + FriendServiceName + "/ListFriends"

	ActivityServiceListActivityProcedure = "/" + ActivityServiceName + "/ListActivity"
)

// PublicProcedures do not require a bearer token.
var PublicProcedures = []string{
	AuthServiceRegisterProcedure,
	AuthServiceLoginProcedure,
}

func handle[Req, Res any](
	mux *http.ServeMux,
	procedure string,
	fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error),
	opts []connect.HandlerOption,
) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	mux.Handle(procedure, connect.NewUnaryHandler(procedure, fn, opts...))
}

func servicePath(name string) string {
	return "/" + name + "/"
}

// NewAuthServiceHandler builds an HTTP handler for the auth service.
// It returns the path on which to mount the handler and the handler itself.
func NewAuthServiceHandler(svc *AuthService, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	handle(mux, AuthServiceRegisterProcedure, svc.Register, opts)
	handle(mux, AuthServiceLoginProcedure, svc.Login, opts)
	return servicePath(AuthServiceName), mux
}

// NewLedgerServiceHandler builds an HTTP handler for the ledger service.
func NewLedgerServiceHandler(svc *LedgerService, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	handle(mux, LedgerServiceGetAggregateBalanceProcedure, svc.GetAggregateBalance, opts)
	handle(mux, LedgerServiceGetPairwiseBalanceProcedure, svc.GetPairwiseBalance, opts)
	handle(mux, LedgerServiceValidateExpenseInputProcedure, svc.ValidateExpenseInput, opts)
	return servicePath(LedgerServiceName), mux
}

// NewExpenseServiceHandler builds an HTTP handler for the expense service.
func NewExpenseServiceHandler(svc *ExpenseService, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	handle(mux, ExpenseServiceCreateExpenseProcedure, svc.CreateExpense, opts)
	handle(mux, ExpenseServiceGetExpenseProcedure, svc.GetExpense, opts)
	handle(mux, ExpenseServiceListExpensesProcedure, svc.ListExpenses, opts)
	handle(mux, ExpenseServiceUpdateExpenseProcedure, svc.UpdateExpense, opts)
	handle(mux, ExpenseServiceDeleteExpenseProcedure, svc.DeleteExpense, opts)
	handle(mux, ExpenseServiceRestoreExpenseProcedure, svc.RestoreExpense, opts)
	return servicePath(ExpenseServiceName), mux
}

// NewSettlementServiceHandler builds an HTTP handler for the settlement service.
func NewSettlementServiceHandler(svc *SettlementService, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	handle(mux, SettlementServiceCreateSettlementProcedure, svc.CreateSettlement, opts)
	handle(mux, SettlementServiceGetSettlementProcedure, svc.GetSettlement, opts)
	handle(mux, SettlementServiceListSettlementsProcedure, svc.ListSettlements, opts)
	return servicePath(SettlementServiceName), mux
}

// NewFriendServiceHandler builds an HTTP handler for the friend service.
func NewFriendServiceHandler(svc *FriendService, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	handle(mux, FriendServiceAddFriendProcedure, svc.AddFriend, opts)
	handle(mux, FriendServiceRemoveFriendProcedure, svc.RemoveFriend, opts)
	handle(mux, FriendServiceListFriendsProcedure, svc.ListFriends, opts)
	return servicePath(FriendServiceName), mux
}

// NewActivityServiceHandler builds an HTTP handler for the activity service.
func NewActivityServiceHandler(svc *ActivityService, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	handle(mux, ActivityServiceListActivityProcedure, svc.ListActivity, opts)
	return servicePath(ActivityServiceName), mux
}

// IsRPCPath reports whether an HTTP path belongs to one of the services.
func IsRPCPath(path string) bool {
	return strings.HasPrefix(path, "/splitledger.v1.")
}

// Client calls every service over Connect with the JSON codec.
type Client struct {
	Register *connect.Client[RegisterRequest, RegisterResponse]
	Login    *connect.Client[LoginRequest, LoginResponse]

	GetAggregateBalance  *connect.Client[GetAggregateBalanceRequest, GetAggregateBalanceResponse]
	GetPairwiseBalance   *connect.Client[GetPairwiseBalanceRequest, GetPairwiseBalanceResponse]
	ValidateExpenseInput *connect.Client[ValidateExpenseInputRequest, ValidateExpenseInputResponse]

	CreateExpense  *connect.Client[CreateExpenseRequest, CreateExpenseResponse]
	GetExpense     *connect.Client[GetExpenseRequest, GetExpenseResponse]
	ListExpenses   *connect.Client[ListExpensesRequest, ListExpensesResponse]
	UpdateExpense  *connect.Client[UpdateExpenseRequest, UpdateExpenseResponse]
	DeleteExpense  *connect.Client[DeleteExpenseRequest, DeleteExpenseResponse]
	RestoreExpense *connect.Client[RestoreExpenseRequest, RestoreExpenseResponse]

	CreateSettlement *connect.Client[CreateSettlementRequest, CreateSettlementResponse]
	GetSettlement    *connect.Client[GetSettlementRequest, GetSettlementResponse]
	ListSettlements  *connect.Client[ListSettlementsRequest, ListSettlementsResponse]

	AddFriend    *connect.Client[AddFriendRequest, AddFriendResponse]
	RemoveFriend *connect.Client[RemoveFriendRequest, RemoveFriendResponse]
	ListFriends  *connect.Client[ListFriendsRequest, ListFriendsResponse]

	ListActivity *connect.Client[ListActivityRequest, ListActivityResponse]
}

func newClient[Req, Res any](httpClient connect.HTTPClient, baseURL, procedure string, opts []connect.ClientOption) *connect.Client[Req, Res] {
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return connect.NewClient[Req, Res](httpClient, strings.TrimRight(baseURL, "/")+procedure, opts...)
}

// NewClient constructs a client for the services mounted at baseURL.
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	return &Client{
		Register: newClient[RegisterRequest, RegisterResponse](httpClient, baseURL, AuthServiceRegisterProcedure, opts),
		Login:    newClient[LoginRequest, LoginResponse](httpClient, baseURL, AuthServiceLoginProcedure, opts),

		GetAggregateBalance:  newClient[GetAggregateBalanceRequest, GetAggregateBalanceResponse](httpClient, baseURL, LedgerServiceGetAggregateBalanceProcedure, opts),
		GetPairwiseBalance:   newClient[GetPairwiseBalanceRequest, GetPairwiseBalanceResponse](httpClient, baseURL, LedgerServiceGetPairwiseBalanceProcedure, opts),
		ValidateExpenseInput: newClient[ValidateExpenseInputRequest, ValidateExpenseInputResponse](httpClient, baseURL, LedgerServiceValidateExpenseInputProcedure, opts),

		CreateExpense:  newClient[CreateExpenseRequest, CreateExpenseResponse](httpClient, baseURL, ExpenseServiceCreateExpenseProcedure, opts),
		GetExpense:     newClient[GetExpenseRequest, GetExpenseResponse](httpClient, baseURL, ExpenseServiceGetExpenseProcedure, opts),
		ListExpenses:   newClient[ListExpensesRequest, ListExpensesResponse](httpClient, baseURL, ExpenseServiceListExpensesProcedure, opts),
		UpdateExpense:  newClient[UpdateExpenseRequest, UpdateExpenseResponse](httpClient, baseURL, ExpenseServiceUpdateExpenseProcedure, opts),
		DeleteExpense:  newClient[DeleteExpenseRequest, DeleteExpenseResponse](httpClient, baseURL, ExpenseServiceDeleteExpenseProcedure, opts),
		RestoreExpense: newClient[RestoreExpenseRequest, RestoreExpenseResponse](httpClient, baseURL, ExpenseServiceRestoreExpenseProcedure, opts),

		CreateSettlement: newClient[CreateSettlementRequest, CreateSettlementResponse](httpClient, baseURL, SettlementServiceCreateSettlementProcedure, opts),
		GetSettlement:    newClient[GetSettlementRequest, GetSettlementResponse](httpClient, baseURL, SettlementServiceGetSettlementProcedure, opts),
		ListSettlements:  newClient[ListSettlementsRequest, ListSettlementsResponse](httpClient, baseURL, SettlementServiceListSettlementsProcedure, opts),

		AddFriend:    newClient[AddFriendRequest, AddFriendResponse](httpClient, baseURL, FriendServiceAddFriendProcedure, opts),
		RemoveFriend: newClient[RemoveFriendRequest, RemoveFriendResponse](httpClient, baseURL, FriendServiceRemoveFriendProcedure, opts),
		ListFriends:  newClient[ListFriendsRequest, ListFriendsResponse](httpClient, baseURL, FriendServiceListFriendsProcedure, opts),

		ListActivity: newClient[ListActivityRequest, ListActivityResponse](httpClient, baseURL, ActivityServiceListActivityProcedure, opts),
	}
}
