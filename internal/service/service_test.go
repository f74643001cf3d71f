package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/tandas/internal/auth"
	"github.com/mmynk/tandas/internal/consensus"
	"github.com/mmynk/tandas/internal/middleware"
	"github.com/mmynk/tandas/internal/models"
	"github.com/mmynk/tandas/internal/ratepolicy"
	"github.com/mmynk/tandas/internal/storage"
	"github.com/mmynk/tandas/internal/storage/sqlite"
	"github.com/mmynk/tandas/internal/tanda"
	"github.com/mmynk/tandas/pkg/api"
	"github.com/mmynk/tandas/pkg/api/apiconnect"
)

const testSecret = "service-test-secret"

type testClients struct {
	// tanda and transfer send an operator token unless a request sets its own.
	tanda      apiconnect.TandaServiceClient
	simulation apiconnect.SimulationServiceClient
	transfer   apiconnect.TransferServiceClient

	anonTanda    apiconnect.TandaServiceClient
	anonTransfer apiconnect.TransferServiceClient

	jwt *auth.JWTManager
}

// setupTestServer serves all three services over a temp SQLite database.
func setupTestServer(t *testing.T) *testClients {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	repo := storage.NewRepository(store, storage.LogNotifier{})
	policy := ratepolicy.Default()

	simSvc, err := NewSimulationService(repo, policy, models.DefaultCaps(), 8)
	if err != nil {
		t.Fatalf("failed to create simulation service: %v", err)
	}

	jwtManager := auth.NewJWTManager(testSecret, time.Hour)
	protected := connect.WithInterceptors(
		middleware.RequireActor(jwtManager),
		middleware.LoggingInterceptor(),
	)
	public := connect.WithInterceptors(
		middleware.OptionalActor(jwtManager),
		middleware.LoggingInterceptor(),
	)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewTandaServiceHandler(NewTandaService(tanda.NewManager(repo, policy)), protected))
	mux.Handle(apiconnect.NewSimulationServiceHandler(simSvc, public))
	mux.Handle(apiconnect.NewTransferServiceHandler(NewTransferService(consensus.NewEngine(repo)), protected))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	operator, err := jwtManager.Generate(auth.Actor{ID: "ops-1", Name: "Operaciones", Role: auth.RoleOperator})
	if err != nil {
		t.Fatalf("failed to generate operator token: %v", err)
	}
	withOperator := connect.WithInterceptors(defaultToken("Bearer " + operator))

	return &testClients{
		tanda:        apiconnect.NewTandaServiceClient(http.DefaultClient, server.URL, withOperator),
		simulation:   apiconnect.NewSimulationServiceClient(http.DefaultClient, server.URL),
		transfer:     apiconnect.NewTransferServiceClient(http.DefaultClient, server.URL, withOperator),
		anonTanda:    apiconnect.NewTandaServiceClient(http.DefaultClient, server.URL),
		anonTransfer: apiconnect.NewTransferServiceClient(http.DefaultClient, server.URL),
		jwt:          jwtManager,
	}
}

// defaultToken sets the Authorization header on outgoing requests that have none.
func defaultToken(header string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if req.Spec().IsClient && req.Header().Get("Authorization") == "" {
				req.Header().Set("Authorization", header)
			}
			return next(ctx, req)
		}
	}
}

func (c *testClients) token(t *testing.T, actor auth.Actor) string {
	t.Helper()
	token, err := c.jwt.Generate(actor)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return "Bearer " + token
}

// createFullGroup creates a group of n members c1..cN at 1000 per month.
func (c *testClients) createFullGroup(t *testing.T, n int) *api.Group {
	t.Helper()
	ctx := context.Background()

	created, err := c.tanda.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{
		Name:         "Ruta Centro EdoMex",
		Capacity:     n,
		PackageValue: float64(1000 * n),
		StartDate:    time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		Market:       "edomex",
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	var group *api.Group
	for p := 1; p <= n; p++ {
		resp, err := c.tanda.AddMember(ctx, connect.NewRequest(&api.AddMemberRequest{
			GroupID:  created.Msg.Group.ID,
			ClientID: fmt.Sprintf("c%d", p),
			Name:     fmt.Sprintf("Member %d", p),
		}))
		if err != nil {
			t.Fatalf("AddMember(c%d) failed: %v", p, err)
		}
		group = resp.Msg.Group
	}
	return group
}

func (c *testClients) payAll(t *testing.T, g *api.Group, amount float64) {
	t.Helper()
	for _, m := range g.Members {
		if _, err := c.tanda.RecordPayment(context.Background(), connect.NewRequest(&api.RecordPaymentRequest{
			GroupID:  g.ID,
			ClientID: m.ClientID,
			Amount:   amount,
		})); err != nil {
			t.Fatalf("RecordPayment(%s) failed: %v", m.ClientID, err)
		}
	}
}

func TestTandaService_Lifecycle(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()

	g := c.createFullGroup(t, 3)
	if g.Status != string(models.GroupActive) || len(g.Schedule) != 3 || g.MonthlyAmount != 1000 {
		t.Fatalf("group = status %s schedule %d monthly %v", g.Status, len(g.Schedule), g.MonthlyAmount)
	}

	pay, err := c.tanda.RecordPayment(ctx, connect.NewRequest(&api.RecordPaymentRequest{
		GroupID: g.ID, ClientID: "c2", Amount: 3000, Method: "spei",
	}))
	if err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}
	if pay.Msg.NewTotal != 3000 || pay.Msg.EntryStatus != string(models.EntryReady) || pay.Msg.Payment.Method != "spei" {
		t.Errorf("payment response = %+v", pay.Msg)
	}

	del, err := c.tanda.ExecuteDelivery(ctx, connect.NewRequest(&api.ExecuteDeliveryRequest{GroupID: g.ID, ClientID: "c3"}))
	if err != nil {
		t.Fatalf("ExecuteDelivery failed: %v", err)
	}
	if del.Msg.Success || del.Msg.RejectionCode != string(models.RejectNotReady) {
		t.Errorf("delivery to pending member = %+v, want not_ready rejection", del.Msg)
	}

	del, err = c.tanda.ExecuteDelivery(ctx, connect.NewRequest(&api.ExecuteDeliveryRequest{GroupID: g.ID, ClientID: "c1"}))
	if err != nil {
		t.Fatalf("ExecuteDelivery failed: %v", err)
	}
	if !del.Msg.Success || del.Msg.CurrentMonth != 2 || del.Msg.DeliveredAmount != 3000 {
		t.Errorf("delivery = %+v", del.Msg)
	}

	stats, err := c.tanda.GetStats(ctx, connect.NewRequest(&api.GetStatsRequest{}))
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.Msg.ActiveGroups != 1 || stats.Msg.CompletedDeliveries != 1 || stats.Msg.FundsCollected != 3000 {
		t.Errorf("stats = %+v", stats.Msg)
	}

	upcoming, err := c.tanda.ListUpcomingDeliveries(ctx, connect.NewRequest(&api.ListUpcomingDeliveriesRequest{}))
	if err != nil {
		t.Fatalf("ListUpcomingDeliveries failed: %v", err)
	}
	if len(upcoming.Msg.Deliveries) != 2 || upcoming.Msg.Deliveries[0].MemberID != "c2" || !upcoming.Msg.Deliveries[0].ReadyForDelivery {
		t.Errorf("upcoming = %+v", upcoming.Msg.Deliveries)
	}

	got, err := c.tanda.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: g.ID}))
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if got.Msg.Group.CurrentMonth != 2 || len(got.Msg.Group.Members[1].Payments) != 1 {
		t.Errorf("stored group = month %d payments %d", got.Msg.Group.CurrentMonth, len(got.Msg.Group.Members[1].Payments))
	}

	if _, err := c.tanda.DeleteGroup(ctx, connect.NewRequest(&api.DeleteGroupRequest{GroupID: g.ID})); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}
	list, err := c.tanda.ListGroups(ctx, connect.NewRequest(&api.ListGroupsRequest{}))
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(list.Msg.Groups) != 0 {
		t.Errorf("groups after delete = %d, want 0", len(list.Msg.Groups))
	}
}

func TestTandaService_ErrorCodes(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	full := c.createFullGroup(t, 2)

	tests := []struct {
		name string
		call func() error
		want connect.Code
	}{
		{
			name: "missing group",
			call: func() error {
				_, err := c.tanda.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: "missing"}))
				return err
			},
			want: connect.CodeNotFound,
		},
		{
			name: "invalid capacity",
			call: func() error {
				_, err := c.tanda.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{Name: "g", Capacity: 1, PackageValue: 100}))
				return err
			},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "unknown market",
			call: func() error {
				_, err := c.tanda.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{Name: "g", Capacity: 4, PackageValue: 100, Market: "jalisco"}))
				return err
			},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "full group",
			call: func() error {
				_, err := c.tanda.AddMember(ctx, connect.NewRequest(&api.AddMemberRequest{GroupID: full.ID, ClientID: "late", Name: "Tarde"}))
				return err
			},
			want: connect.CodeFailedPrecondition,
		},
		{
			name: "unknown member payment",
			call: func() error {
				_, err := c.tanda.RecordPayment(ctx, connect.NewRequest(&api.RecordPaymentRequest{GroupID: full.ID, ClientID: "ghost", Amount: 10}))
				return err
			},
			want: connect.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if err == nil {
				t.Fatal("expected error")
			}
			if code := connect.CodeOf(err); code != tt.want {
				t.Errorf("code = %v, want %v (%v)", code, tt.want, err)
			}
		})
	}
}

func TestTransferService_Flow(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	g := c.createFullGroup(t, 5)

	req, err := c.transfer.RequestTransfer(ctx, connect.NewRequest(&api.RequestTransferRequest{
		GroupID:      g.ID,
		FromMemberID: "c2",
		ToMemberID:   "c5",
		Reason:       "necesita la unidad para trabajar",
		RequestedBy:  "advisor-1",
	}))
	if err != nil {
		t.Fatalf("RequestTransfer failed: %v", err)
	}
	if req.Msg.RequiredApprovals != 4 {
		t.Fatalf("required approvals = %d, want 4", req.Msg.RequiredApprovals)
	}

	pending, err := c.transfer.ListPendingVotes(ctx, connect.NewRequest(&api.ListPendingVotesRequest{MemberID: "c1"}))
	if err != nil {
		t.Fatalf("ListPendingVotes failed: %v", err)
	}
	if len(pending.Msg.Pending) != 1 || pending.Msg.Pending[0].Transfer.ToMemberID != "c5" {
		t.Fatalf("pending = %+v", pending.Msg.Pending)
	}

	exec, err := c.transfer.ExecuteTransfer(ctx, connect.NewRequest(&api.ExecuteTransferRequest{GroupID: g.ID, TransferEventID: req.Msg.TransferEventID}))
	if err != nil {
		t.Fatalf("ExecuteTransfer failed: %v", err)
	}
	if exec.Msg.Success || exec.Msg.RejectionCode != string(models.RejectTransferNotApproved) {
		t.Errorf("execute before approval = %+v", exec.Msg)
	}

	for i := 1; i <= 4; i++ {
		vote := connect.NewRequest(&api.VoteOnTransferRequest{
			GroupID:     g.ID,
			ConsensusID: req.Msg.ConsensusID,
			Vote:        string(models.VoteApprove),
		})
		vote.Header().Set("Authorization", c.token(t, auth.Actor{ID: fmt.Sprintf("c%d", i)}))
		res, err := c.transfer.VoteOnTransfer(ctx, vote)
		if err != nil {
			t.Fatalf("VoteOnTransfer(c%d) failed: %v", i, err)
		}
		if !res.Msg.Success || res.Msg.CurrentApprovals != i || res.Msg.ConsensusReached != (i == 4) {
			t.Fatalf("vote %d = %+v", i, res.Msg)
		}
	}

	dup, err := c.transfer.VoteOnTransfer(ctx, connect.NewRequest(&api.VoteOnTransferRequest{
		GroupID: g.ID, ConsensusID: req.Msg.ConsensusID, MemberID: "c1", Vote: string(models.VoteApprove),
	}))
	if err != nil {
		t.Fatalf("VoteOnTransfer failed: %v", err)
	}
	if dup.Msg.Success || dup.Msg.RejectionCode == "" {
		t.Errorf("vote after consensus = %+v, want rejection", dup.Msg)
	}

	memberApproval := connect.NewRequest(&api.ApproveTransferRequest{
		GroupID: g.ID, ConsensusID: req.Msg.ConsensusID, OperationalReason: "unidad lista", Approved: true,
	})
	memberApproval.Header().Set("Authorization", c.token(t, auth.Actor{ID: "c1", Role: auth.RoleMember}))
	if _, err := c.transfer.ApproveTransfer(ctx, memberApproval); connect.CodeOf(err) != connect.CodePermissionDenied {
		t.Errorf("member approval error = %v, want permission denied", err)
	}

	approval := connect.NewRequest(&api.ApproveTransferRequest{
		GroupID: g.ID, ConsensusID: req.Msg.ConsensusID, OperationalReason: "unidad lista", Approved: true,
	})
	approval.Header().Set("Authorization", c.token(t, auth.Actor{ID: "ops-1", Role: auth.RoleOperator}))
	approved, err := c.transfer.ApproveTransfer(ctx, approval)
	if err != nil {
		t.Fatalf("ApproveTransfer failed: %v", err)
	}
	if !approved.Msg.Success || !approved.Msg.CanExecute || approved.Msg.TransferStatus != string(models.TransferApproved) {
		t.Fatalf("approval = %+v", approved.Msg)
	}

	exec, err = c.transfer.ExecuteTransfer(ctx, connect.NewRequest(&api.ExecuteTransferRequest{GroupID: g.ID, TransferEventID: req.Msg.TransferEventID}))
	if err != nil {
		t.Fatalf("ExecuteTransfer failed: %v", err)
	}
	if exec.Msg.Success || exec.Msg.RejectionCode != string(models.RejectInsufficientFunds) || exec.Msg.Shortfall != 5000 {
		t.Errorf("unfunded execution = %+v", exec.Msg)
	}

	c.payAll(t, g, 1000)
	exec, err = c.transfer.ExecuteTransfer(ctx, connect.NewRequest(&api.ExecuteTransferRequest{GroupID: g.ID, TransferEventID: req.Msg.TransferEventID}))
	if err != nil {
		t.Fatalf("ExecuteTransfer failed: %v", err)
	}
	if !exec.Msg.Success || len(exec.Msg.Schedule) != 5 {
		t.Fatalf("funded execution = %+v", exec.Msg)
	}

	got, err := c.tanda.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: g.ID}))
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	stored := got.Msg.Group
	if stored.Transfers[0].Status != string(models.TransferExecuted) {
		t.Errorf("transfer status = %s", stored.Transfers[0].Status)
	}
	if ca := stored.Consensus[0].CompanyApproval; ca == nil || ca.ApprovedBy != "ops-1" {
		t.Errorf("company approval = %+v", ca)
	}
	for _, m := range stored.Members {
		switch m.ClientID {
		case "c5":
			if m.DeliveryMonth != 2 {
				t.Errorf("receiver month = %d, want 2", m.DeliveryMonth)
			}
		case "c2":
			if m.DeliveryMonth != 3 {
				t.Errorf("ceder month = %d, want 3", m.DeliveryMonth)
			}
		}
	}
}

func TestTransferService_ActorRules(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	g := c.createFullGroup(t, 3)

	req, err := c.transfer.RequestTransfer(ctx, connect.NewRequest(&api.RequestTransferRequest{
		GroupID: g.ID, FromMemberID: "c1", ToMemberID: "c3", Reason: "viaje",
	}))
	if err != nil {
		t.Fatalf("RequestTransfer failed: %v", err)
	}

	onBehalf := connect.NewRequest(&api.VoteOnTransferRequest{
		GroupID: g.ID, ConsensusID: req.Msg.ConsensusID, MemberID: "c2", Vote: string(models.VoteApprove),
	})
	onBehalf.Header().Set("Authorization", c.token(t, auth.Actor{ID: "c1"}))
	if _, err := c.transfer.VoteOnTransfer(ctx, onBehalf); connect.CodeOf(err) != connect.CodePermissionDenied {
		t.Errorf("vote on behalf error = %v, want permission denied", err)
	}

	bad := connect.NewRequest(&api.VoteOnTransferRequest{
		GroupID: g.ID, ConsensusID: req.Msg.ConsensusID, Vote: string(models.VoteApprove),
	})
	bad.Header().Set("Authorization", "Bearer forged")
	if _, err := c.transfer.VoteOnTransfer(ctx, bad); connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Errorf("forged token error = %v, want unauthenticated", err)
	}

	anonymous := connect.NewRequest(&api.VoteOnTransferRequest{
		GroupID: g.ID, ConsensusID: req.Msg.ConsensusID, MemberID: "c2", Vote: string(models.VoteApprove),
	})
	if _, err := c.anonTransfer.VoteOnTransfer(ctx, anonymous); connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Errorf("vote without token error = %v, want unauthenticated", err)
	}

	operatorVote, err := c.transfer.VoteOnTransfer(ctx, connect.NewRequest(&api.VoteOnTransferRequest{
		GroupID: g.ID, ConsensusID: req.Msg.ConsensusID, Vote: string(models.VoteApprove),
	}))
	if connect.CodeOf(err) != connect.CodeNotFound {
		t.Errorf("operator vote without member = %+v, %v, want not found", operatorVote, err)
	}

	missing := connect.NewRequest(&api.VoteOnTransferRequest{
		GroupID: g.ID, ConsensusID: "missing", MemberID: "c2", Vote: string(models.VoteApprove),
	})
	if _, err := c.transfer.VoteOnTransfer(ctx, missing); connect.CodeOf(err) != connect.CodeNotFound {
		t.Errorf("unknown consensus error = %v, want not found", err)
	}
}

func TestTransferService_RequiresToken(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	g := c.createFullGroup(t, 3)

	req, err := c.transfer.RequestTransfer(ctx, connect.NewRequest(&api.RequestTransferRequest{
		GroupID: g.ID, FromMemberID: "c1", ToMemberID: "c3", Reason: "viaje",
	}))
	if err != nil {
		t.Fatalf("RequestTransfer failed: %v", err)
	}
	for i := 1; i <= req.Msg.RequiredApprovals; i++ {
		vote := connect.NewRequest(&api.VoteOnTransferRequest{
			GroupID: g.ID, ConsensusID: req.Msg.ConsensusID, Vote: string(models.VoteApprove),
		})
		vote.Header().Set("Authorization", c.token(t, auth.Actor{ID: fmt.Sprintf("c%d", i)}))
		if _, err := c.transfer.VoteOnTransfer(ctx, vote); err != nil {
			t.Fatalf("VoteOnTransfer(c%d) failed: %v", i, err)
		}
	}

	_, err = c.anonTransfer.ApproveTransfer(ctx, connect.NewRequest(&api.ApproveTransferRequest{
		GroupID:           g.ID,
		ConsensusID:       req.Msg.ConsensusID,
		ApproverID:        "ops-1",
		OperationalReason: "sin token",
		Approved:          true,
	}))
	if connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Fatalf("approval without token error = %v, want unauthenticated", err)
	}

	got, err := c.tanda.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: g.ID}))
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if ca := got.Msg.Group.Consensus[0].CompanyApproval; ca != nil {
		t.Errorf("company approval recorded without token: %+v", ca)
	}

	if _, err := c.anonTanda.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{
		Name: "g", Capacity: 4, PackageValue: 4000,
	})); connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Errorf("create group without token error = %v, want unauthenticated", err)
	}

	if _, err := c.simulation.SimulateGrid(ctx, connect.NewRequest(&api.SimulateGridRequest{
		Snapshot: api.Snapshot{TotalMembers: 4, MonthlyAmount: 1000},
		Horizon:  4,
	})); err != nil {
		t.Errorf("anonymous SimulateGrid failed: %v", err)
	}
}

func TestSimulationService_CapsOverride(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()

	// Month 1 has one freeze and a rescue within the default cap.
	events := []api.SimulationEvent{
		{Month: 1, Kind: string(models.EventFreeze), MemberIndex: 0},
		{Month: 1, Kind: string(models.EventRescue), Amount: 500},
	}
	noFreeze := 0.0
	resp, err := c.simulation.SimulateScenario(ctx, connect.NewRequest(&api.SimulateScenarioRequest{
		Snapshot: api.Snapshot{TotalMembers: 10, MonthlyAmount: 1000},
		Horizon:  6,
		Policy:   string(models.PolicyFIFO),
		Events:   events,
		Caps:     &api.Caps{FreezeMaxPct: &noFreeze},
	}))
	if err != nil {
		t.Fatalf("SimulateScenario failed: %v", err)
	}
	m := resp.Msg.Result.Metrics
	if m.DeficitMonths != 0 {
		t.Errorf("deficit months = %d, want 0 with freezes disabled", m.DeficitMonths)
	}
	if m.RescuesUsed != 1 {
		t.Errorf("rescues used = %d, want 1 under the default rescue cap", m.RescuesUsed)
	}
	if m.AwardsMade != 6 {
		t.Errorf("awards made = %d, want 6 under the default active threshold", m.AwardsMade)
	}
}

func TestCapsFromAPI(t *testing.T) {
	fallback := models.Caps{ActiveThreshold: 0.75, FreezeMaxPct: 0.1, FreezeMaxMonths: 3, RescueCapPerMonth: 0.5}
	zero := 0.0
	months := 1

	tests := []struct {
		name string
		in   *api.Caps
		want models.Caps
	}{
		{name: "nil keeps fallback", in: nil, want: fallback},
		{name: "empty keeps fallback", in: &api.Caps{}, want: fallback},
		{
			name: "single field",
			in:   &api.Caps{FreezeMaxPct: &zero},
			want: models.Caps{ActiveThreshold: 0.75, FreezeMaxPct: 0, FreezeMaxMonths: 3, RescueCapPerMonth: 0.5},
		},
		{
			name: "two fields",
			in:   &api.Caps{FreezeMaxMonths: &months, RescueCapPerMonth: &zero},
			want: models.Caps{ActiveThreshold: 0.75, FreezeMaxPct: 0.1, FreezeMaxMonths: 1, RescueCapPerMonth: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := capsFromAPI(tt.in, fallback); got != tt.want {
				t.Errorf("capsFromAPI() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSimulationService_Grid(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()

	req := &api.SimulateGridRequest{
		Snapshot: api.Snapshot{TotalMembers: 12, MonthlyAmount: 1000},
		Horizon:  24,
	}
	first, err := c.simulation.SimulateGrid(ctx, connect.NewRequest(req))
	if err != nil {
		t.Fatalf("SimulateGrid failed: %v", err)
	}
	want := []string{"plus10-rescue", "base-fifo", "minus10-compliance"}
	if len(first.Msg.Results) != len(want) {
		t.Fatalf("got %d results, want %d", len(first.Msg.Results), len(want))
	}
	for i, name := range want {
		if first.Msg.Results[i].Name != name {
			t.Errorf("results[%d] = %s, want %s", i, first.Msg.Results[i].Name, name)
		}
		if first.Msg.Results[i].Target != 0.255 {
			t.Errorf("target = %v, want default market 0.255", first.Msg.Results[i].Target)
		}
	}
	if first.Msg.Cached {
		t.Error("first grid run reported cached")
	}

	second, err := c.simulation.SimulateGrid(ctx, connect.NewRequest(req))
	if err != nil {
		t.Fatalf("SimulateGrid failed: %v", err)
	}
	if !second.Msg.Cached || second.Msg.Results[0].IRRAnnual != first.Msg.Results[0].IRRAnnual {
		t.Errorf("second run cached=%v irr=%v", second.Msg.Cached, second.Msg.Results[0].IRRAnnual)
	}

	_, err = c.simulation.SimulateGrid(ctx, connect.NewRequest(&api.SimulateGridRequest{
		Snapshot: api.Snapshot{TotalMembers: 12, MonthlyAmount: 1000},
		Horizon:  24,
		Target:   api.TargetSpec{Market: "jalisco"},
	}))
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Errorf("unknown market error = %v, want invalid argument", err)
	}
}

func TestSimulationService_StoredGroupScenario(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	g := c.createFullGroup(t, 4)

	resp, err := c.simulation.SimulateScenario(ctx, connect.NewRequest(&api.SimulateScenarioRequest{
		Snapshot: api.Snapshot{GroupID: g.ID},
		Horizon:  4,
		Policy:   string(models.PolicyFIFO),
	}))
	if err != nil {
		t.Fatalf("SimulateScenario failed: %v", err)
	}
	res := resp.Msg.Result
	if res.Target < 0.2989 || res.Target > 0.2991 {
		t.Errorf("target = %v, want edomex 0.299", res.Target)
	}
	if len(res.CashFlows) != 5 || res.CashFlows[0] != -8000 {
		t.Errorf("cash flows = %v", res.CashFlows)
	}
	if len(res.Schedule) != 4 {
		t.Fatalf("projected schedule length = %d, want 4", len(res.Schedule))
	}
	for i, e := range res.Schedule {
		if e.Notes != "projected" || e.Month != i+1 || e.MemberID != fmt.Sprintf("c%d", i+1) {
			t.Errorf("schedule[%d] = %+v", i, e)
		}
	}

	_, err = c.simulation.SimulateScenario(ctx, connect.NewRequest(&api.SimulateScenarioRequest{
		Snapshot: api.Snapshot{TotalMembers: 4, MonthlyAmount: 1000},
		Horizon:  4,
		Policy:   "lottery",
	}))
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Errorf("unknown policy error = %v, want invalid argument", err)
	}

	_, err = c.simulation.SimulateScenario(ctx, connect.NewRequest(&api.SimulateScenarioRequest{
		Snapshot: api.Snapshot{GroupID: "missing"},
		Horizon:  4,
		Policy:   string(models.PolicyFIFO),
	}))
	if connect.CodeOf(err) != connect.CodeNotFound {
		t.Errorf("missing group error = %v, want not found", err)
	}
}
