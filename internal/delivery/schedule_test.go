package delivery

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mmynk/tandas/internal/models"
)

var start = time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)

func newGroup(capacity int, monthly float64) *models.Group {
	g := &models.Group{
		ID:            "g1",
		Name:          "Ruta Centro",
		Capacity:      capacity,
		MonthlyAmount: monthly,
		TotalAmount:   monthly * float64(capacity),
		StartDate:     start,
		CurrentMonth:  1,
		Status:        models.GroupActive,
	}
	for p := 1; p <= capacity; p++ {
		g.Members = append(g.Members, models.Member{
			ClientID:            fmt.Sprintf("c%d", p),
			Name:                fmt.Sprintf("Member %d", p),
			Position:            p,
			MonthlyContribution: monthly,
			DeliveryMonth:       p,
			DeliveryStatus:      models.DeliveryPending,
			Active:              true,
		})
	}
	Generate(g)
	return g
}

func TestGenerate(t *testing.T) {
	g := newGroup(4, 1000)

	if len(g.Schedule) != 4 {
		t.Fatalf("schedule length = %d, want 4", len(g.Schedule))
	}
	for i, e := range g.Schedule {
		if e.Month != i+1 || e.MemberPosition != i+1 {
			t.Errorf("entry %d month/position = %d/%d, want %d", i, e.Month, e.MemberPosition, i+1)
		}
		if !e.ScheduledDate.Equal(start.AddDate(0, i, 0)) {
			t.Errorf("entry %d date = %v, want %v", i, e.ScheduledDate, start.AddDate(0, i, 0))
		}
		if e.RequiredAmount != 4000 || e.RemainingAmount != 4000 {
			t.Errorf("entry %d amounts = %v/%v, want 4000/4000", i, e.RequiredAmount, e.RemainingAmount)
		}
	}
	if g.Schedule[0].Status != models.EntryReady {
		t.Errorf("current month entry = %s, want ready", g.Schedule[0].Status)
	}
	if g.Members[0].DeliveryStatus != models.DeliveryScheduled {
		t.Errorf("current month member = %s, want scheduled", g.Members[0].DeliveryStatus)
	}
	for _, e := range g.Schedule[1:] {
		if e.Status != models.EntryPending {
			t.Errorf("future entry %d = %s, want pending", e.Month, e.Status)
		}
	}
}

func TestApplyPayment(t *testing.T) {
	g := newGroup(3, 1000)
	m := g.FindMember("c3")

	m.TotalContributed = 2000
	ApplyPayment(g, m)
	entry := g.FindScheduleEntry("c3")
	if entry.RemainingAmount != 1000 || entry.Status != models.EntryPending {
		t.Errorf("after partial payment entry = %+v", entry)
	}

	m.TotalContributed = 3500
	ApplyPayment(g, m)
	if entry.RemainingAmount != 0 {
		t.Errorf("remaining = %v, want 0", entry.RemainingAmount)
	}
	if entry.Status != models.EntryReady || m.DeliveryStatus != models.DeliveryScheduled {
		t.Errorf("fully funded entry = %s / member %s, want ready/scheduled", entry.Status, m.DeliveryStatus)
	}
}

func TestDeliver(t *testing.T) {
	tests := []struct {
		name         string
		setup        func(g *models.Group)
		clientID     string
		wantErr      error
		validateFunc func(t *testing.T, g *models.Group, advanced bool)
	}{
		{
			name:     "due member advances the month",
			clientID: "c1",
			validateFunc: func(t *testing.T, g *models.Group, advanced bool) {
				if !advanced || g.CurrentMonth != 2 {
					t.Errorf("advanced = %v, current month = %d, want true/2", advanced, g.CurrentMonth)
				}
				if g.FindMember("c1").DeliveryStatus != models.DeliveryDelivered {
					t.Error("member not delivered")
				}
				if g.FindScheduleEntry("c1").Status != models.EntryDelivered {
					t.Error("entry not delivered")
				}
			},
		},
		{
			name: "early ready member keeps the month",
			setup: func(g *models.Group) {
				m := g.FindMember("c3")
				m.TotalContributed = 3000
				ApplyPayment(g, m)
			},
			clientID: "c3",
			validateFunc: func(t *testing.T, g *models.Group, advanced bool) {
				if advanced || g.CurrentMonth != 1 {
					t.Errorf("advanced = %v, current month = %d, want false/1", advanced, g.CurrentMonth)
				}
			},
		},
		{
			name: "last delivery completes the group",
			setup: func(g *models.Group) {
				g.CurrentMonth = 3
				Generate(g)
			},
			clientID: "c3",
			validateFunc: func(t *testing.T, g *models.Group, advanced bool) {
				if g.Status != models.GroupCompleted {
					t.Errorf("status = %s, want completed", g.Status)
				}
			},
		},
		{
			name:     "pending entry is not ready",
			clientID: "c2",
			wantErr:  ErrNotReady,
		},
		{
			name:     "unknown member",
			clientID: "nobody",
			wantErr:  ErrEntryNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGroup(3, 1000)
			if tt.setup != nil {
				tt.setup(g)
			}
			advanced, err := Deliver(g, tt.clientID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Deliver() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Deliver() error = %v", err)
			}
			tt.validateFunc(t, g, advanced)
		})
	}
}

func TestReassign(t *testing.T) {
	g := newGroup(5, 1000)
	g.CurrentMonth = 2

	if err := Reassign(g, "c5", "c2"); err != nil {
		t.Fatalf("Reassign() error = %v", err)
	}

	receiver := g.FindMember("c5")
	ceder := g.FindMember("c2")
	if receiver.DeliveryMonth != 3 || receiver.DeliveryStatus != models.DeliveryScheduled {
		t.Errorf("receiver = month %d %s, want 3 scheduled", receiver.DeliveryMonth, receiver.DeliveryStatus)
	}
	if ceder.DeliveryMonth != 4 || ceder.DeliveryStatus != models.DeliveryPending {
		t.Errorf("ceder = month %d %s, want 4 pending", ceder.DeliveryMonth, ceder.DeliveryStatus)
	}

	receiverEntry := g.FindScheduleEntry("c5")
	if receiverEntry.Month != 3 || receiverEntry.Status != models.EntryReady || !receiverEntry.ScheduledDate.Equal(start.AddDate(0, 2, 0)) {
		t.Errorf("receiver entry = %+v", receiverEntry)
	}
	cederEntry := g.FindScheduleEntry("c2")
	if cederEntry.Month != 4 || cederEntry.Status != models.EntryPending {
		t.Errorf("ceder entry = %+v", cederEntry)
	}

	for i := 1; i < len(g.Schedule); i++ {
		if g.Schedule[i].Month < g.Schedule[i-1].Month {
			t.Fatalf("schedule not sorted: %d before %d", g.Schedule[i-1].Month, g.Schedule[i].Month)
		}
	}

	if err := Reassign(g, "c5", "ghost"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Reassign() unknown ceder error = %v, want ErrEntryNotFound", err)
	}
}

func TestProject(t *testing.T) {
	g := newGroup(4, 1000)
	before := g.Clone()

	projected := Project(g, []models.Award{{Position: 3, Month: 1}, {Position: 1, Month: 2}})

	want := []struct {
		month    int
		position int
	}{{1, 3}, {2, 1}, {3, 2}, {4, 4}}
	if len(projected) != len(want) {
		t.Fatalf("projected length = %d, want %d", len(projected), len(want))
	}
	for i, w := range want {
		if projected[i].Month != w.month || projected[i].MemberPosition != w.position {
			t.Errorf("projected[%d] = month %d position %d, want %d/%d",
				i, projected[i].Month, projected[i].MemberPosition, w.month, w.position)
		}
	}

	for i := range g.Schedule {
		if g.Schedule[i] != before.Schedule[i] {
			t.Fatalf("Project mutated the stored schedule at %d", i)
		}
	}
}

func TestFund(t *testing.T) {
	g := newGroup(3, 1000)
	g.Members[0].TotalContributed = 0.1
	g.Members[1].TotalContributed = 0.2
	g.Members[2].TotalContributed = 1500

	if got := Fund(g).String(); got != "1500.3" {
		t.Errorf("Fund() = %s, want 1500.3", got)
	}
}

func TestUpcoming(t *testing.T) {
	g := newGroup(5, 1000)
	m := g.FindMember("c5")
	m.TotalContributed = 5000
	ApplyPayment(g, m)

	got := Upcoming(g)
	ids := make(map[string]bool)
	for _, e := range got {
		ids[e.MemberID] = true
	}
	for _, id := range []string{"c1", "c2", "c5"} {
		if !ids[id] {
			t.Errorf("expected %s in upcoming deliveries", id)
		}
	}
	if len(got) != 3 {
		t.Errorf("upcoming length = %d, want 3", len(got))
	}
}
