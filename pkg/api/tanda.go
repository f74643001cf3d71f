// Package api defines the request and response messages of the tanda Connect
// services. Messages are plain structs encoded with JSONCodec.
package api

import "time"

type Payment struct {
	ID     string    `json:"id"`
	Amount float64   `json:"amount"`
	Month  int       `json:"month"`
	Status string    `json:"status"`
	Method string    `json:"method"`
	PaidAt time.Time `json:"paid_at"`
}

type Member struct {
	ClientID            string    `json:"client_id"`
	Name                string    `json:"name"`
	Position            int       `json:"position"`
	MonthlyContribution float64   `json:"monthly_contribution"`
	TotalContributed    float64   `json:"total_contributed"`
	DeliveryMonth       int       `json:"delivery_month"`
	DeliveryStatus      string    `json:"delivery_status"`
	Active              bool      `json:"active"`
	JoinedAt            time.Time `json:"joined_at"`
	Payments            []Payment `json:"payments,omitempty"`
}

type ScheduleEntry struct {
	Month             int       `json:"month"`
	MemberID          string    `json:"member_id"`
	MemberName        string    `json:"member_name"`
	MemberPosition    int       `json:"member_position"`
	ScheduledDate     time.Time `json:"scheduled_date"`
	Status            string    `json:"status"`
	RequiredAmount    float64   `json:"required_amount"`
	ContributedAmount float64   `json:"contributed_amount"`
	RemainingAmount   float64   `json:"remaining_amount"`
	Notes             string    `json:"notes,omitempty"`
}

type Group struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Capacity      int             `json:"capacity"`
	MonthlyAmount float64         `json:"monthly_amount"`
	TotalAmount   float64         `json:"total_amount"`
	StartDate     time.Time       `json:"start_date"`
	CurrentMonth  int             `json:"current_month"`
	Status        string          `json:"status"`
	Market        string          `json:"market"`
	EcosystemID   string          `json:"ecosystem_id,omitempty"`
	Leader        string          `json:"leader,omitempty"`
	Members       []Member        `json:"members"`
	Schedule      []ScheduleEntry `json:"schedule"`
	Transfers     []Transfer      `json:"transfers,omitempty"`
	Consensus     []Consensus     `json:"consensus,omitempty"`
	CreatedAt     int64           `json:"created_at"`
}

type CreateGroupRequest struct {
	Name         string    `json:"name"`
	Capacity     int       `json:"capacity"`
	PackageValue float64   `json:"package_value"`
	StartDate    time.Time `json:"start_date"`
	Market       string    `json:"market,omitempty"`
	EcosystemID  string    `json:"ecosystem_id,omitempty"`
	Leader       string    `json:"leader,omitempty"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"group_id"`
}

type DeleteGroupResponse struct{}

type AddMemberRequest struct {
	GroupID           string `json:"group_id"`
	ClientID          string `json:"client_id"`
	Name              string `json:"name"`
	PreferredPosition int    `json:"preferred_position,omitempty"`
}

type AddMemberResponse struct {
	Position int    `json:"position"`
	Group    *Group `json:"group"`
}

type RecordPaymentRequest struct {
	GroupID  string  `json:"group_id"`
	ClientID string  `json:"client_id"`
	Amount   float64 `json:"amount"`
	Method   string  `json:"method,omitempty"`
}

type RecordPaymentResponse struct {
	Payment     Payment `json:"payment"`
	NewTotal    float64 `json:"new_total"`
	EntryStatus string  `json:"entry_status"`
}

type ExecuteDeliveryRequest struct {
	GroupID  string `json:"group_id"`
	ClientID string `json:"client_id"`
}

type ExecuteDeliveryResponse struct {
	Success         bool      `json:"success"`
	Message         string    `json:"message,omitempty"`
	RejectionCode   string    `json:"rejection_code,omitempty"`
	DeliveryID      string    `json:"delivery_id,omitempty"`
	Month           int       `json:"month"`
	DeliveredAmount float64   `json:"delivered_amount"`
	DeliveredAt     time.Time `json:"delivered_at"`
	CurrentMonth    int       `json:"current_month"`
	GroupStatus     string    `json:"group_status"`
}

type GetStatsRequest struct{}

type GetStatsResponse struct {
	ActiveGroups        int     `json:"active_groups"`
	TotalMembers        int     `json:"total_members"`
	CompletedDeliveries int     `json:"completed_deliveries"`
	PendingDeliveries   int     `json:"pending_deliveries"`
	TotalValue          float64 `json:"total_value"`
	FundsCollected      float64 `json:"funds_collected"`
}

type UpcomingDelivery struct {
	GroupID          string    `json:"group_id"`
	GroupName        string    `json:"group_name"`
	MemberID         string    `json:"member_id"`
	MemberName       string    `json:"member_name"`
	Month            int       `json:"month"`
	ScheduledDate    time.Time `json:"scheduled_date"`
	ReadyForDelivery bool      `json:"ready_for_delivery"`
}

type ListUpcomingDeliveriesRequest struct{}

type ListUpcomingDeliveriesResponse struct {
	Deliveries []UpcomingDelivery `json:"deliveries"`
}
