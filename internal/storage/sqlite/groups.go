package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/tandas/internal/models"
	"github.com/mmynk/tandas/internal/storage"
)

// CreateGroup persists a new group with everything it owns.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO groups (id, name, capacity, monthly_amount, total_amount, start_date,
			current_month, status, market, ecosystem_id, leader, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		group.ID, group.Name, group.Capacity, group.MonthlyAmount, group.TotalAmount,
		toMillis(group.StartDate), group.CurrentMonth, string(group.Status),
		group.Market, group.EcosystemID, group.Leader, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	if err := insertChildren(ctx, tx, group); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SaveGroup rewrites the group row and replaces all owned rows.
func (s *SQLiteStore) SaveGroup(ctx context.Context, group *models.Group) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE groups SET name = ?, capacity = ?, monthly_amount = ?, total_amount = ?,
			start_date = ?, current_month = ?, status = ?, market = ?, ecosystem_id = ?, leader = ?
		WHERE id = ?`,
		group.Name, group.Capacity, group.MonthlyAmount, group.TotalAmount,
		toMillis(group.StartDate), group.CurrentMonth, string(group.Status),
		group.Market, group.EcosystemID, group.Leader, group.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", storage.ErrGroupNotFound, group.ID)
	}

	if err := deleteChildren(ctx, tx, group.ID); err != nil {
		return err
	}
	if err := insertChildren(ctx, tx, group); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteGroup removes a group. Owned rows go with it via ON DELETE CASCADE.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, groupID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", groupID); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by ID, including all owned records.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return loadGroup(ctx, s.db, groupID)
}

// ListGroups returns every group ordered by creation time.
func (s *SQLiteStore) ListGroups(ctx context.Context) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM groups ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan group id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	groups := make([]*models.Group, 0, len(ids))
	for _, id := range ids {
		g, err := loadGroup(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}

func deleteChildren(ctx context.Context, tx *sql.Tx, groupID string) error {
	// Votes cascade from consensus_requests.
	for _, table := range []string{"members", "payments", "schedule_entries", "transfers", "consensus_requests"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE group_id = ?", groupID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

func insertChildren(ctx context.Context, tx *sql.Tx, g *models.Group) error {
	for _, m := range g.Members {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO members (group_id, client_id, name, position, monthly_contribution,
				total_contributed, delivery_month, delivery_status, active, frozen_months, joined_at, last_payment)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			g.ID, m.ClientID, m.Name, m.Position, m.MonthlyContribution, m.TotalContributed,
			m.DeliveryMonth, string(m.DeliveryStatus), boolToInt(m.Active), m.FrozenMonths,
			toMillis(m.JoinedAt), toMillis(m.LastPayment),
		)
		if err != nil {
			return fmt.Errorf("failed to insert member: %w", err)
		}

		for i := range m.Payments {
			p := &m.Payments[i]
			if p.ID == "" {
				p.ID = uuid.New().String()
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO payments (id, group_id, member_id, seq, amount, month, status, method, paid_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				p.ID, g.ID, m.ClientID, i, p.Amount, p.Month, string(p.Status), p.Method, toMillis(p.PaidAt),
			)
			if err != nil {
				return fmt.Errorf("failed to insert payment: %w", err)
			}
		}
	}

	for i, e := range g.Schedule {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO schedule_entries (group_id, member_id, seq, month, member_name, member_position,
				scheduled_date, status, required_amount, contributed_amount, remaining_amount, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			g.ID, e.MemberID, i, e.Month, e.MemberName, e.MemberPosition, toMillis(e.ScheduledDate),
			string(e.Status), e.RequiredAmount, e.ContributedAmount, e.RemainingAmount, e.Notes,
		)
		if err != nil {
			return fmt.Errorf("failed to insert schedule entry: %w", err)
		}
	}

	for i, t := range g.Transfers {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO transfers (id, group_id, seq, type, from_member_id, to_member_id, from_position,
				to_position, reason, requested_by, status, consensus_id, created_at, executed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, g.ID, i, string(t.Type), t.FromMemberID, t.ToMemberID, t.FromPosition, t.ToPosition,
			t.Reason, t.RequestedBy, string(t.Status), t.ConsensusID, toMillis(t.CreatedAt), toMillis(t.ExecutedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert transfer: %w", err)
		}
	}

	for i, c := range g.Consensus {
		var ca models.CompanyApproval
		if c.CompanyApproval != nil {
			ca = *c.CompanyApproval
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO consensus_requests (id, group_id, seq, transfer_event_id, requested_at, expires_at,
				required_approvals, current_approvals, status, closed_reason, has_company_approval,
				approved_by, approved_at, operational_reason, approved, approval_notes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, g.ID, i, c.TransferEventID, toMillis(c.RequestedAt), toMillis(c.ExpiresAt),
			c.RequiredApprovals, c.CurrentApprovals, string(c.Status), c.ClosedReason,
			boolToInt(c.CompanyApproval != nil), ca.ApprovedBy, toMillis(ca.ApprovedAt),
			ca.OperationalReason, boolToInt(ca.Approved), ca.Notes,
		)
		if err != nil {
			return fmt.Errorf("failed to insert consensus request: %w", err)
		}

		for j, v := range c.Votes {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO consensus_votes (consensus_id, member_id, seq, member_name, vote, voted_at, reason)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				c.ID, v.MemberID, j, v.MemberName, string(v.Vote), toMillis(v.VotedAt), v.Reason,
			)
			if err != nil {
				return fmt.Errorf("failed to insert consensus vote: %w", err)
			}
		}
	}
	return nil
}

// loadGroup reads the aggregate one table at a time, closing each result set
// before the next query.
func loadGroup(ctx context.Context, q queryer, groupID string) (*models.Group, error) {
	g := &models.Group{}
	var (
		startDate int64
		status    string
	)
	err := q.QueryRowContext(ctx,
		`SELECT id, name, capacity, monthly_amount, total_amount, start_date, current_month,
			status, market, ecosystem_id, leader, created_at
		FROM groups WHERE id = ?`,
		groupID,
	).Scan(&g.ID, &g.Name, &g.Capacity, &g.MonthlyAmount, &g.TotalAmount, &startDate,
		&g.CurrentMonth, &status, &g.Market, &g.EcosystemID, &g.Leader, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrGroupNotFound, groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	g.StartDate = fromMillis(startDate)
	g.Status = models.GroupStatus(status)

	if err := loadMembers(ctx, q, g); err != nil {
		return nil, err
	}
	if err := loadPayments(ctx, q, g); err != nil {
		return nil, err
	}
	if err := loadSchedule(ctx, q, g); err != nil {
		return nil, err
	}
	if err := loadTransfers(ctx, q, g); err != nil {
		return nil, err
	}
	if err := loadConsensus(ctx, q, g); err != nil {
		return nil, err
	}
	return g, nil
}

func loadMembers(ctx context.Context, q queryer, g *models.Group) error {
	rows, err := q.QueryContext(ctx,
		`SELECT client_id, name, position, monthly_contribution, total_contributed, delivery_month,
			delivery_status, active, frozen_months, joined_at, last_payment
		FROM members WHERE group_id = ? ORDER BY position`,
		g.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			m                   models.Member
			status              string
			active              int
			joinedAt, lastPayAt int64
		)
		if err := rows.Scan(&m.ClientID, &m.Name, &m.Position, &m.MonthlyContribution, &m.TotalContributed,
			&m.DeliveryMonth, &status, &active, &m.FrozenMonths, &joinedAt, &lastPayAt); err != nil {
			return fmt.Errorf("failed to scan member: %w", err)
		}
		m.DeliveryStatus = models.DeliveryStatus(status)
		m.Active = active != 0
		m.JoinedAt = fromMillis(joinedAt)
		m.LastPayment = fromMillis(lastPayAt)
		g.Members = append(g.Members, m)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate members: %w", err)
	}
	return nil
}

func loadPayments(ctx context.Context, q queryer, g *models.Group) error {
	rows, err := q.QueryContext(ctx,
		`SELECT id, member_id, amount, month, status, method, paid_at
		FROM payments WHERE group_id = ? ORDER BY member_id, seq`,
		g.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get payments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p      models.Payment
			status string
			paidAt int64
		)
		if err := rows.Scan(&p.ID, &p.MemberID, &p.Amount, &p.Month, &status, &p.Method, &paidAt); err != nil {
			return fmt.Errorf("failed to scan payment: %w", err)
		}
		p.Status = models.PaymentStatus(status)
		p.PaidAt = fromMillis(paidAt)
		if m := g.FindMember(p.MemberID); m != nil {
			m.Payments = append(m.Payments, p)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate payments: %w", err)
	}
	return nil
}

func loadSchedule(ctx context.Context, q queryer, g *models.Group) error {
	rows, err := q.QueryContext(ctx,
		`SELECT member_id, month, member_name, member_position, scheduled_date, status,
			required_amount, contributed_amount, remaining_amount, notes
		FROM schedule_entries WHERE group_id = ? ORDER BY seq`,
		g.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get schedule: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e         models.ScheduleEntry
			scheduled int64
			status    string
		)
		if err := rows.Scan(&e.MemberID, &e.Month, &e.MemberName, &e.MemberPosition, &scheduled, &status,
			&e.RequiredAmount, &e.ContributedAmount, &e.RemainingAmount, &e.Notes); err != nil {
			return fmt.Errorf("failed to scan schedule entry: %w", err)
		}
		e.ScheduledDate = fromMillis(scheduled)
		e.Status = models.EntryStatus(status)
		g.Schedule = append(g.Schedule, e)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate schedule: %w", err)
	}
	return nil
}

func loadTransfers(ctx context.Context, q queryer, g *models.Group) error {
	rows, err := q.QueryContext(ctx,
		`SELECT id, type, from_member_id, to_member_id, from_position, to_position, reason,
			requested_by, status, consensus_id, created_at, executed_at
		FROM transfers WHERE group_id = ? ORDER BY seq`,
		g.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get transfers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			t                   models.TransferEvent
			typ, status         string
			createdAt, executed int64
		)
		if err := rows.Scan(&t.ID, &typ, &t.FromMemberID, &t.ToMemberID, &t.FromPosition, &t.ToPosition,
			&t.Reason, &t.RequestedBy, &status, &t.ConsensusID, &createdAt, &executed); err != nil {
			return fmt.Errorf("failed to scan transfer: %w", err)
		}
		t.Type = models.TransferType(typ)
		t.Status = models.TransferStatus(status)
		t.CreatedAt = fromMillis(createdAt)
		t.ExecutedAt = fromMillis(executed)
		g.Transfers = append(g.Transfers, t)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate transfers: %w", err)
	}
	return nil
}

func loadConsensus(ctx context.Context, q queryer, g *models.Group) error {
	rows, err := q.QueryContext(ctx,
		`SELECT id, transfer_event_id, requested_at, expires_at, required_approvals, current_approvals,
			status, closed_reason, has_company_approval, approved_by, approved_at, operational_reason,
			approved, approval_notes
		FROM consensus_requests WHERE group_id = ? ORDER BY seq`,
		g.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get consensus requests: %w", err)
	}

	for rows.Next() {
		var (
			c                      models.ConsensusRequest
			ca                     models.CompanyApproval
			requestedAt, expiresAt int64
			approvedAt             int64
			status                 string
			hasApproval, approved  int
		)
		if err := rows.Scan(&c.ID, &c.TransferEventID, &requestedAt, &expiresAt, &c.RequiredApprovals,
			&c.CurrentApprovals, &status, &c.ClosedReason, &hasApproval, &ca.ApprovedBy, &approvedAt,
			&ca.OperationalReason, &approved, &ca.Notes); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan consensus request: %w", err)
		}
		c.RequestedAt = fromMillis(requestedAt)
		c.ExpiresAt = fromMillis(expiresAt)
		c.Status = models.ConsensusStatus(status)
		if hasApproval != 0 {
			ca.ApprovedAt = fromMillis(approvedAt)
			ca.Approved = approved != 0
			c.CompanyApproval = &ca
		}
		g.Consensus = append(g.Consensus, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate consensus requests: %w", err)
	}

	voteRows, err := q.QueryContext(ctx,
		`SELECT v.consensus_id, v.member_id, v.member_name, v.vote, v.voted_at, v.reason
		FROM consensus_votes v
		JOIN consensus_requests c ON c.id = v.consensus_id
		WHERE c.group_id = ?
		ORDER BY v.consensus_id, v.seq`,
		g.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get consensus votes: %w", err)
	}
	defer voteRows.Close()

	for voteRows.Next() {
		var (
			consensusID string
			v           models.ConsensusVote
			vote        string
			votedAt     int64
		)
		if err := voteRows.Scan(&consensusID, &v.MemberID, &v.MemberName, &vote, &votedAt, &v.Reason); err != nil {
			return fmt.Errorf("failed to scan consensus vote: %w", err)
		}
		v.Vote = models.VoteChoice(vote)
		v.VotedAt = fromMillis(votedAt)
		if c := g.FindConsensus(consensusID); c != nil {
			c.Votes = append(c.Votes, v)
		}
	}
	if err := voteRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate consensus votes: %w", err)
	}
	return nil
}
