package sqlite

import "database/sql"

// schema sets up the tables on startup. Every table hangs off groups with
// ON DELETE CASCADE, so deleting a group removes everything it owns.
// Timestamps are Unix milliseconds; 0 means unset.
const schema = `
CREATE TABLE IF NOT EXISTS groups (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    capacity INTEGER NOT NULL,
    monthly_amount REAL NOT NULL,
    total_amount REAL NOT NULL,
    start_date INTEGER NOT NULL,
    current_month INTEGER NOT NULL,
    status TEXT NOT NULL,
    market TEXT NOT NULL DEFAULT '',
    ecosystem_id TEXT NOT NULL DEFAULT '',
    leader TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS members (
    group_id TEXT NOT NULL,
    client_id TEXT NOT NULL,
    name TEXT NOT NULL,
    position INTEGER NOT NULL,
    monthly_contribution REAL NOT NULL,
    total_contributed REAL NOT NULL,
    delivery_month INTEGER NOT NULL,
    delivery_status TEXT NOT NULL,
    active INTEGER NOT NULL,
    frozen_months INTEGER NOT NULL,
    joined_at INTEGER NOT NULL,
    last_payment INTEGER NOT NULL,
    PRIMARY KEY (group_id, client_id),
    UNIQUE (group_id, position),
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS payments (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL,
    member_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    amount REAL NOT NULL,
    month INTEGER NOT NULL,
    status TEXT NOT NULL,
    method TEXT NOT NULL,
    paid_at INTEGER NOT NULL,
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS schedule_entries (
    group_id TEXT NOT NULL,
    member_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    month INTEGER NOT NULL,
    member_name TEXT NOT NULL,
    member_position INTEGER NOT NULL,
    scheduled_date INTEGER NOT NULL,
    status TEXT NOT NULL,
    required_amount REAL NOT NULL,
    contributed_amount REAL NOT NULL,
    remaining_amount REAL NOT NULL,
    notes TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (group_id, member_id),
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS transfers (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    type TEXT NOT NULL,
    from_member_id TEXT NOT NULL,
    to_member_id TEXT NOT NULL,
    from_position INTEGER NOT NULL,
    to_position INTEGER NOT NULL,
    reason TEXT NOT NULL,
    requested_by TEXT NOT NULL,
    status TEXT NOT NULL,
    consensus_id TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    executed_at INTEGER NOT NULL,
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS consensus_requests (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    transfer_event_id TEXT NOT NULL,
    requested_at INTEGER NOT NULL,
    expires_at INTEGER NOT NULL,
    required_approvals INTEGER NOT NULL,
    current_approvals INTEGER NOT NULL,
    status TEXT NOT NULL,
    closed_reason TEXT NOT NULL DEFAULT '',
    has_company_approval INTEGER NOT NULL DEFAULT 0,
    approved_by TEXT NOT NULL DEFAULT '',
    approved_at INTEGER NOT NULL DEFAULT 0,
    operational_reason TEXT NOT NULL DEFAULT '',
    approved INTEGER NOT NULL DEFAULT 0,
    approval_notes TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS consensus_votes (
    consensus_id TEXT NOT NULL,
    member_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    member_name TEXT NOT NULL,
    vote TEXT NOT NULL,
    voted_at INTEGER NOT NULL,
    reason TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (consensus_id, member_id),
    FOREIGN KEY (consensus_id) REFERENCES consensus_requests(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_members_group_id ON members(group_id);
CREATE INDEX IF NOT EXISTS idx_payments_group_id ON payments(group_id);
CREATE INDEX IF NOT EXISTS idx_schedule_entries_group_id ON schedule_entries(group_id);
CREATE INDEX IF NOT EXISTS idx_transfers_group_id ON transfers(group_id);
CREATE INDEX IF NOT EXISTS idx_consensus_requests_group_id ON consensus_requests(group_id);
CREATE INDEX IF NOT EXISTS idx_consensus_votes_consensus_id ON consensus_votes(consensus_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
