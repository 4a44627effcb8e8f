package repository

// Migrations is the schema, applied in order at startup when
// DATABASE_MIGRATE_ON_START is set. Every statement is idempotent.
var Migrations = []string{
	createUsersTable,
	createUserProfilesTable,
	createEventsTable,
	createPaymentsTable,
	createSubscriptionsTable,
	createInvitationsTable,
	createNotificationsTable,
	createWishlistTable,
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	email         VARCHAR(255) NOT NULL UNIQUE,
	password_hash VARCHAR(255) NOT NULL,
	name          VARCHAR(100) NOT NULL,
	role          VARCHAR(20) NOT NULL CHECK (role IN ('organizer', 'subscriber', 'guest', 'admin')),
	is_active     BOOLEAN NOT NULL DEFAULT TRUE,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const createUserProfilesTable = `
CREATE TABLE IF NOT EXISTS user_profiles (
	user_id    UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
	phone      VARCHAR(32) NOT NULL DEFAULT '',
	bio        TEXT NOT NULL DEFAULT '',
	city       VARCHAR(100) NOT NULL DEFAULT '',
	avatar_url TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const createEventsTable = `
CREATE TABLE IF NOT EXISTS events (
	id           UUID PRIMARY KEY,
	organizer_id UUID NOT NULL REFERENCES users(id),
	name         VARCHAR(200) NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	location     VARCHAR(300) NOT NULL DEFAULT '',
	start_at     TIMESTAMPTZ NOT NULL,
	end_at       TIMESTAMPTZ NOT NULL,
	capacity     INTEGER NOT NULL CHECK (capacity > 0),
	sold_tickets INTEGER NOT NULL DEFAULT 0,
	ticket_price NUMERIC(12, 2) NOT NULL DEFAULT 0 CHECK (ticket_price >= 0),
	is_cancelled BOOLEAN NOT NULL DEFAULT FALSE,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT events_dates_check CHECK (end_at > start_at),
	CONSTRAINT events_sold_check CHECK (sold_tickets >= 0 AND sold_tickets <= capacity)
);
CREATE INDEX IF NOT EXISTS idx_events_organizer ON events(organizer_id);
CREATE INDEX IF NOT EXISTS idx_events_start_at ON events(start_at)`

const createPaymentsTable = `
CREATE TABLE IF NOT EXISTS payments (
	id             UUID PRIMARY KEY,
	user_id        UUID NOT NULL REFERENCES users(id),
	event_id       UUID NOT NULL REFERENCES events(id),
	amount         NUMERIC(12, 2) NOT NULL,
	discount       NUMERIC(12, 2) NOT NULL DEFAULT 0,
	currency       VARCHAR(3) NOT NULL,
	status         VARCHAR(20) NOT NULL CHECK (status IN ('SUCCESSFUL', 'FAILED', 'IN_PROGRESS', 'REFUND')),
	gateway        VARCHAR(20) NOT NULL DEFAULT '',
	gateway_ref    VARCHAR(255) NOT NULL DEFAULT '',
	card_last4     VARCHAR(4) NOT NULL DEFAULT '',
	failure_reason TEXT NOT NULL DEFAULT '',
	refund_of      UUID REFERENCES payments(id),
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_payments_user_event ON payments(user_id, event_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_refund_of ON payments(refund_of) WHERE refund_of IS NOT NULL`

const createSubscriptionsTable = `
CREATE TABLE IF NOT EXISTS subscriptions (
	id           UUID PRIMARY KEY,
	user_id      UUID NOT NULL REFERENCES users(id),
	event_id     UUID NOT NULL REFERENCES events(id),
	payment_id   UUID UNIQUE REFERENCES payments(id),
	tickets      INTEGER NOT NULL CHECK (tickets > 0),
	is_cancelled BOOLEAN NOT NULL DEFAULT FALSE,
	cancelled_at TIMESTAMPTZ,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_subscriptions_user_event ON subscriptions(user_id, event_id)`

const createInvitationsTable = `
CREATE TABLE IF NOT EXISTS invitations (
	id         UUID PRIMARY KEY,
	event_id   UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
	email      VARCHAR(255) NOT NULL,
	user_id    UUID REFERENCES users(id),
	discount   NUMERIC(5, 2) NOT NULL DEFAULT 0 CHECK (discount >= 0 AND discount <= 100),
	message    TEXT NOT NULL DEFAULT '',
	created_by UUID NOT NULL REFERENCES users(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT invitations_event_email_key UNIQUE (event_id, email)
)`

const createNotificationsTable = `
CREATE TABLE IF NOT EXISTS notifications (
	id         UUID PRIMARY KEY,
	user_id    UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	event_id   UUID REFERENCES events(id) ON DELETE SET NULL,
	kind       VARCHAR(32) NOT NULL,
	message    TEXT NOT NULL,
	is_read    BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_notifications_user_unread ON notifications(user_id, is_read, created_at DESC)`

const createWishlistTable = `
CREATE TABLE IF NOT EXISTS wishlist (
	id         UUID PRIMARY KEY,
	user_id    UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	event_id   UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
	is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT wishlist_user_event_key UNIQUE (user_id, event_id)
)`
