// ABOUTME: Database schema definitions and migrations
// ABOUTME: Creates the per-user contacts, opportunities, interactions and profiles tables
package db

import (
	"database/sql"
	"fmt"
)

const schema = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS contacts (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	company TEXT NOT NULL DEFAULT '',
	role_title TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL DEFAULT '',
	linkedin_url TEXT NOT NULL DEFAULT '',
	twitter_url TEXT NOT NULL DEFAULT '',
	website TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	birthday DATE,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_contacts_user_created ON contacts(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_contacts_email ON contacts(user_id, email);

CREATE TABLE IF NOT EXISTS opportunities (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	contact_id TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	value REAL,
	currency TEXT NOT NULL DEFAULT '',
	stage TEXT NOT NULL CHECK (stage IN ('Lead', 'Contacted', 'Proposal', 'Negotiation', 'Won', 'Lost')),
	priority INTEGER CHECK (priority IS NULL OR priority BETWEEN 1 AND 5),
	expected_close_date DATE,
	actual_close_date DATE,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (contact_id) REFERENCES contacts(id)
);

CREATE INDEX IF NOT EXISTS idx_opportunities_user_created ON opportunities(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_opportunities_contact ON opportunities(contact_id);

CREATE TABLE IF NOT EXISTS interactions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	contact_id TEXT NOT NULL,
	opportunity_id TEXT,
	type TEXT NOT NULL CHECK (type IN ('Email', 'Call', 'Meeting', 'Note', 'LinkedIn', 'Other')),
	date_of_interaction DATETIME NOT NULL,
	summary TEXT NOT NULL,
	follow_up_needed INTEGER NOT NULL DEFAULT 0,
	follow_up_date DATE,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (contact_id) REFERENCES contacts(id),
	FOREIGN KEY (opportunity_id) REFERENCES opportunities(id)
);

CREATE INDEX IF NOT EXISTS idx_interactions_user_date ON interactions(user_id, date_of_interaction);
CREATE INDEX IF NOT EXISTS idx_interactions_contact ON interactions(contact_id);

CREATE TABLE IF NOT EXISTS profiles (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL UNIQUE,
	time_zone TEXT NOT NULL DEFAULT '',
	currency TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

func InitSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}
