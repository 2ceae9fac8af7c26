// Package database provides PostgreSQL access for dashboard-owned data.
//
// Platform entities (users, groups, posts, reports) live behind the core
// backend; the only local table is the audit trail of admin actions.
package database
