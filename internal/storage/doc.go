// Package storage is the SQLite persistence layer. It implements the
// post, prefs and trends store contracts over a single database file
// with embedded migrations.
package storage
