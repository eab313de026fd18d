// Package launcherprefs provides the typed settings core of a home-screen launcher.
//
// Each settings domain (debug, drawer, wallpaper, widgets, swipe points...) is an
// independent Store with typed keys and defaults, persisted through a pluggable
// Storage backend (memory, SQLite, PostgreSQL) with an optional snapshot Cache
// (in-memory, Redis). Stores are exported to and imported from a single backup
// document through a strict codec and the BackupManager.
package launcherprefs
