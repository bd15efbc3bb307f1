// Package api defines the wire types shared by the HTTP server, the IPC
// surface, and the CLI.
//
// The structs here mirror the engine's view of the world but use stable
// camelCase JSON tags so that clients are insulated from internal renames.
// Converter helpers (FromStationStatuses, FromExportRows, FromMessages)
// translate engine values into these DTOs; the package never reaches back
// into the engine.
package api
