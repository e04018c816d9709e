package config

//go:generate go tool go-enum --marshal --names

// Requested report rendering.
// ENUM(text, yaml)
type ReportFormat int
