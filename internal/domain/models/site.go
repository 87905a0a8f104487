// internal/domain/models/site.go
package models

// DefaultSiteName is used in page chrome when no override is configured.
const DefaultSiteName = "LangIS"
