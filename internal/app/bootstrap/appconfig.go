// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for LangIS.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig handles
// framework-level settings (ports, TLS, logging, timeouts); AppConfig is
// everything specific to this application.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions
	SessionDomain string // Cookie domain (blank means current host)

	// CSRF protection
	CSRFKey string // 32-byte key for CSRF token signing

	// File storage configuration
	StorageType      string // Storage backend: "local" or "s3"
	StorageLocalPath string // Local storage path (e.g., "./uploads")
	StorageLocalURL  string // URL prefix for serving local files (e.g., "/files")

	// S3 configuration (only used if StorageType is "s3")
	StorageS3Region string
	StorageS3Bucket string
	StorageS3Prefix string

	// Base URL for OAuth callbacks
	BaseURL string // e.g., "https://langis.app" or "http://localhost:3000"

	// Google OAuth
	GoogleClientID     string
	GoogleClientSecret string

	// GitHub OAuth
	GitHubClientID     string
	GitHubClientSecret string

	// Admin bootstrap: a user with this email is promoted to admin on startup.
	AdminEmail string
}
