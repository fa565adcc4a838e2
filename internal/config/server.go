package config

import "strings"

// DefaultCoverBaseURL is where the public catalog serves its cover images
const DefaultCoverBaseURL = "https://bookcart.azurewebsites.net/Upload"

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	TemplatesDir string
	StaticDir    string
	CoverBaseURL string
}

// LoadServerConfig loads server configuration from environment variables
func LoadServerConfig(getenv func(string) string) ServerConfig {
	port := getenv("PORT")
	if port == "" {
		port = "8080" // Default to port 8080
	}

	templatesDir := getenv("TEMPLATES_DIR")
	if templatesDir == "" {
		templatesDir = "templates"
	}

	staticDir := getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = "static"
	}

	coverBaseURL := strings.TrimRight(getenv("COVER_BASE_URL"), "/")
	if coverBaseURL == "" {
		coverBaseURL = DefaultCoverBaseURL
	}

	return ServerConfig{
		Port:         port,
		TemplatesDir: templatesDir,
		StaticDir:    staticDir,
		CoverBaseURL: coverBaseURL,
	}
}
