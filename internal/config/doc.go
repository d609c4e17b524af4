// Package config handles configuration loading for script-gateway.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable
// expansion. The package provides validation and sensible defaults.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from SCRIPT_GATEWAY_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/script-gateway/gateway.yaml
//  3. ~/.config/script-gateway/gateway.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${SCRIPT_GATEWAY_JWT_SECRET}"
//
// # Configuration Sections
//
//	server:
//	  http_addr: "0.0.0.0:8080"
//	  shutdown_timeout: "10s"
//
//	database:
//	  path: "/var/lib/script-gateway/gateway.db"
//
//	scripts:
//	  output_dir: "/var/lib/script-gateway/output"  # served under /static/
//	  default_lang: "en"
//
//	history:
//	  default_limit: 20
//
//	auth:
//	  jwt_secret: "${SCRIPT_GATEWAY_JWT_SECRET}"  # empty disables auth
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
//	metrics:
//	  enabled: false
//	  path: "/metrics"
//
// Duration values use Go's time.ParseDuration syntax.
package config
