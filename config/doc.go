// Package config handles application configuration loading and validation.
//
// Configuration is loaded from a YAML file and validated using struct tags.
// Barentswatch credentials may be supplied via the BARENTSWATCH_CLIENT_ID
// and BARENTSWATCH_CLIENT_SECRET environment variables, which take
// precedence over the file.
package config
