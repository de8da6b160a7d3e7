// Package config loads the service configuration with viper from defaults,
// an optional config.yaml and MESALIB_ prefixed environment variables, and
// validates it before any component is built.
package config
