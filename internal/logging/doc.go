// Package logging provides the leveled logger used across the photo library
// service.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The level is read from DEBUG or LOG_LEVEL on first use. Components that want
// their lines tagged use For:
//
//	log := logging.For("cache")
//	log.Debug("thumbnail hit: %s", name)
package logging
