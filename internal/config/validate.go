package config

import "fmt"

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"text": true,
	"json": true,
}

func validateLogLevel(level string) error {
	if !validLogLevels[level] {
		return fmt.Errorf("unsupported log level '%s': supported levels are debug, info, warn, error", level)
	}
	return nil
}

func validateLogFormat(format string) error {
	if !validLogFormats[format] {
		return fmt.Errorf("unsupported log format '%s': supported formats are text, json", format)
	}
	return nil
}

// validateResourceDirs rejects empty entries, which would silently search the working directory
func validateResourceDirs(dirs []string) error {
	for i, dir := range dirs {
		if dir == "" {
			return fmt.Errorf("resource directory %d cannot be empty", i)
		}
	}
	return nil
}
