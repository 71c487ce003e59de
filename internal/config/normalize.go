package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// NormalizationResult captures adjustments and warnings from the normalization pass.
type NormalizationResult struct{ Warnings []string }

// NormalizeConfig canonicalizes enumerated and path fields before defaults are applied.
func NormalizeConfig(c *Config) *NormalizationResult {
	res := &NormalizationResult{}
	if c == nil {
		return res
	}
	normalizeLogging(&c.Logging, res)
	normalizeSite(&c.Site, res)
	return res
}

func normalizeLogging(l *LoggingConfig, res *NormalizationResult) {
	if raw := string(l.Level); raw != "" {
		lvl := NormalizeLogLevel(raw)
		if !logLevelNormalizer.IsValid(raw) {
			res.Warnings = append(res.Warnings, warnUnknown("logging.level", raw, string(lvl)))
		} else if string(lvl) != raw {
			res.Warnings = append(res.Warnings, warnChanged("logging.level", raw, lvl))
		}
		l.Level = lvl
	}
	if raw := string(l.Format); raw != "" {
		f := NormalizeLogFormat(raw)
		if !logFormatNormalizer.IsValid(raw) {
			res.Warnings = append(res.Warnings, warnUnknown("logging.format", raw, string(f)))
		} else if string(f) != raw {
			res.Warnings = append(res.Warnings, warnChanged("logging.format", raw, f))
		}
		l.Format = f
	}
}

func normalizeSite(s *SiteConfig, res *NormalizationResult) {
	for field, p := range map[string]*string{
		"site.content_dir": &s.ContentDir,
		"site.static_dir":  &s.StaticDir,
		"site.template":    &s.Template,
		"site.output_dir":  &s.OutputDir,
	} {
		trimmed := strings.TrimSpace(*p)
		if trimmed == "" {
			*p = ""
			continue
		}
		cleaned := filepath.Clean(trimmed)
		if cleaned != *p {
			res.Warnings = append(res.Warnings, warnChanged(field, *p, cleaned))
			*p = cleaned
		}
	}
	s.BasePath = strings.TrimSpace(s.BasePath)
}

func warnChanged(field string, from, to any) string {
	return fmt.Sprintf("normalized %s from '%v' to '%v'", field, from, to)
}

func warnUnknown(field, value, def string) string {
	return fmt.Sprintf("unknown %s '%s', defaulting to %s", field, value, def)
}
