package config

// SiteConfig holds per-host overrides for crawl behavior. Some sites need
// a cookie or header to serve content, others need a tighter page cap.
type SiteConfig struct {
	// Cookie is an HTTP cookie sent with requests to this host.
	// Format: "name=value" or "name1=value1; name2=value2".
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers sent with requests to this host.
	Headers map[string]string `yaml:"headers,omitempty"`

	// MaxPagesPerSite overrides the global per-parent page cap for this
	// host. If zero, the global value is used.
	MaxPagesPerSite int `yaml:"maxPagesPerSite,omitempty"`

	// IgnorePatterns are URL path substrings to skip when following
	// internal links on this host.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`
}

// File represents the structure of the .deepfetch.yaml configuration file.
type File struct {
	// Sites maps hostnames to their overrides.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains overrides applied to every host unless the host
	// has its own entry.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the merged configuration for a hostname.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults

	if sc, ok := cf.Sites[host]; ok {
		if sc.Cookie != "" {
			result.Cookie = sc.Cookie
		}
		if sc.MaxPagesPerSite != 0 {
			result.MaxPagesPerSite = sc.MaxPagesPerSite
		}
		if len(sc.Headers) > 0 {
			// Copy into a fresh map; writing through result.Headers would
			// mutate the shared Defaults map.
			merged := make(map[string]string, len(cf.Defaults.Headers)+len(sc.Headers))
			for k, v := range cf.Defaults.Headers {
				merged[k] = v
			}
			for k, v := range sc.Headers {
				merged[k] = v
			}
			result.Headers = merged
		}
		if len(sc.IgnorePatterns) > 0 {
			result.IgnorePatterns = sc.IgnorePatterns
		}
	}

	return result
}
