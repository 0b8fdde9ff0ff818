// Package config provides configuration management for deepfetch.
// It defines defaults for fetching and crawling, validates user-supplied
// values, resolves XDG directories for persistent data, and loads the
// optional .deepfetch.yaml file with per-site crawl overrides.
package config
