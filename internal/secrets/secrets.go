// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials for the oracle and lookup
// providers. Values come from three places, earlier ones winning: a
// directory of plain-text files (filename is the key, trimmed contents the
// value), the process environment, and a dotenv file. Values set in the
// config file beat all three (see Apply).
//
// Supported keys: gemini-api-key, deepseek-api-key, anthropic-api-key,
// semantic-scholar-api-key, crossref-mailto, openalex-email.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/pdiddy/refcheck/pkg/types"
)

// Key names, as used for files in the secrets directory.
const (
	GeminiAPIKey          = "gemini-api-key"
	DeepSeekAPIKey        = "deepseek-api-key"
	AnthropicAPIKey       = "anthropic-api-key"
	SemanticScholarAPIKey = "semantic-scholar-api-key"
	CrossRefMailto        = "crossref-mailto"
	OpenAlexEmail         = "openalex-email"
)

// envNames maps each key to its environment variable.
var envNames = map[string]string{
	GeminiAPIKey:          "GEMINI_API_KEY",
	DeepSeekAPIKey:        "DEEPSEEK_API_KEY",
	AnthropicAPIKey:       "ANTHROPIC_API_KEY",
	SemanticScholarAPIKey: "SEMANTIC_SCHOLAR_API_KEY",
	CrossRefMailto:        "CROSSREF_MAILTO",
	OpenAlexEmail:         "OPENALEX_EMAIL",
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadDotenv reads a dotenv file and returns the known keys it sets,
// translated from environment names to key names. A missing file yields
// an empty map.
func LoadDotenv(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	out := make(map[string]string)
	for key, envName := range envNames {
		if v := strings.TrimSpace(env[envName]); v != "" {
			out[key] = v
		}
	}
	return out, nil
}

// FromEnv returns the known keys set in the process environment.
func FromEnv() map[string]string {
	out := make(map[string]string)
	for key, envName := range envNames {
		if v := strings.TrimSpace(os.Getenv(envName)); v != "" {
			out[key] = v
		}
	}
	return out
}

// Gather loads every source and merges them so the secrets directory
// overrides the environment, which overrides the dotenv file.
func Gather(dir, dotenvPath string) (map[string]string, error) {
	files, err := Load(dir)
	if err != nil {
		return nil, err
	}
	dotenv, err := LoadDotenv(dotenvPath)
	if err != nil {
		return nil, err
	}
	return Merge(dotenv, FromEnv(), files), nil
}

// Merge combines maps left to right; later maps override earlier ones.
func Merge(maps ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// Apply copies secrets into cfg for every field the config file left empty.
func Apply(cfg *types.Config, s map[string]string) {
	fill := func(dst *string, key string) {
		if *dst == "" {
			*dst = s[key]
		}
	}
	fill(&cfg.Oracle.GeminiAPIKey, GeminiAPIKey)
	fill(&cfg.Oracle.DeepSeekAPIKey, DeepSeekAPIKey)
	fill(&cfg.Oracle.AnthropicAPIKey, AnthropicAPIKey)
	fill(&cfg.Lookup.SemanticScholarAPIKey, SemanticScholarAPIKey)
	fill(&cfg.Lookup.CrossRefMailto, CrossRefMailto)
	fill(&cfg.Lookup.OpenAlexEmail, OpenAlexEmail)
}
