package aws

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/xdg"
	"github.com/google/renameio/v2"
	ini "gopkg.in/ini.v1"

	errUtils "github.com/serverless/sfauth/errors"
	log "github.com/serverless/sfauth/pkg/logger"
)

const (
	PermissionRWX = 0o700
	PermissionRW  = 0o600

	// DefaultProfile is the profile used when none is given.
	DefaultProfile = "default"

	// Logging keys.
	logKeyProfile = "profile"
	logKeySection = "section"
	logKeyPath    = "path"
)

// ConfigStore reads and writes the AWS CLI config file and the JSON caches next to it.
// Writes keep the file byte-compatible with what the AWS CLI produces.
type ConfigStore struct {
	homeDir string
}

// NewConfigStore returns a ConfigStore rooted at the user's home directory.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{homeDir: xdg.Home}
}

// NewConfigStoreWithHome returns a ConfigStore rooted at homeDir.
func NewConfigStoreWithHome(homeDir string) *ConfigStore {
	return &ConfigStore{homeDir: homeDir}
}

func (s *ConfigStore) home() (string, error) {
	if s.homeDir != "" {
		return s.homeDir, nil
	}
	if xdg.Home != "" {
		return xdg.Home, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: %w", errUtils.ErrGetHomeDir, err)
	}
	return home, nil
}

// ConfigPath returns $AWS_CONFIG_FILE as an absolute path, or ~/.aws/config.
func (s *ConfigStore) ConfigPath() (string, error) {
	if env := os.Getenv("AWS_CONFIG_FILE"); env != "" {
		abs, err := filepath.Abs(env)
		if err != nil {
			return "", fmt.Errorf("%w: %w", errUtils.ErrResolveConfigPath, err)
		}
		return abs, nil
	}

	home, err := s.home()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".aws", "config"), nil
}

// LoginCacheDir is where console login sessions are cached.
func (s *ConfigStore) LoginCacheDir() (string, error) {
	home, err := s.home()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".aws", "login", "cache"), nil
}

// SSOCacheDir holds both SSO client registrations and SSO tokens.
func (s *ConfigStore) SSOCacheDir() (string, error) {
	home, err := s.home()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".aws", "sso", "cache"), nil
}

// ProfileSectionName returns the config section holding a profile.
func ProfileSectionName(profile string) string {
	if profile == "" || profile == DefaultProfile {
		return DefaultProfile
	}
	return "profile " + profile
}

// SSOSessionSectionName returns the config section holding an sso-session.
func SSOSessionSectionName(session string) string {
	return "sso-session " + session
}

// LoadINIFile loads an INI file with raw values: '#' and ';' after a value and surrounding quotes
// are part of the value, as the AWS CLI reads them.
func LoadINIFile(path string) (*ini.File, error) {
	return ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:     true,
		PreserveSurroundedQuote: true,
		Loose:                   true,
	}, path)
}

// GetSectionValue looks up key in sectionName. A missing file, section, or key is reported as not found.
func (s *ConfigStore) GetSectionValue(sectionName, key, filePath string) (string, bool, error) {
	if _, err := os.Stat(filePath); errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}

	cfg, err := LoadINIFile(filePath)
	if err != nil {
		return "", false, fmt.Errorf("%w: %s: %w", errUtils.ErrLoadConfigFile, filePath, err)
	}

	want := normalizeSectionName(sectionName)
	for _, section := range cfg.Sections() {
		if normalizeSectionName(section.Name()) != want {
			continue
		}
		if !section.HasKey(key) {
			continue
		}
		return section.Key(key).String(), true, nil
	}
	return "", false, nil
}

// normalizeSectionName turns `sso-session "foo"` into `sso-session foo`.
func normalizeSectionName(name string) string {
	name = strings.TrimSpace(name)
	kind, rest, found := strings.Cut(name, " ")
	if !found {
		return name
	}
	rest = strings.TrimSpace(rest)
	if len(rest) >= 2 && strings.HasPrefix(rest, `"`) && strings.HasSuffix(rest, `"`) {
		rest = rest[1 : len(rest)-1]
	}
	return kind + " " + rest
}

// UpsertSection sets keys in sectionName. A nil value deletes the key. Lines outside the
// touched keys, comments and other sections are kept verbatim.
func (s *ConfigStore) UpsertSection(sectionName string, values map[string]*string, filePath string) error {
	if strings.ContainsAny(sectionName, "[]\n") || strings.TrimSpace(sectionName) == "" {
		return fmt.Errorf("%w: %q", errUtils.ErrInvalidSectionName, sectionName)
	}

	if err := os.MkdirAll(filepath.Dir(filePath), PermissionRWX); err != nil {
		return fmt.Errorf("%w: %w", errUtils.ErrCreateConfigDir, err)
	}

	content, err := os.ReadFile(filePath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s: %w", errUtils.ErrLoadConfigFile, filePath, err)
	}

	updated := upsertLines(splitLines(string(content)), sectionName, values)

	log.Debug("Updating AWS config section", logKeySection, sectionName, logKeyPath, filePath, "keys", len(values))

	if err := renameio.WriteFile(filePath, []byte(updated), PermissionRW); err != nil {
		return fmt.Errorf("%w: %s: %w", errUtils.ErrWriteConfigFile, filePath, err)
	}
	// Mode must not depend on the umask.
	if err := os.Chmod(filePath, PermissionRW); err != nil {
		return fmt.Errorf("%w: %s: %w", errUtils.ErrWriteConfigFile, filePath, err)
	}
	return nil
}

func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(content, "\n")
	// A trailing newline yields an empty last element that is not a real line.
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func sectionHeader(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 2 || trimmed[0] != '[' || trimmed[len(trimmed)-1] != ']' {
		return "", false
	}
	return normalizeSectionName(trimmed[1 : len(trimmed)-1]), true
}

func isCommentLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";")
}

func isIndented(line string) bool {
	return line != "" && (line[0] == ' ' || line[0] == '\t')
}

// lineKey returns the key of a `key = value` line, or false for anything else.
func lineKey(line string) (string, bool) {
	if isIndented(line) || isCommentLine(line) {
		return "", false
	}
	key, _, found := strings.Cut(line, "=")
	if !found {
		return "", false
	}
	key = strings.TrimSpace(key)
	return key, key != ""
}

func upsertLines(lines []string, sectionName string, values map[string]*string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	want := normalizeSectionName(sectionName)
	start := -1
	for i, line := range lines {
		if name, ok := sectionHeader(line); ok && name == want {
			start = i
			break
		}
	}

	if start == -1 {
		return appendSection(lines, sectionName, keys, values)
	}

	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if _, ok := sectionHeader(lines[i]); ok {
			end = i
			break
		}
	}

	body := append([]string(nil), lines[start+1:end]...)
	for _, key := range keys {
		body = upsertKey(body, key, values[key])
	}

	out := make([]string, 0, len(lines)+len(keys))
	out = append(out, lines[:start+1]...)
	out = append(out, body...)
	out = append(out, lines[end:]...)
	return joinLines(out)
}

// upsertKey applies a single key change to the lines of one section body.
func upsertKey(body []string, key string, value *string) []string {
	lastKey := -1
	for i := 0; i < len(body); i++ {
		k, ok := lineKey(body[i])
		if !ok {
			continue
		}
		if k != key {
			lastKey = lastLineOfEntry(body, i)
			continue
		}

		entryEnd := lastLineOfEntry(body, i)
		if value == nil {
			return append(body[:i], body[entryEnd+1:]...)
		}
		replaced := append([]string(nil), body[:i]...)
		replaced = append(replaced, formatKeyLine(key, *value))
		return append(replaced, body[entryEnd+1:]...)
	}

	if value == nil {
		return body
	}

	insertAt := lastKey + 1
	out := make([]string, 0, len(body)+1)
	out = append(out, body[:insertAt]...)
	out = append(out, formatKeyLine(key, *value))
	return append(out, body[insertAt:]...)
}

// lastLineOfEntry returns the index of the last continuation line belonging to the key at i.
func lastLineOfEntry(body []string, i int) int {
	last := i
	for j := i + 1; j < len(body); j++ {
		if !isIndented(body[j]) || strings.TrimSpace(body[j]) == "" {
			break
		}
		last = j
	}
	return last
}

func appendSection(lines []string, sectionName string, keys []string, values map[string]*string) string {
	out := append([]string(nil), lines...)
	if len(out) > 0 && strings.TrimSpace(out[len(out)-1]) != "" {
		out = append(out, "")
	}
	out = append(out, "["+sectionName+"]")
	for _, key := range keys {
		if values[key] == nil {
			continue
		}
		out = append(out, formatKeyLine(key, *values[key]))
	}
	return joinLines(out)
}

func formatKeyLine(key, value string) string {
	return key + " = " + value
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// ReadCacheFile decodes the JSON cache at path into v. A missing file returns false without error.
func ReadCacheFile(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", errUtils.ErrReadCacheFile, path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("%w: %s: %w", errUtils.ErrReadCacheFile, path, err)
	}
	return true, nil
}

// WriteCacheFile writes v as 2-space indented JSON. The parent directory is created owner-only.
func WriteCacheFile(path string, v any, mode os.FileMode) error {
	if mode == 0 {
		mode = PermissionRW
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("%w: %w", errUtils.ErrWriteCacheFile, err)
	}
	data := bytes.TrimRight(buf.Bytes(), "\n")

	if err := os.MkdirAll(filepath.Dir(path), PermissionRWX); err != nil {
		return fmt.Errorf("%w: %w", errUtils.ErrCreateConfigDir, err)
	}
	if err := renameio.WriteFile(path, data, mode); err != nil {
		return fmt.Errorf("%w: %s: %w", errUtils.ErrWriteCacheFile, path, err)
	}
	if err := os.Chmod(path, mode); err != nil {
		return fmt.Errorf("%w: %s: %w", errUtils.ErrWriteCacheFile, path, err)
	}
	return nil
}
