package rc

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	errUtils "github.com/serverless/sfauth/errors"
)

// notificationTimeLayout matches JavaScript's Date.prototype.toISOString.
const notificationTimeLayout = "2006-01-02T15:04:05.000Z"

// UserUpdate carries the fields of a user session to save. Empty fields are left untouched.
type UserUpdate struct {
	UserID         string
	Name           string
	Email          string
	Username       string
	IDToken        string
	AccessToken    string
	RefreshToken   string
	ExpiresAt      int64
	DefaultOrgName string
	// AccessKeyOrgName and AccessKeyOfOrg are saved together or not at all.
	AccessKeyOrgName string
	AccessKeyOfOrg   string
}

// LicenseKey is a license key to save for an org.
type LicenseKey struct {
	AccessKey string
	Label     string
	OrgName   string
	OrgID     string
}

// SaveAuthenticatedUser makes u the current user and merges the given fields into its session.
func (s *Store) SaveAuthenticatedUser(u UserUpdate) error {
	if u.UserID == "" {
		return s.missingField("userId")
	}

	user := jsonPath("users", u.UserID)
	dashboard := user + ".dashboard"

	return s.update(func(doc []byte) ([]byte, error) {
		p := patcher{doc: doc}
		p.set("userId", u.UserID)
		p.ensureObject("users")
		p.ensureObject(user)
		p.set(user+".userId", u.UserID)
		p.ensureObject(dashboard)
		p.ensureObject(dashboard + ".accessKeys")

		p.setIf(user+".name", u.Name)
		p.setIf(user+".email", u.Email)
		p.setIf(user+".username", u.Username)
		p.setIf(dashboard+".idToken", u.IDToken)
		p.setIf(dashboard+".refreshToken", u.RefreshToken)
		if u.ExpiresAt != 0 {
			p.set(dashboard+".expiresAt", u.ExpiresAt)
		}
		p.setIf(dashboard+".accessToken", u.AccessToken)
		p.setIf(user+".defaultOrgName", u.DefaultOrgName)
		if u.AccessKeyOrgName != "" && u.AccessKeyOfOrg != "" {
			p.set(dashboard+".accessKeys."+escapeKey(u.AccessKeyOrgName), u.AccessKeyOfOrg)
		}
		return p.result()
	})
}

// DeleteUser removes a user session and clears the current user.
func (s *Store) DeleteUser(userID string) error {
	if userID == "" {
		return s.missingField("userId")
	}
	return s.update(func(doc []byte) ([]byte, error) {
		p := patcher{doc: doc}
		p.delete(jsonPath("users", userID))
		p.setRaw("userId", "null")
		return p.result()
	})
}

// RemoveUserSession logs the current user out. The session itself is kept.
func (s *Store) RemoveUserSession() error {
	return s.update(func(doc []byte) ([]byte, error) {
		p := patcher{doc: doc}
		p.setRaw("userId", "null")
		return p.result()
	})
}

// SaveAccessKeyV2 saves a license key for its org, optionally making the org the default.
func (s *Store) SaveAccessKeyV2(key LicenseKey, isDefault bool) error {
	switch {
	case key.AccessKey == "":
		return s.missingField("accessKey")
	case key.OrgName == "":
		return s.missingField("orgName")
	case key.OrgID == "":
		return s.missingField("orgId")
	}

	org := jsonPath("accessKeys", "orgs", key.OrgName)
	return s.update(func(doc []byte) ([]byte, error) {
		p := patcher{doc: doc}
		p.ensureObject("accessKeys")
		p.ensureObject("accessKeys.orgs")
		p.ensureObject(org)
		p.set(org+".accessKey", key.AccessKey)
		p.set(org+".orgName", key.OrgName)
		p.set(org+".orgId", key.OrgID)
		p.setIf(org+".accessKeyV2Label", key.Label)
		if isDefault {
			p.set("accessKeys.defaultOrgName", key.OrgName)
		}
		return p.result()
	})
}

// RemoveAccessKeyV2 deletes the license key of an org and clears the default when it pointed there.
func (s *Store) RemoveAccessKeyV2(orgName string) error {
	if orgName == "" {
		return s.missingField("orgName")
	}
	return s.update(func(doc []byte) ([]byte, error) {
		p := patcher{doc: doc}
		p.delete(jsonPath("accessKeys", "orgs", orgName))
		if gjson.GetBytes(p.doc, "accessKeys.defaultOrgName").String() == orgName {
			p.setRaw("accessKeys.defaultOrgName", "null")
		}
		return p.result()
	})
}

// NotificationLastShown returns when notification id was last shown.
func (s *Store) NotificationLastShown(id string) (time.Time, bool, error) {
	if id == "" {
		return time.Time{}, false, nil
	}
	cfg, err := s.Load()
	if err != nil {
		return time.Time{}, false, err
	}
	raw := cfg.Notifications[id].LastShown
	if raw == "" {
		return time.Time{}, false, nil
	}
	shown, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, nil
	}
	return shown, true, nil
}

// SetNotificationLastShown records that notification id was shown at t.
func (s *Store) SetNotificationLastShown(id string, t time.Time) error {
	if id == "" {
		return s.missingField("id")
	}
	entry := jsonPath("notifications", id)
	return s.update(func(doc []byte) ([]byte, error) {
		p := patcher{doc: doc}
		p.ensureObject("notifications")
		p.ensureObject(entry)
		p.set(entry+".lastShown", t.UTC().Format(notificationTimeLayout))
		return p.result()
	})
}

func (s *Store) missingField(field string) error {
	return fmt.Errorf("%w: %q is required to update %s file", errUtils.ErrRcMissingField, field, s.fileName)
}

// patcher applies sjson edits in sequence and keeps the first error.
type patcher struct {
	doc []byte
	err error
}

func (p *patcher) set(path string, value any) {
	if p.err != nil {
		return
	}
	p.doc, p.err = sjson.SetBytes(p.doc, path, value)
}

func (p *patcher) setIf(path, value string) {
	if value != "" {
		p.set(path, value)
	}
}

func (p *patcher) setRaw(path, raw string) {
	if p.err != nil {
		return
	}
	p.doc, p.err = sjson.SetRawBytes(p.doc, path, []byte(raw))
}

func (p *patcher) delete(path string) {
	if p.err != nil {
		return
	}
	p.doc, p.err = sjson.DeleteBytes(p.doc, path)
}

// ensureObject replaces a missing or non-object value at path with {}.
func (p *patcher) ensureObject(path string) {
	if p.err != nil {
		return
	}
	p.doc, p.err = ensureObject(p.doc, path)
}

func (p *patcher) result() ([]byte, error) {
	if p.err != nil {
		return nil, fmt.Errorf("%w: %w", errUtils.ErrWriteRcFile, p.err)
	}
	return p.doc, nil
}

func ensureObject(doc []byte, path string) ([]byte, error) {
	if gjson.GetBytes(doc, path).IsObject() {
		return doc, nil
	}
	return sjson.SetRawBytes(doc, path, []byte("{}"))
}

// jsonPath joins a fixed prefix with one user-supplied key, e.g. users.<id>.
func jsonPath(parts ...string) string {
	last := len(parts) - 1
	return strings.Join(parts[:last], ".") + "." + escapeKey(parts[last])
}

// escapeKey escapes every character that gjson/sjson could read as path syntax.
func escapeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
