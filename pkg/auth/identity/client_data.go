package identity

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"

	errUtils "github.com/serverless/sfauth/errors"
	"github.com/serverless/sfauth/pkg/dashboard"
	httpClient "github.com/serverless/sfauth/pkg/http"
	log "github.com/serverless/sfauth/pkg/logger"
)

// ClientDataRequest validates a key against the backend.
type ClientDataRequest struct {
	Key         string
	AppName     *string
	ServiceName *string
	StageName   string
	RegionName  string
	// LicenseKeyUsed sends no service parameters and tolerates 5xx responses.
	LicenseKeyUsed bool
}

// GetClientData validates a key and returns the caller identity and service data.
// For license keys a 5xx response yields (nil, nil): the caller proceeds without org metadata.
func (r *Resolver) GetClientData(ctx context.Context, req ClientDataRequest) (*dashboard.ClientData, error) {
	var params dashboard.ClientDataParams
	if !req.LicenseKeyUsed {
		stage, region := req.StageName, req.RegionName
		params = dashboard.ClientDataParams{
			ServiceName: req.ServiceName,
			Stage:       &stage,
			Region:      &region,
			AppName:     req.AppName,
		}
	}

	clientData, err := r.client.GetClientData(ctx, req.Key, params)
	if err != nil {
		status := httpClient.StatusCode(err)
		log.Debug("Authentication error", "status", status, "error", err)

		switch {
		case req.LicenseKeyUsed && status >= 500 && status < 600:
			r.prompter.Warning(fmt.Sprintf("Serverless API temporarily unavailable (HTTP %d).\nProceeding with limited functionality; commands that need your organization details may be unavailable until the API responds again.", status))
			return nil, nil
		case status == 0:
			return nil, errUtils.Build(failure(errUtils.ErrAPIUnreachable, "%s", unreachableMessage(err))).
				WithCode(errUtils.CodeAuthFailed).
				Err()
		default:
			message := dashboard.ErrorMessage(err)
			if message == "" {
				message = "Authentication failed"
			}
			return nil, errUtils.Build(failure(errUtils.ErrAuthFailed, "%s", message)).
				WithCode(errUtils.CodeAuthFailed).
				WithContext("status", status).
				Err()
		}
	}

	if clientData == nil || clientData.Data.CallerIdentity == nil {
		return nil, failure(errUtils.ErrInvalidCallerIdentity, "Unable to validate Access Key. Please ensure you are using a valid Access Key.")
	}
	return clientData, nil
}

// unreachableMessage folds the failing request, its cause and an errno-style code into one sentence.
func unreachableMessage(err error) string {
	var parts []string

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		parts = append(parts, fmt.Sprintf("%s %s failed", strings.ToUpper(urlErr.Op), redactURL(urlErr.URL)))
		if urlErr.Err != nil {
			parts = append(parts, urlErr.Err.Error())
		}
	} else if err != nil {
		parts = append(parts, err.Error())
	}
	if code := networkErrorCode(err); code != "" {
		parts = append(parts, "code: "+code)
	}

	suffix := ""
	if len(parts) > 0 {
		suffix = " (" + strings.Join(parts, "; ") + ")"
	}
	return fmt.Sprintf("Unable to reach the Serverless API%s.\nPlease verify your network connection and try again.", suffix)
}

var errnoCodes = map[syscall.Errno]string{
	syscall.ECONNREFUSED: "ECONNREFUSED",
	syscall.ECONNRESET:   "ECONNRESET",
	syscall.ETIMEDOUT:    "ETIMEDOUT",
	syscall.EHOSTUNREACH: "EHOSTUNREACH",
	syscall.ENETUNREACH:  "ENETUNREACH",
}

func networkErrorCode(err error) string {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		if code, ok := errnoCodes[errno]; ok {
			return code
		}
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "ENOTFOUND"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "ETIMEDOUT"
	}
	return ""
}

// redactURL drops the query string and credentials.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.User = nil
	u.RawQuery = ""
	return u.String()
}
