// Package identity verifies AWS credentials through STS GetCallerIdentity.
//
// It is used after a console login to confirm that the cached session
// credentials are accepted by AWS and belong to the expected account.
//
// Key features:
//   - Static credential verification without touching shared profiles
//   - Testable via the Getter interface
package identity
