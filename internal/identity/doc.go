// Package identity defines the identity provider the session manager talks to.
//
// A [Provider] creates accounts, verifies credentials, ends sessions and
// notifies subscribers whenever the authenticated identity changes.
//
// Implementations:
//   - [LocalProvider] : accounts in the local SQLite database, bcrypt password hashes
//   - [ToolkitProvider] : the Firebase Identity Toolkit REST API
//
// Failures are reported as [*Error] values carrying the provider's code and a
// human readable message suitable for showing to the user as-is.
package identity
