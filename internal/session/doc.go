// Package session owns the current identity of the running process.
//
// A [Manager] subscribes once to an [identity.Provider], mirrors every
// notification into its session cell and exposes sign-up, sign-in and
// log-out. Until the first notification arrives the manager is not ready,
// and views should render nothing but a placeholder (see [Manager.Ready]).
package session
