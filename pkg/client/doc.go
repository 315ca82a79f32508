// Package client is a Go SDK for the taskhub API.
//
// A Client holds the current session: the bearer token and the user it was
// issued for. Sessions are persisted through a Store so a process can pick up
// where the previous one left off:
//
//	c := client.New("http://localhost:8080", client.NewFileStore(client.DefaultSessionPath()))
//	if err := c.Restore(); err != nil {
//		return err
//	}
//	if c.State() != client.StateAuthenticated {
//		if _, err := c.Login(ctx, email, password); err != nil {
//			return err
//		}
//	}
//	projects, err := c.ListProjects(ctx)
//
// Restore trusts the stored token without asking the server. The first
// protected call that comes back 401 clears the session and returns
// ErrSessionExpired.
package client
