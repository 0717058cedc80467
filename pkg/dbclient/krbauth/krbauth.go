// Package krbauth is an optional Kerberos/SPNEGO credential path into
// csession_find_or_create_session, for deployments that authenticate
// database clients against a KDC instead of trusting the local OS username.
// It replaces the disabled clogin_user path with a credential the caller
// resolves once and passes as the user argument on session creation.
package krbauth

import (
	"fmt"

	"github.com/jcmturner/gokrb5/v8/client"
	"github.com/jcmturner/gokrb5/v8/config"
	"github.com/jcmturner/gokrb5/v8/credentials"
	"github.com/jcmturner/gokrb5/v8/keytab"
)

// Credential wraps a logged-in Kerberos client, used to derive the
// principal name csession_find_or_create_session sends as its user
// parameter.
type Credential struct {
	client *client.Client
}

// FromKeytab logs in as principal@realm using a keytab: the non-interactive
// path for a long-running client process that can't prompt for a password.
func FromKeytab(krb5ConfPath, keytabPath, principal, realm string) (*Credential, error) {
	cfg, err := config.Load(krb5ConfPath)
	if err != nil {
		return nil, fmt.Errorf("krbauth: load krb5.conf: %w", err)
	}
	kt, err := keytab.Load(keytabPath)
	if err != nil {
		return nil, fmt.Errorf("krbauth: load keytab: %w", err)
	}
	cl := client.NewWithKeytab(principal, realm, kt, cfg, client.DisablePAFXFAST(true))
	if err := cl.Login(); err != nil {
		return nil, fmt.Errorf("krbauth: login with keytab: %w", err)
	}
	return &Credential{client: cl}, nil
}

// FromCCache logs in from an existing credential cache, e.g. one populated
// by kinit ahead of time: the interactive-session path.
func FromCCache(krb5ConfPath, ccachePath string) (*Credential, error) {
	cfg, err := config.Load(krb5ConfPath)
	if err != nil {
		return nil, fmt.Errorf("krbauth: load krb5.conf: %w", err)
	}
	cc, err := credentials.LoadCCache(ccachePath)
	if err != nil {
		return nil, fmt.Errorf("krbauth: load credential cache: %w", err)
	}
	cl, err := client.NewFromCCache(cc, cfg, client.DisablePAFXFAST(true))
	if err != nil {
		return nil, fmt.Errorf("krbauth: client from credential cache: %w", err)
	}
	return &Credential{client: cl}, nil
}

// Principal returns the "user@REALM" identity csession_find_or_create_session
// should send as its user argument in place of the local OS username.
func (c *Credential) Principal() string {
	creds := c.client.Credentials
	return fmt.Sprintf("%s@%s", creds.UserName(), creds.Domain())
}

// Close releases the Kerberos client's session, destroying its tickets.
func (c *Credential) Close() {
	c.client.Destroy()
}
