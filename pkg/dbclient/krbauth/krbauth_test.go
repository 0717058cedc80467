package krbauth

import (
	"testing"

	"github.com/jcmturner/gokrb5/v8/client"
	"github.com/jcmturner/gokrb5/v8/credentials"
	"github.com/stretchr/testify/require"
)

func TestCredential_Principal_FormatsUserAtRealm(t *testing.T) {
	creds := credentials.New("alice", "EXAMPLE.COM")
	c := &Credential{client: &client.Client{Credentials: creds}}
	require.Equal(t, "alice@EXAMPLE.COM", c.Principal())
}

func TestFromKeytab_MissingConfigFails(t *testing.T) {
	_, err := FromKeytab("/nonexistent/krb5.conf", "/nonexistent/keytab", "alice", "EXAMPLE.COM")
	require.Error(t, err)
}

func TestFromCCache_MissingConfigFails(t *testing.T) {
	_, err := FromCCache("/nonexistent/krb5.conf", "/nonexistent/ccache")
	require.Error(t, err)
}
