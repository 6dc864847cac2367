// Package session resolves the visitor session id attached to tracked events.
package session

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// Provider resolves the session id for a tracking request. claimed is the id
// the client sent in the request body, which implementations may ignore.
// An empty id means the event is not tied to a session.
type Provider interface {
	SessionID(c *gin.Context, claimed string) (string, error)
}

// ClientProvider trusts the id generated and persisted by the browser.
type ClientProvider struct{}

func (ClientProvider) SessionID(_ *gin.Context, claimed string) (string, error) {
	return strings.TrimSpace(claimed), nil
}
