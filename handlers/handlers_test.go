// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/danielhkuo/community-forum/mail"
	"github.com/danielhkuo/community-forum/middleware"
	"github.com/danielhkuo/community-forum/search"
	"github.com/danielhkuo/community-forum/testutil"
)

// asUser attaches u to the request the way the Authenticator would.
func asUser(req *http.Request, u testutil.TestUser) *http.Request {
	return req.WithContext(middleware.WithUser(req.Context(), u.Session()))
}

// serve runs handler against req and returns the recorder.
func serve(handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

// captureSender records outgoing mail instead of sending it.
type captureSender struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (c *captureSender) Send(_ context.Context, msg mail.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

func (c *captureSender) messages() []mail.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]mail.Message(nil), c.sent...)
}

// recordingProvider wraps a search provider and remembers index calls.
type recordingProvider struct {
	search.Provider

	mu      sync.Mutex
	indexed []string
	deleted []string
}

func (p *recordingProvider) IndexTopic(_ context.Context, doc search.Document) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.indexed = append(p.indexed, doc.ID)
	return nil
}

func (p *recordingProvider) DeleteTopic(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, id)
	return nil
}

// pathValues sets several path values on req.
func pathValues(req *http.Request, kv ...string) *http.Request {
	for i := 0; i+1 < len(kv); i += 2 {
		req.SetPathValue(kv[i], kv[i+1])
	}
	return req
}
