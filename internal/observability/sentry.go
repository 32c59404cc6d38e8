// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package observability

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/samber/oops"
)

// sentryFlushTimeout bounds how long shutdown waits for queued events.
const sentryFlushTimeout = 2 * time.Second

// InitSentry configures the global Sentry client. An empty dsn disables
// reporting. The returned func flushes queued events and is always non-nil.
func InitSentry(dsn, environment, release string) (func(), error) {
	if dsn == "" {
		return func() {}, nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     release,
	}); err != nil {
		return func() {}, oops.Code("SENTRY_INIT_FAILED").With("environment", environment).Wrap(err)
	}
	return func() { sentry.Flush(sentryFlushTimeout) }, nil
}

// CaptureError reports an unclassified error. It uses the request's hub when
// one is attached to ctx.
func CaptureError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.CaptureException(err)
}
