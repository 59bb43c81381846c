// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package worker

import "go.uber.org/zap"

// options collects construction settings for a worker.
type options struct {
	name   string
	log    *zap.Logger
	policy ClosePolicy
}

// Option configures a worker at construction.
type Option func(*options)

// WithName sets the display label. Names are optional and immutable.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger routes transition logs to log. The default discards them.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithClosePolicy selects what Close does with a live worker.
func WithClosePolicy(p ClosePolicy) Option {
	return func(o *options) { o.policy = p }
}

func buildOptions(opts []Option) options {
	o := options{
		log:    zap.NewNop(),
		policy: CloseStop,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
