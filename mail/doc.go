// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package mail delivers one-time verification codes by email.
//
// NewSender picks an SMTP relay when one is configured and otherwise falls
// back to LogSender, which writes the code to the log for local development.
package mail
