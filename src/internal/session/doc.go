// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package session runs one validation of a certificate chain from decoded
// inputs. The CLI and the MCP server both build a [Request] and hand it to
// [Run].
package session
