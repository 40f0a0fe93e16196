// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package templates embeds the markdown served by the MCP server: the
// instructions template rendered at startup (X509_trust_instructions.md) and
// the validation guide resource (validation-guide.md).
//
// Access goes through [MagicEmbed], an [EmbedFS] over [embed.FS].
package templates
