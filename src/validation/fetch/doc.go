// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package fetch retrieves revocation evidence over HTTP.
//
// [OCSPClient] posts RFC 6960 requests to the responders named in a
// certificate's Authority Information Access extension, and [CRLClient]
// downloads the CRLs named in its distribution points, keeping them in a
// [CRLCache] until their nextUpdate. Both clients share an [HTTPConfig]
// carrying the timeout, User-Agent, response size limit and an optional
// rate limit.
//
// Retrieval failures are returned as errors. The revocation validator logs
// them and treats them as absent evidence.
package fetch
