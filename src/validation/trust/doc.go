// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package trust provides the in-memory trust store consulted during chain
// validation.
//
// Certificates are registered for a [Role]. A certificate registered for
// [General] is trusted for every role; role-specific registrations restrict
// a certificate to one purpose, which is how key rollover (same subject,
// new key, narrower purpose) is modelled. Certificates that are merely known
// (supplied alongside a signature, for example) are kept in a separate index
// and are only used to resolve issuers.
package trust
