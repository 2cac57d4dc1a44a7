// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package action defines the request and result types exchanged with
// the cryptographic executor, and [Backend], the executor that performs
// them with the local keyring and age.
//
// Execute is blocking. Callers that drive a user interface run it off
// their event loop and post the outcome back. Failures are always
// *[Error] values carrying a [MessageID] the caller can branch on.
package action
