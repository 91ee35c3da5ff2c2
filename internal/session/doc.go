// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks one interactive comparison of two documents.
//
// A Comparison moves through three states:
//
//	Idle ──select both──▶ Ready ──Compare──▶ Compared
//	  ▲                     ▲                   │
//	  └──clear a side───────┴──select/resolve───┘
//
// Selecting or resolving either side always discards the previous result and
// cursor. Every selection carries a token, and a fetched document is only
// accepted with the token of the selection it was fetched for. Compare refuses
// to run until both documents have text.
//
// # Key Types
//
//   - Comparison: The state machine with its result and change cursor
//   - State: Idle, Ready or Compared
//   - Status: Snapshot for display
//
// # Usage
//
//	c := session.New(session.DefaultConfig(), log)
//	c.SelectLeft(leftDoc.Ref, leftDoc.Label)
//	c.SelectRight(rightDoc.Ref, rightDoc.Label)
//	c.ResolveLeft(c.Selection(session.Left).Token, leftDoc)
//	c.ResolveRight(c.Selection(session.Right).Token, rightDoc)
//	if err := c.Compare(); err != nil {
//	    return err
//	}
//	for i, ok := c.Cursor(); ok; i, ok = c.Next() {
//	    fmt.Println(c.Result().At(i).Content)
//	}
package session
