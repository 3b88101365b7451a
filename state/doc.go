// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages the pool storage.
// It follows the flow as bellow:
//
//	         o
//	         |
//	[ revertable state ]
//	         |
//	  [ stacked map ] -> [ journal ] -> [ batch ] -> [ kv store ]
//	         |
//	  [ lru of committed values ]
//	         |
//	    [ kv store ]
//
// Changes stay in the stacked map until Commit. A checkpoint taken with
// NewCheckpoint can be reverted with RevertTo, dropping every change made
// after it.
package state
