// Package io reads and writes search logs as JSON.
//
// # Overview
//
// A search log is the list of node messages a solver emitted while it
// explored its search space. Reading a log replays the messages through the
// [builder] and yields an [execution.Execution]; writing an execution
// produces a log that reads back into an identical tree.
//
// # JSON Format
//
//	{
//	  "title": "queens 8",
//	  "restarts": false,
//	  "nodes": [
//	    {"id": 1, "pid": null, "kids": 2, "status": "branch"},
//	    {"id": 2, "pid": 1, "alt": 0, "status": "failed", "label": "q[1]=1", "nogoods": [7]},
//	    {"id": 3, "pid": 1, "alt": 1, "status": "solved", "label": "q[1]!=1"}
//	  ],
//	  "nogood_clauses": {"7": "q[1]!=1 \\/ q[2]!=3"}
//	}
//
// # Node Fields
//
// Required:
//   - id: solver node id, unique within the log
//   - pid: parent id, or null for a root
//   - status: one of solved, failed, branch, undetermined, stop, unstop,
//     skipped, merging
//
// Optional:
//   - alt: position among the parent's children (default 0)
//   - kids: number of children (default 0)
//   - thread, restart: solver thread and restart that produced the node
//   - label, nogood, info, solution: free-form solver text
//   - nogoods: ids of the nogoods responsible for closing the node
//
// Nodes may appear in any order; children listed before their parent are
// delayed until the parent is known. Nodes whose parent never appears are
// dropped with a warning.
//
// # Concurrency
//
// [WriteJSON] holds the read lock of the tree while encoding. [ReadJSON]
// returns a fresh execution that the caller owns.
//
// [builder]: github.com/matzehuels/cptree/pkg/builder
package io
