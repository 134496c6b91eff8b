// Package worker executes a SyncJob against the copy tool.
//
// A Worker runs once: Idle → Preparing → Running → Completed, Cancelled or
// Failed. Preparing resolves the tool and, when the job asks for it, deletes
// the destination tree. Running syncs each selected subject in fixed order,
// one tool invocation at a time, and reports floor(done/total*100) after
// each. Every state change is delivered as a Progress value on the channel
// returned by Progress; terminal phases are final.
package worker
