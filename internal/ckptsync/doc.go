// Package ckptsync keeps a remote checkpoint namespace equal to the desired
// checkpoint set, uploading additions and deleting stale leaves.
//
// The synchronization follows a three-phase approach: inventory the remote
// namespace, plan the operations, execute them sequentially.
package ckptsync
