// Package schedule implements the delivery scheduling engine. It keeps
// every active order in two AVL trees, one keyed by priority and one keyed
// by ETA, and re-chains the ETAs of lower-priority orders whenever an order
// is created, canceled or has its delivery duration changed.
//
// Time is a caller-supplied integer. The engine is single-writer and holds
// no locks; callers serialize access (see package service).
package schedule
